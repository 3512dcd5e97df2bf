package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	relayerrors "linerelay/internal/errors"
	"linerelay/internal/imaging"
)

// LINE preview images are capped at 240x240 pixels.
const (
	thumbnailMaxWidth  = 240
	thumbnailMaxHeight = 240
)

// buildMessage constructs the single outbound LINE message for a
// payload. Precedence: uploaded image file, pre-supplied image URL
// pair, sticker pair, plain text.
//
// The image-file path uploads the original, resizes it to the preview
// bound, and uploads the thumbnail; the resulting message carries both
// URLs. Unsupported image content types fail validation before any
// upload or dispatch happens.
func (d *Dispatcher) buildMessage(ctx context.Context, p Payload) (messaging_api.MessageInterface, error) {
	switch {
	case p.ImageFile != nil:
		return d.buildImageFileMessage(ctx, p)

	case p.ImageThumbnail != "" && p.ImageFullsize != "":
		return &messaging_api.ImageMessage{
			OriginalContentUrl: p.ImageFullsize,
			PreviewImageUrl:    p.ImageThumbnail,
		}, nil

	case p.StickerPackageID != "" && p.StickerID != "":
		return &messaging_api.StickerMessage{
			PackageId: p.StickerPackageID,
			StickerId: p.StickerID,
		}, nil

	default:
		return &messaging_api.TextMessage{Text: p.Message}, nil
	}
}

func (d *Dispatcher) buildImageFileMessage(ctx context.Context, p Payload) (messaging_api.MessageInterface, error) {
	file := p.ImageFile
	if !imaging.IsSupportedContentType(file.ContentType) {
		return nil, relayerrors.NewValidationError("imageFile", fmt.Sprintf("unsupported content type %q", file.ContentType))
	}
	if d.storage == nil {
		return nil, relayerrors.NewValidationError("imageFile", "image uploads are not configured")
	}

	originalKey, thumbnailKey := imageKeys(file.Filename, file.ContentType, time.Now())

	originalURL, err := d.storage.Upload(ctx, originalKey, file.Content, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload original image: %w", err)
	}

	thumbnail, err := d.converter.Resize(file.Content, thumbnailMaxWidth, thumbnailMaxHeight, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("resize thumbnail: %w", err)
	}

	thumbnailURL, err := d.storage.Upload(ctx, thumbnailKey, thumbnail, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload thumbnail image: %w", err)
	}

	return &messaging_api.ImageMessage{
		OriginalContentUrl: originalURL,
		PreviewImageUrl:    thumbnailURL,
	}, nil
}

// imageKeys derives the storage keys for an upload. The first dot in
// the filename becomes an underscore and a millisecond timestamp keeps
// keys unique across requests.
func imageKeys(filename, contentType string, now time.Time) (original, thumbnail string) {
	name := strings.Replace(filename, ".", "_", 1)
	suffix := "png"
	if contentType == imaging.ContentTypeJPEG {
		suffix = "jpg"
	}
	timestamp := now.UnixMilli()
	original = fmt.Sprintf("original/%s-%d.%s", name, timestamp, suffix)
	thumbnail = fmt.Sprintf("thumbnail/%s-%d.%s", name, timestamp, suffix)
	return original, thumbnail
}
