// Package imaging resizes uploaded images for LINE preview thumbnails.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	relayerrors "linerelay/internal/errors"
)

// Content types accepted for uploaded image files.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

// IsSupportedContentType reports whether the relay accepts the given
// image content type for file uploads.
func IsSupportedContentType(contentType string) bool {
	return contentType == ContentTypeJPEG || contentType == ContentTypePNG
}

// Converter performs bounded-fit image resizing.
type Converter struct{}

// NewConverter creates a Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Resize scales the image to fit within maxWidth x maxHeight, keeping
// the aspect ratio: a landscape image is constrained by width, any
// other by height. Images already inside the bounds are returned
// unmodified. The result is re-encoded to contentType.
func (c *Converter) Resize(data []byte, maxWidth, maxHeight int, contentType string) ([]byte, error) {
	if !IsSupportedContentType(contentType) {
		return nil, relayerrors.NewValidationError("contentType", fmt.Sprintf("unsupported image content type %q", contentType))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return data, nil
	}

	var dstWidth, dstHeight int
	if width > height {
		dstWidth = maxWidth
		dstHeight = height * maxWidth / width
	} else {
		dstHeight = maxHeight
		dstWidth = width * maxHeight / height
	}
	if dstWidth < 1 {
		dstWidth = 1
	}
	if dstHeight < 1 {
		dstHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return encode(dst, contentType)
}

func encode(img image.Image, contentType string) ([]byte, error) {
	var buf bytes.Buffer
	switch contentType {
	case ContentTypeJPEG:
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case ContentTypePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, relayerrors.NewValidationError("contentType", fmt.Sprintf("unsupported image content type %q", contentType))
	}
	return buf.Bytes(), nil
}
