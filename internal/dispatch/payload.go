package dispatch

import (
	"linerelay/internal/hosting"
)

// Form field names recognized on the notify endpoint.
const (
	fieldMessage              = "message"
	fieldImageThumbnail       = "imageThumbnail"
	fieldImageFullsize        = "imageFullsize"
	fieldStickerPackageID     = "stickerPackageId"
	fieldStickerID            = "stickerId"
	fieldNotificationDisabled = "notificationDisabled"
)

// Payload is the outbound message data parsed from a notify request.
// Exactly one message shape is produced from it, by precedence:
// uploaded image file, then image URL pair, then sticker pair, then
// plain text.
type Payload struct {
	Message              string
	ImageFile            *hosting.FilePart
	ImageThumbnail       string
	ImageFullsize        string
	StickerPackageID     string
	StickerID            string
	NotificationDisabled bool
}

// ParsePayload extracts the recognized fields from parsed form data.
func ParsePayload(form *hosting.FormData) Payload {
	p := Payload{
		Message:          form.Field(fieldMessage),
		ImageThumbnail:   form.Field(fieldImageThumbnail),
		ImageFullsize:    form.Field(fieldImageFullsize),
		StickerPackageID: form.Field(fieldStickerPackageID),
		StickerID:        form.Field(fieldStickerID),
	}
	if form != nil {
		p.ImageFile = form.File
	}
	if form.Field(fieldNotificationDisabled) == "true" {
		p.NotificationDisabled = true
	}
	return p
}
