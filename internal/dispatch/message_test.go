package dispatch

import (
	"testing"
	"time"

	"linerelay/internal/hosting"
	"linerelay/internal/imaging"
)

func TestImageKeys(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		name          string
		filename      string
		contentType   string
		wantOriginal  string
		wantThumbnail string
	}{
		{
			name:          "jpeg upload",
			filename:      "photo.jpg",
			contentType:   imaging.ContentTypeJPEG,
			wantOriginal:  "original/photo_jpg-1700000000000.jpg",
			wantThumbnail: "thumbnail/photo_jpg-1700000000000.jpg",
		},
		{
			name:          "png upload",
			filename:      "chart.png",
			contentType:   imaging.ContentTypePNG,
			wantOriginal:  "original/chart_png-1700000000000.png",
			wantThumbnail: "thumbnail/chart_png-1700000000000.png",
		},
		{
			// Only the first dot is replaced.
			name:          "dotted filename",
			filename:      "report.v2.png",
			contentType:   imaging.ContentTypePNG,
			wantOriginal:  "original/report_v2.png-1700000000000.png",
			wantThumbnail: "thumbnail/report_v2.png-1700000000000.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original, thumbnail := imageKeys(tt.filename, tt.contentType, now)
			if original != tt.wantOriginal {
				t.Errorf("original = %q, want %q", original, tt.wantOriginal)
			}
			if thumbnail != tt.wantThumbnail {
				t.Errorf("thumbnail = %q, want %q", thumbnail, tt.wantThumbnail)
			}
		})
	}
}

func TestParsePayload(t *testing.T) {
	form := &hosting.FormData{
		Fields: map[string]string{
			"message":              "hello",
			"imageThumbnail":       "https://example.com/t.jpg",
			"imageFullsize":        "https://example.com/f.jpg",
			"stickerPackageId":     "446",
			"stickerId":            "1988",
			"notificationDisabled": "true",
		},
		File: &hosting.FilePart{Filename: "a.png", ContentType: "image/png"},
	}

	p := ParsePayload(form)

	if p.Message != "hello" {
		t.Errorf("Message = %q", p.Message)
	}
	if p.ImageThumbnail != "https://example.com/t.jpg" || p.ImageFullsize != "https://example.com/f.jpg" {
		t.Errorf("image urls = %q / %q", p.ImageThumbnail, p.ImageFullsize)
	}
	if p.StickerPackageID != "446" || p.StickerID != "1988" {
		t.Errorf("sticker = %q / %q", p.StickerPackageID, p.StickerID)
	}
	if !p.NotificationDisabled {
		t.Error("NotificationDisabled = false, want true")
	}
	if p.ImageFile == nil || p.ImageFile.Filename != "a.png" {
		t.Errorf("ImageFile = %+v", p.ImageFile)
	}
}

func TestParsePayloadDefaults(t *testing.T) {
	p := ParsePayload(&hosting.FormData{Fields: map[string]string{}})

	if p.Message != "" || p.ImageFile != nil || p.NotificationDisabled {
		t.Errorf("unexpected non-zero payload: %+v", p)
	}
}

func TestParsePayloadNotificationDisabledLiterals(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"false", false},
		{"1", false},
		{"TRUE", false},
		{"", false},
	}

	for _, tt := range tests {
		form := &hosting.FormData{Fields: map[string]string{"notificationDisabled": tt.value}}
		if got := ParsePayload(form).NotificationDisabled; got != tt.want {
			t.Errorf("notificationDisabled %q parsed to %v, want %v", tt.value, got, tt.want)
		}
	}
}
