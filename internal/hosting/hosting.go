// Package hosting normalizes the HTTP request shapes of the supported
// host environments (gin server, AWS Lambda Function URLs, Azure
// Functions custom handler) into one canonical request view.
//
// Adapters never fail on missing headers or fields; they return empty
// values and leave business-level validation to the relay orchestrator.
package hosting

import (
	"encoding/json"
)

// Request is the uniform accessor surface over a native host request.
type Request interface {
	// Method returns the HTTP method.
	Method() string

	// Path returns the origin-relative request path. Host-specific
	// routing prefixes (e.g. the Azure Functions "/api" segment) are
	// stripped before the orchestrator observes the path.
	Path() string

	// Header returns the named header value with case-insensitive
	// lookup, or "" when absent.
	Header(name string) string

	// BodyText returns the request body as text. Transport base64
	// encoding is decoded transparently. The body is read once and
	// memoized.
	BodyText() (string, error)

	// FormData parses the body as multipart/form-data or
	// application/x-www-form-urlencoded depending on Content-Type.
	FormData() (*FormData, error)
}

// FormData is the parsed form body of a notify request.
type FormData struct {
	// Fields holds scalar form values (message, imageThumbnail,
	// imageFullsize, stickerPackageId, stickerId, notificationDisabled).
	Fields map[string]string

	// File is the imageFile multipart part, nil when absent.
	File *FilePart
}

// Field returns a scalar form value or "" when absent.
func (f *FormData) Field(name string) string {
	if f == nil || f.Fields == nil {
		return ""
	}
	return f.Fields[name]
}

// FilePart is an uploaded file extracted from a multipart body.
type FilePart struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Response is the host-independent HTTP response. Host entry points
// translate it into their native envelope; the status code and the
// human-readable message always survive the translation.
type Response struct {
	StatusCode int
	Body       []byte
}

// NewResponse builds a Response with a JSON body {"message": ...}.
func NewResponse(statusCode int, message string) Response {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		// A map[string]string cannot fail to marshal; keep the
		// fallback anyway so the handler always answers.
		body = []byte(`{"message":"internal error"}`)
	}
	return Response{StatusCode: statusCode, Body: body}
}
