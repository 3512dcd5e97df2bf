package hosting

import (
	"io"

	"github.com/gin-gonic/gin"
)

// GinRequest adapts a gin request to the Request interface.
// The body is read once and memoized since the underlying stream does
// not support re-reads.
type GinRequest struct {
	c        *gin.Context
	body     string
	bodyErr  error
	bodyRead bool
}

// NewGinRequest wraps the given gin context.
func NewGinRequest(c *gin.Context) *GinRequest {
	return &GinRequest{c: c}
}

// Method returns the HTTP method.
func (r *GinRequest) Method() string {
	return r.c.Request.Method
}

// Path returns the request path. The gin host routes origin-relative
// paths directly, so no prefix stripping is needed.
func (r *GinRequest) Path() string {
	return r.c.Request.URL.Path
}

// Header returns the named header value, "" when absent.
// net/http canonicalizes header names, giving case-insensitive lookup.
func (r *GinRequest) Header(name string) string {
	return r.c.GetHeader(name)
}

// BodyText returns the memoized request body.
func (r *GinRequest) BodyText() (string, error) {
	if !r.bodyRead {
		r.bodyRead = true
		data, err := io.ReadAll(r.c.Request.Body)
		if err != nil {
			r.bodyErr = err
		} else {
			r.body = string(data)
		}
	}
	return r.body, r.bodyErr
}

// FormData parses the body according to its Content-Type.
func (r *GinRequest) FormData() (*FormData, error) {
	body, err := r.BodyText()
	if err != nil {
		return nil, err
	}
	return parseForm(r.Header("Content-Type"), body)
}

// WriteResponse writes the host-independent response through gin.
func (r *GinRequest) WriteResponse(resp Response) {
	r.c.Data(resp.StatusCode, "application/json", resp.Body)
}
