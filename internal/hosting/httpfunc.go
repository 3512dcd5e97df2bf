package hosting

import (
	"io"
	"net/http"
	"strings"
)

// HTTPRequest adapts a plain net/http request to the Request interface.
// It backs the Azure Functions custom-handler host, which forwards raw
// HTTP requests under an "/api" routing prefix.
type HTTPRequest struct {
	req         *http.Request
	stripPrefix string
	body        string
	bodyErr     error
	bodyRead    bool
}

// NewHTTPRequest wraps the given request. stripPrefix, when non-empty,
// is removed from the front of the observed path.
func NewHTTPRequest(req *http.Request, stripPrefix string) *HTTPRequest {
	return &HTTPRequest{req: req, stripPrefix: stripPrefix}
}

// Method returns the HTTP method.
func (r *HTTPRequest) Method() string {
	return r.req.Method
}

// Path returns the request path with the host routing prefix removed.
func (r *HTTPRequest) Path() string {
	path := r.req.URL.Path
	if r.stripPrefix != "" {
		if trimmed, ok := strings.CutPrefix(path, r.stripPrefix); ok {
			path = trimmed
			if path == "" {
				path = "/"
			}
		}
	}
	return path
}

// Header returns the named header value, "" when absent.
func (r *HTTPRequest) Header(name string) string {
	return r.req.Header.Get(name)
}

// BodyText returns the memoized request body.
func (r *HTTPRequest) BodyText() (string, error) {
	if !r.bodyRead {
		r.bodyRead = true
		data, err := io.ReadAll(r.req.Body)
		if err != nil {
			r.bodyErr = err
		} else {
			r.body = string(data)
		}
	}
	return r.body, r.bodyErr
}

// FormData parses the body according to its Content-Type.
func (r *HTTPRequest) FormData() (*FormData, error) {
	body, err := r.BodyText()
	if err != nil {
		return nil, err
	}
	return parseForm(r.Header("Content-Type"), body)
}

// WriteResponse writes the host-independent response to w.
func WriteResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
