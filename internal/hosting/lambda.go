package hosting

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaRequest adapts an AWS Lambda Function URL event to the Request
// interface.
type LambdaRequest struct {
	event   events.LambdaFunctionURLRequest
	body    string
	bodyErr error
	decoded bool
}

// NewLambdaRequest wraps the given Function URL event.
func NewLambdaRequest(event events.LambdaFunctionURLRequest) *LambdaRequest {
	return &LambdaRequest{event: event}
}

// Method returns the HTTP method from the request context.
func (r *LambdaRequest) Method() string {
	return r.event.RequestContext.HTTP.Method
}

// Path returns the raw request path. Function URLs serve from the
// origin, so no prefix stripping is needed.
func (r *LambdaRequest) Path() string {
	return r.event.RawPath
}

// Header returns the named header value with case-insensitive lookup.
// Function URL events deliver headers lowercased, but an exact-case
// probe is kept for test events built by hand.
func (r *LambdaRequest) Header(name string) string {
	if v, ok := r.event.Headers[name]; ok {
		return v
	}
	return r.event.Headers[strings.ToLower(name)]
}

// BodyText returns the request body, decoding the transport base64
// encoding when the event is flagged as encoded.
func (r *LambdaRequest) BodyText() (string, error) {
	if !r.decoded {
		r.decoded = true
		if r.event.IsBase64Encoded {
			data, err := base64.StdEncoding.DecodeString(r.event.Body)
			if err != nil {
				r.bodyErr = fmt.Errorf("decode base64 body: %w", err)
			} else {
				r.body = string(data)
			}
		} else {
			r.body = r.event.Body
		}
	}
	return r.body, r.bodyErr
}

// FormData parses the body according to its Content-Type.
func (r *LambdaRequest) FormData() (*FormData, error) {
	body, err := r.BodyText()
	if err != nil {
		return nil, err
	}
	return parseForm(r.Header("Content-Type"), body)
}

// ToLambdaResponse translates the host-independent response into the
// Function URL response envelope.
func ToLambdaResponse(resp Response) events.LambdaFunctionURLResponse {
	return events.LambdaFunctionURLResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(resp.Body),
	}
}
