package hosting

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPRequestPathStripping(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		stripPrefix string
		want        string
	}{
		{"api prefix stripped", "/api/notify", "/api", "/notify"},
		{"bare prefix becomes root", "/api", "/api", "/"},
		{"no prefix configured", "/notify", "", "/notify"},
		{"prefix absent from path", "/notify", "/api", "/notify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewHTTPRequest(httptest.NewRequest("POST", tt.path, nil), tt.stripPrefix)
			if got := req.Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPRequestForm(t *testing.T) {
	native := httptest.NewRequest("POST", "/api/notify", strings.NewReader("message=hello"))
	native.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	req := NewHTTPRequest(native, "/api")
	form, err := req.FormData()
	if err != nil {
		t.Fatalf("FormData failed: %v", err)
	}
	if got := form.Field("message"); got != "hello" {
		t.Errorf("message = %q, want %q", got, "hello")
	}
}

func TestWriteResponse(t *testing.T) {
	w := httptest.NewRecorder()
	WriteResponse(w, NewResponse(200, "Success"))

	if w.Code != 200 {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
	if w.Body.String() != `{"message":"Success"}` {
		t.Errorf("body = %s", w.Body.String())
	}
}
