package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"linerelay/internal/auth"
	"linerelay/internal/dispatch"
	relayerrors "linerelay/internal/errors"
	"linerelay/internal/hosting"
	"linerelay/internal/logger"
)

// fakeRequest is an in-memory hosting.Request for orchestrator tests.
type fakeRequest struct {
	method  string
	path    string
	headers map[string]string
	body    string
	form    *hosting.FormData
	formErr error
}

func (r *fakeRequest) Method() string { return r.method }
func (r *fakeRequest) Path() string   { return r.path }
func (r *fakeRequest) Header(name string) string {
	return r.headers[name]
}
func (r *fakeRequest) BodyText() (string, error) { return r.body, nil }
func (r *fakeRequest) FormData() (*hosting.FormData, error) {
	if r.formErr != nil {
		return nil, r.formErr
	}
	if r.form != nil {
		return r.form, nil
	}
	return &hosting.FormData{Fields: map[string]string{}}, nil
}

// notifyRequest builds a well-formed urlencoded notify request.
func notifyRequest(token string, fields map[string]string) *fakeRequest {
	return &fakeRequest{
		method: http.MethodPost,
		path:   "/notify",
		headers: map[string]string{
			"Content-Type":  "application/x-www-form-urlencoded",
			"Authorization": "Bearer " + token,
		},
		form: &hosting.FormData{Fields: fields},
	}
}

// webhookRequest builds a LINE webhook delivery with the given JSON body.
func webhookRequest(body string) *fakeRequest {
	return &fakeRequest{
		method:  http.MethodPost,
		path:    "/",
		headers: map[string]string{"Content-Type": "application/json"},
		body:    body,
	}
}

type fakeDispatcher struct {
	broadcasts []dispatch.Payload
	pushes     [][]string
	replies    []string
	replyTexts []string

	broadcastErr error
	pushErr      error
	replyErr     error
}

func (d *fakeDispatcher) Broadcast(ctx context.Context, p dispatch.Payload) error {
	d.broadcasts = append(d.broadcasts, p)
	return d.broadcastErr
}

func (d *fakeDispatcher) PushToGroups(ctx context.Context, groupIDs []string, p dispatch.Payload) error {
	d.pushes = append(d.pushes, groupIDs)
	return d.pushErr
}

func (d *fakeDispatcher) Reply(ctx context.Context, replyToken, text string) error {
	d.replies = append(d.replies, replyToken)
	d.replyTexts = append(d.replyTexts, text)
	return d.replyErr
}

type fakeRegistry struct {
	ids     []string
	added   []string
	addErr  error
	listErr error
}

func (r *fakeRegistry) Add(ctx context.Context, groupID string) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.added = append(r.added, groupID)
	return nil
}

func (r *fakeRegistry) Remove(ctx context.Context, groupID string) error { return nil }

func (r *fakeRegistry) ListAll(ctx context.Context) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.ids, nil
}

func newTestApp(mode SendMode, dispatcher *fakeDispatcher, reg *fakeRegistry) *App {
	return New(Config{
		Verifier:   auth.NewVerifier(auth.StaticTokenSource{"valid-token"}),
		Registry:   reg,
		Dispatcher: dispatcher,
		SendMode:   func() SendMode { return mode },
		Logger:     logger.NewWithWriter("error", io.Discard),
	})
}

func checkResponse(t *testing.T, resp hosting.Response, wantStatus int, wantMessage string) {
	t.Helper()
	if resp.StatusCode != wantStatus {
		t.Errorf("status = %d, want %d", resp.StatusCode, wantStatus)
	}
	want := `{"message":"` + wantMessage + `"}`
	if string(resp.Body) != want {
		t.Errorf("body = %s, want %s", resp.Body, want)
	}
}

func TestNotifyBroadcast(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	app := newTestApp(SendModeBroadcast, dispatcher, &fakeRegistry{})

	req := notifyRequest("valid-token", map[string]string{"message": "hello"})
	resp := app.Process(context.Background(), req)

	checkResponse(t, resp, http.StatusOK, "Success Notify")
	if len(dispatcher.broadcasts) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(dispatcher.broadcasts))
	}
	if dispatcher.broadcasts[0].Message != "hello" {
		t.Errorf("broadcast message = %q, want %q", dispatcher.broadcasts[0].Message, "hello")
	}
	if len(dispatcher.pushes) != 0 {
		t.Errorf("pushes = %d, want 0", len(dispatcher.pushes))
	}
}

func TestNotifyInvalidToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"wrong token", "Bearer wrong"},
		{"missing header", ""},
		{"missing scheme", "valid-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			app := newTestApp(SendModeBroadcast, dispatcher, &fakeRegistry{})

			req := notifyRequest("", map[string]string{"message": "hello"})
			req.headers["Authorization"] = tt.header
			resp := app.Process(context.Background(), req)

			checkResponse(t, resp, http.StatusUnauthorized, "Invalid authorization token")
			if len(dispatcher.broadcasts) != 0 {
				t.Errorf("broadcasts = %d, want 0", len(dispatcher.broadcasts))
			}
		})
	}
}

func TestNotifyMalformedForm(t *testing.T) {
	app := newTestApp(SendModeBroadcast, &fakeDispatcher{}, &fakeRegistry{})

	req := notifyRequest("valid-token", nil)
	req.formErr = errors.New("malformed multipart body")
	resp := app.Process(context.Background(), req)

	checkResponse(t, resp, http.StatusBadRequest, "Invalid request body")
}

func TestNotifyGroupMode(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	reg := &fakeRegistry{ids: []string{"G1", "G2"}}
	app := newTestApp(SendModeGroup, dispatcher, reg)

	resp := app.Process(context.Background(), notifyRequest("valid-token", map[string]string{"message": "hi"}))

	checkResponse(t, resp, http.StatusOK, "Success Notify")
	if len(dispatcher.broadcasts) != 0 {
		t.Errorf("broadcasts = %d, want 0", len(dispatcher.broadcasts))
	}
	if len(dispatcher.pushes) != 1 || len(dispatcher.pushes[0]) != 2 {
		t.Fatalf("pushes = %v, want one push to two groups", dispatcher.pushes)
	}
}

func TestNotifyGroupModeEmptyRegistry(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	app := newTestApp(SendModeGroup, dispatcher, &fakeRegistry{})

	resp := app.Process(context.Background(), notifyRequest("valid-token", map[string]string{"message": "hi"}))

	// Nothing to push to is still a success.
	checkResponse(t, resp, http.StatusOK, "Success Notify")
	if len(dispatcher.pushes) != 0 {
		t.Errorf("pushes = %d, want 0", len(dispatcher.pushes))
	}
}

func TestNotifyAllMode(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	reg := &fakeRegistry{ids: []string{"G1"}}
	app := newTestApp(SendModeAll, dispatcher, reg)

	resp := app.Process(context.Background(), notifyRequest("valid-token", map[string]string{"message": "hi"}))

	checkResponse(t, resp, http.StatusOK, "Success Notify")
	if len(dispatcher.broadcasts) != 1 {
		t.Errorf("broadcasts = %d, want 1", len(dispatcher.broadcasts))
	}
	if len(dispatcher.pushes) != 1 {
		t.Errorf("pushes = %d, want 1", len(dispatcher.pushes))
	}
}

func TestNotifyDispatchError(t *testing.T) {
	dispatcher := &fakeDispatcher{broadcastErr: errors.New("upstream unavailable")}
	app := newTestApp(SendModeBroadcast, dispatcher, &fakeRegistry{})

	resp := app.Process(context.Background(), notifyRequest("valid-token", map[string]string{"message": "hi"}))

	checkResponse(t, resp, http.StatusInternalServerError, "Failed to send message")
}

func TestNotifyInvalidImageType(t *testing.T) {
	dispatcher := &fakeDispatcher{
		broadcastErr: relayerrors.NewValidationError("imageFile", "unsupported content type image/gif"),
	}
	app := newTestApp(SendModeBroadcast, dispatcher, &fakeRegistry{})

	resp := app.Process(context.Background(), notifyRequest("valid-token", map[string]string{"message": "hi"}))

	checkResponse(t, resp, http.StatusBadRequest, "Invalid image file type")
}

func TestNotifyPathWithJSONBodyIsWebhook(t *testing.T) {
	// POST /notify without a form content type is classified as a
	// webhook delivery, matching the content-type gate.
	app := newTestApp(SendModeBroadcast, &fakeDispatcher{}, &fakeRegistry{})

	req := &fakeRequest{
		method:  http.MethodPost,
		path:    "/notify",
		headers: map[string]string{"Content-Type": "application/json"},
		body:    `{"events":[]}`,
	}
	resp := app.Process(context.Background(), req)

	checkResponse(t, resp, http.StatusOK, "No events")
}

func TestWebhookMalformedBody(t *testing.T) {
	app := newTestApp(SendModeBroadcast, &fakeDispatcher{}, &fakeRegistry{})

	resp := app.Process(context.Background(), webhookRequest("not json"))

	checkResponse(t, resp, http.StatusBadRequest, "Invalid request body")
}

func TestWebhookNoEvents(t *testing.T) {
	app := newTestApp(SendModeBroadcast, &fakeDispatcher{}, &fakeRegistry{})

	resp := app.Process(context.Background(), webhookRequest(`{"events":[]}`))

	checkResponse(t, resp, http.StatusOK, "No events")
}

func TestWebhookGroupDiscovery(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	reg := &fakeRegistry{}
	app := newTestApp(SendModeBroadcast, dispatcher, reg)

	body := `{"events":[{"replyToken":"rt","source":{"type":"group","groupId":"Gabc"}}]}`
	resp := app.Process(context.Background(), webhookRequest(body))

	checkResponse(t, resp, http.StatusOK, "Success Add Group")
	if len(reg.added) != 1 || reg.added[0] != "Gabc" {
		t.Errorf("added = %v, want [Gabc]", reg.added)
	}
	// Group discovery does not consume the reply token.
	if len(dispatcher.replies) != 0 {
		t.Errorf("replies = %d, want 0", len(dispatcher.replies))
	}
}

func TestWebhookGroupRegistrationError(t *testing.T) {
	reg := &fakeRegistry{addErr: errors.New("table unavailable")}
	app := newTestApp(SendModeBroadcast, &fakeDispatcher{}, reg)

	body := `{"events":[{"source":{"groupId":"Gabc"}}]}`
	resp := app.Process(context.Background(), webhookRequest(body))

	checkResponse(t, resp, http.StatusInternalServerError, "Failed to add group")
}

func TestWebhookDefaultReply(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	app := newTestApp(SendModeBroadcast, dispatcher, &fakeRegistry{})

	body := `{"events":[{"replyToken":"rt-123","source":{"type":"user","userId":"U1"}}]}`
	resp := app.Process(context.Background(), webhookRequest(body))

	checkResponse(t, resp, http.StatusOK, "Success")
	if len(dispatcher.replies) != 1 || dispatcher.replies[0] != "rt-123" {
		t.Fatalf("replies = %v, want [rt-123]", dispatcher.replies)
	}
	if dispatcher.replyTexts[0] != defaultReplyText {
		t.Errorf("reply text = %q, want the default disclaimer", dispatcher.replyTexts[0])
	}
}

func TestWebhookOnlyFirstEventInspected(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	reg := &fakeRegistry{}
	app := newTestApp(SendModeBroadcast, dispatcher, reg)

	body := `{"events":[` +
		`{"source":{"groupId":"Gfirst"}},` +
		`{"source":{"groupId":"Gsecond"}}]}`
	resp := app.Process(context.Background(), webhookRequest(body))

	checkResponse(t, resp, http.StatusOK, "Success Add Group")
	if len(reg.added) != 1 || reg.added[0] != "Gfirst" {
		t.Errorf("added = %v, want [Gfirst]", reg.added)
	}
}

func TestSendModeRouting(t *testing.T) {
	tests := []struct {
		name           string
		mode           SendMode
		wantBroadcasts int
		wantPushes     int
	}{
		{name: "broadcast", mode: SendModeBroadcast, wantBroadcasts: 1, wantPushes: 0},
		{name: "group", mode: SendModeGroup, wantBroadcasts: 0, wantPushes: 1},
		{name: "all", mode: SendModeAll, wantBroadcasts: 1, wantPushes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			reg := &fakeRegistry{ids: []string{"G1"}}
			app := newTestApp(SendModeBroadcast, dispatcher, reg)

			if err := app.Send(context.Background(), tt.mode, dispatch.Payload{Message: "hi"}); err != nil {
				t.Fatalf("Send failed: %v", err)
			}
			if len(dispatcher.broadcasts) != tt.wantBroadcasts {
				t.Errorf("broadcasts = %d, want %d", len(dispatcher.broadcasts), tt.wantBroadcasts)
			}
			if len(dispatcher.pushes) != tt.wantPushes {
				t.Errorf("pushes = %d, want %d", len(dispatcher.pushes), tt.wantPushes)
			}
		})
	}
}
