// Package relay classifies inbound requests and orchestrates the
// notify and webhook flows: it authenticates notify calls, builds the
// outbound message from form data, and routes it by send mode; webhook
// deliveries either register a newly seen group id or get the default
// reply.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"linerelay/internal/auth"
	"linerelay/internal/dispatch"
	relayerrors "linerelay/internal/errors"
	"linerelay/internal/hosting"
	"linerelay/internal/logger"
	"linerelay/internal/metrics"
	"linerelay/internal/registry"
	"linerelay/internal/sentry"
)

// Fixed reply for messages that reach the bot directly: a reminder
// that nothing sent here is relayed anywhere.
const defaultReplyText = "お送り頂いたメッセージはどこにも送られないのでご注意ください"

// notifyPath is the authenticated broadcast endpoint; every other POST
// is treated as a LINE webhook delivery.
const notifyPath = "/notify"

// Dispatcher is the outbound messaging surface the orchestrator needs.
type Dispatcher interface {
	Broadcast(ctx context.Context, p dispatch.Payload) error
	PushToGroups(ctx context.Context, groupIDs []string, p dispatch.Payload) error
	Reply(ctx context.Context, replyToken, text string) error
}

// App orchestrates a single request from classification to response.
type App struct {
	verifier   *auth.Verifier
	registry   registry.Registry
	dispatcher Dispatcher
	sendMode   func() SendMode
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// Config holds the orchestrator's collaborators.
type Config struct {
	Verifier   *auth.Verifier
	Registry   registry.Registry
	Dispatcher Dispatcher

	// SendMode resolves the configured mode at call time. nil defaults
	// to broadcast.
	SendMode func() SendMode

	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// New creates an App.
func New(cfg Config) *App {
	sendMode := cfg.SendMode
	if sendMode == nil {
		sendMode = func() SendMode { return SendModeBroadcast }
	}
	return &App{
		verifier:   cfg.Verifier,
		registry:   cfg.Registry,
		dispatcher: cfg.Dispatcher,
		sendMode:   sendMode,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.WithModule("relay"),
	}
}

// webhookEnvelope is the LINE webhook delivery body. Only the fields
// the relay inspects are modeled.
type webhookEnvelope struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	ReplyToken string `json:"replyToken"`
	Source     struct {
		GroupID string `json:"groupId"`
	} `json:"source"`
}

// Process handles one request end to end and returns the
// host-independent response.
func (a *App) Process(ctx context.Context, req hosting.Request) hosting.Response {
	if a.isNotifyServiceRequest(req) {
		return a.processNotify(ctx, req)
	}
	return a.processWebhook(ctx, req)
}

// isNotifyServiceRequest reports whether the request targets the
// authenticated notify endpoint: POST /notify with a form content type.
func (a *App) isNotifyServiceRequest(req hosting.Request) bool {
	contentType := req.Header("Content-Type")
	return req.Path() == notifyPath &&
		req.Method() == http.MethodPost &&
		(contentType == "application/x-www-form-urlencoded" ||
			strings.HasPrefix(contentType, "multipart/form-data"))
}

func (a *App) processNotify(ctx context.Context, req hosting.Request) hosting.Response {
	start := time.Now()
	mode := a.sendMode()
	log := a.logger.WithField("mode", mode.String())

	token := auth.BearerToken(req.Header("Authorization"))
	if !a.verifier.CheckToken(token) {
		log.Warn("Rejected notify request with invalid token")
		a.metrics.RecordNotify(mode.String(), "unauthorized", 0)
		return hosting.NewResponse(http.StatusUnauthorized, "Invalid authorization token")
	}

	form, err := req.FormData()
	if err != nil {
		log.WithError(err).Warn("Failed to parse notify form data")
		a.metrics.RecordNotify(mode.String(), "invalid", 0)
		return hosting.NewResponse(http.StatusBadRequest, "Invalid request body")
	}
	payload := dispatch.ParsePayload(form)

	if err := a.Send(ctx, mode, payload); err != nil {
		var validationErr *relayerrors.ValidationError
		if errors.As(err, &validationErr) {
			log.WithError(err).Warn("Rejected notify request with invalid payload")
			a.metrics.RecordNotify(mode.String(), "invalid", 0)
			return hosting.NewResponse(http.StatusBadRequest, "Invalid image file type")
		}
		log.WithError(err).Error("Failed to send notify message")
		sentry.CaptureExceptionWithContext(ctx, err)
		a.metrics.RecordNotify(mode.String(), "error", 0)
		return hosting.NewResponse(http.StatusInternalServerError, "Failed to send message")
	}

	a.metrics.RecordNotify(mode.String(), "success", time.Since(start).Seconds())
	log.Info("Notify request processed")
	return hosting.NewResponse(http.StatusOK, "Success Notify")
}

// Send dispatches the payload according to the resolved mode. "all"
// broadcasts first, then fans out to groups, so the two batches do not
// interleave in logs. The CLI sends through this too, so the fan-out
// policy lives in one place.
func (a *App) Send(ctx context.Context, mode SendMode, p dispatch.Payload) error {
	switch mode {
	case SendModeGroup:
		return a.sendToGroups(ctx, p)
	case SendModeAll:
		if err := a.dispatcher.Broadcast(ctx, p); err != nil {
			return err
		}
		return a.sendToGroups(ctx, p)
	default:
		return a.dispatcher.Broadcast(ctx, p)
	}
}

func (a *App) sendToGroups(ctx context.Context, p dispatch.Payload) error {
	groupIDs, err := a.registry.ListAll(ctx)
	if err != nil {
		return err
	}
	a.metrics.SetRegistrySize(len(groupIDs))
	if len(groupIDs) == 0 {
		a.logger.Info("No groups registered, skipping group fan-out")
		return nil
	}
	return a.dispatcher.PushToGroups(ctx, groupIDs, p)
}

func (a *App) processWebhook(ctx context.Context, req hosting.Request) hosting.Response {
	body, err := req.BodyText()
	if err != nil {
		a.logger.WithError(err).Warn("Failed to read webhook body")
		a.metrics.RecordWebhook("malformed", "error")
		return hosting.NewResponse(http.StatusBadRequest, "Invalid request body")
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		a.logger.WithError(err).Warn("Failed to parse webhook body")
		a.metrics.RecordWebhook("malformed", "error")
		return hosting.NewResponse(http.StatusBadRequest, "Invalid request body")
	}

	// Empty deliveries are the platform's verification call and must
	// succeed, or LINE deregisters the webhook.
	if len(envelope.Events) == 0 {
		a.metrics.RecordWebhook("health_check", "success")
		return hosting.NewResponse(http.StatusOK, "No events")
	}

	// Only the first event is inspected. Multi-event batches are a
	// known limitation carried over from the notify relay's origins.
	event := envelope.Events[0]

	if groupID := event.Source.GroupID; groupID != "" {
		if err := a.registry.Add(ctx, groupID); err != nil {
			a.logger.WithError(err).WithField("group_id", groupID).Error("Failed to register group")
			sentry.CaptureExceptionWithContext(ctx, err)
			a.metrics.RecordWebhook("group_discovery", "error")
			return hosting.NewResponse(http.StatusInternalServerError, "Failed to add group")
		}
		a.logger.WithField("group_id", groupID).Info("Registered group")
		a.metrics.RecordWebhook("group_discovery", "success")
		return hosting.NewResponse(http.StatusOK, "Success Add Group")
	}

	if err := a.dispatcher.Reply(ctx, event.ReplyToken, defaultReplyText); err != nil {
		a.logger.WithError(err).Error("Failed to send default reply")
		sentry.CaptureExceptionWithContext(ctx, err)
		a.metrics.RecordWebhook("default_reply", "error")
		return hosting.NewResponse(http.StatusInternalServerError, "Failed to reply")
	}
	a.metrics.RecordWebhook("default_reply", "success")
	return hosting.NewResponse(http.StatusOK, "Success")
}
