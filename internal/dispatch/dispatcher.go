// Package dispatch sends messages through the LINE Messaging API:
// broadcast to all friends, push to registered groups, and single-use
// replies to webhook events.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	relayerrors "linerelay/internal/errors"
	"linerelay/internal/imagestore"
	"linerelay/internal/imaging"
	"linerelay/internal/logger"
	"linerelay/internal/metrics"
)

// Dispatcher talks to the LINE Messaging API.
type Dispatcher struct {
	client    *messaging_api.MessagingApiAPI
	storage   imagestore.Storage
	converter *imaging.Converter
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// Config holds the dispatcher's collaborators. Storage may be nil when
// image uploads are not configured; Metrics may be nil on hosts that do
// not export metrics.
type Config struct {
	ChannelToken string

	// Endpoint overrides the LINE API base URL. Empty uses the
	// default; tests point it at a local server.
	Endpoint string

	Storage   imagestore.Storage
	Converter *imaging.Converter
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// New creates a Dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	var opts []messaging_api.MessagingApiAPIOption
	if cfg.Endpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(cfg.Endpoint))
	}
	client, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}

	converter := cfg.Converter
	if converter == nil {
		converter = imaging.NewConverter()
	}

	return &Dispatcher{
		client:    client,
		storage:   cfg.Storage,
		converter: converter,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.WithModule("dispatch"),
	}, nil
}

// Broadcast builds the outbound message and sends it to every friend
// of the bot.
func (d *Dispatcher) Broadcast(ctx context.Context, p Payload) error {
	message, err := d.buildMessage(ctx, p)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = d.client.Broadcast(&messaging_api.BroadcastRequest{
		Messages:             []messaging_api.MessageInterface{message},
		NotificationDisabled: p.NotificationDisabled,
	}, "")
	d.metrics.RecordDispatch("broadcast", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("broadcast message: %w", err)
	}

	d.logger.Debug("Broadcast sent")
	return nil
}

// PushToGroups builds the outbound message once and pushes it to each
// group id. Every id is attempted; per-group failures are collected
// and returned joined after the fan-out completes.
func (d *Dispatcher) PushToGroups(ctx context.Context, groupIDs []string, p Payload) error {
	if len(groupIDs) == 0 {
		return nil
	}

	message, err := d.buildMessage(ctx, p)
	if err != nil {
		return err
	}

	var errs []error
	for _, groupID := range groupIDs {
		start := time.Now()
		_, err := d.client.PushMessage(&messaging_api.PushMessageRequest{
			To:                   groupID,
			Messages:             []messaging_api.MessageInterface{message},
			NotificationDisabled: p.NotificationDisabled,
		}, "")
		d.metrics.RecordDispatch("push", time.Since(start).Seconds())
		if err != nil {
			d.logger.WithError(err).WithField("group_id", groupID).Error("Failed to push to group")
			d.metrics.RecordFanoutFailure()
			errs = append(errs, relayerrors.NewDispatchError(groupID, err))
		}
	}

	d.logger.WithField("groups", len(groupIDs)).
		WithField("failures", len(errs)).
		Info("Group fan-out finished")
	return errors.Join(errs...)
}

// Reply sends a text reply for a webhook event's reply token.
func (d *Dispatcher) Reply(ctx context.Context, replyToken, text string) error {
	start := time.Now()
	_, err := d.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			&messaging_api.TextMessage{Text: text},
		},
	})
	d.metrics.RecordDispatch("reply", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// Push sends a plain text message to a single recipient id.
func (d *Dispatcher) Push(ctx context.Context, to, text string) error {
	start := time.Now()
	_, err := d.client.PushMessage(&messaging_api.PushMessageRequest{
		To: to,
		Messages: []messaging_api.MessageInterface{
			&messaging_api.TextMessage{Text: text},
		},
	}, "")
	d.metrics.RecordDispatch("push", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("push message to %s: %w", to, err)
	}
	return nil
}
