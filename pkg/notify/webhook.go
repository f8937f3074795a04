package notify

import (
	"context"
	"fmt"
	"time"

	"learnx/pkg/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookEvent is the JSON body POSTed to the configured webhook URL on
// payment outcomes.
type WebhookEvent struct {
	Event         string    `json:"event"`
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	CourseID      string    `json:"course_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Webhook delivers payment events to an external HTTP endpoint.
type Webhook struct {
	client *resty.Client
	url    string
	log    *zap.Logger
}

// NewWebhook returns nil when no webhook URL is configured.
func NewWebhook(config utils.WebhookConfig, log *zap.Logger) *Webhook {
	if config.URL == "" {
		return nil
	}

	client := resty.New().
		SetTimeout(time.Duration(config.TimeoutSeconds) * time.Second).
		SetRetryCount(config.RetryCount)

	return &Webhook{
		client: client,
		url:    config.URL,
		log:    log.With(zap.String("notify", "webhook")),
	}
}

func (w *Webhook) Deliver(ctx context.Context, event WebhookEvent) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(w.url)

	if err != nil {
		w.log.Error("Failed to deliver webhook",
			zap.Error(err),
			zap.String("event", event.Event),
			zap.String("transaction_id", event.TransactionID),
		)
		return fmt.Errorf("deliver webhook %s: %w", event.Event, err)
	}

	if resp.IsError() {
		w.log.Warn("Webhook endpoint returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.String("event", event.Event),
		)
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode())
	}

	return nil
}
