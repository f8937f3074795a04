package notify

import (
	"context"
	"time"

	"learnx/internal/data/entity"
	"learnx/pkg/utils"

	"go.uber.org/zap"
)

// Notifier fans a payment outcome out to email and webhook. Delivery is
// best-effort: failures are logged, never surfaced to the payment flow.
type Notifier struct {
	mailer  *Mailer
	webhook *Webhook
	log     *zap.Logger
}

func NewNotifier(config *utils.Config, log *zap.Logger) *Notifier {
	return &Notifier{
		mailer:  NewMailer(config.Email, log),
		webhook: NewWebhook(config.Webhook, log),
		log:     log.With(zap.String("component", "notifier")),
	}
}

// PaymentDecided notifies the payer and the webhook endpoint after a payment
// reaches a terminal state. Safe to call on a nil receiver and with a nil
// user or course (notification is then webhook-only or skipped).
func (n *Notifier) PaymentDecided(payment *entity.Payment, user *entity.User, course *entity.Course) {
	if n == nil {
		return
	}

	event := "payment.failed"
	if payment.Status == entity.PaymentStatusCompleted {
		event = "payment.completed"
	}

	if n.mailer != nil && user != nil && course != nil {
		var err error
		if payment.Status == entity.PaymentStatusCompleted {
			err = n.mailer.SendPaymentApproved(user.Email, user.Name, course.Title, payment.TransactionID)
		} else {
			err = n.mailer.SendPaymentRejected(user.Email, user.Name, course.Title, payment.TransactionID)
		}
		if err != nil {
			n.log.Warn("Payment email not delivered",
				zap.Error(err),
				zap.String("transaction_id", payment.TransactionID),
			)
		}
	}

	if n.webhook != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := n.webhook.Deliver(ctx, WebhookEvent{
			Event:         event,
			TransactionID: payment.TransactionID,
			UserID:        payment.UserID.String(),
			CourseID:      payment.CourseID.String(),
			Amount:        payment.Amount,
			Method:        string(payment.Method),
			Status:        string(payment.Status),
			OccurredAt:    time.Now(),
		})
		if err != nil {
			n.log.Warn("Payment webhook not delivered",
				zap.Error(err),
				zap.String("transaction_id", payment.TransactionID),
			)
		}
	}
}
