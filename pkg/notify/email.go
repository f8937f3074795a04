package notify

import (
	"fmt"

	"learnx/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends payment outcome emails to payers.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// NewMailer returns nil when SMTP is not configured.
func NewMailer(config utils.EmailConfig, log *zap.Logger) *Mailer {
	if config.Host == "" || config.User == "" {
		return nil
	}

	from := config.From
	if from == "" {
		from = config.User
	}

	return &Mailer{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   from,
		log:    log.With(zap.String("notify", "email")),
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	return nil
}

func (m *Mailer) SendPaymentApproved(to, name, courseTitle, transactionID string) error {
	subject := "Payment verified - course access granted"
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Your payment for <strong>%s</strong> has been verified. You now have full access to the course.</p>
		<p>Transaction reference: %s</p>
		<p>— The LearnX team</p>`,
		name, courseTitle, transactionID,
	)
	return m.send(to, subject, body)
}

func (m *Mailer) SendPaymentRejected(to, name, courseTitle, transactionID string) error {
	subject := "Payment could not be verified"
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>We could not verify your payment for <strong>%s</strong>. If you believe this is a mistake,
		please reply with your bank reference and we will take another look.</p>
		<p>Transaction reference: %s</p>
		<p>— The LearnX team</p>`,
		name, courseTitle, transactionID,
	)
	return m.send(to, subject, body)
}
