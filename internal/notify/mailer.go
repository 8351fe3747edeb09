// internal/notify/mailer.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"auction-house/internal/util"
)

// EmailSender delivers notification mail. Implementations are fire-and-forget:
// a failed send surfaces an error to the caller but never rolls back state
// that is already committed.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string, isHTML bool) error
}

// EmailMessage is the queued representation of an outgoing mail.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
}

const emailSubject = "notifications.email"

// QueueMailer hands mail off to a NATS subject for an out-of-process mail
// worker to deliver.
type QueueMailer struct {
	nc *nats.Conn
}

// NewQueueMailer creates a QueueMailer on the given connection.
func NewQueueMailer(nc *nats.Conn) *QueueMailer {
	return &QueueMailer{nc: nc}
}

// SendEmail publishes the message to the mail queue.
func (m *QueueMailer) SendEmail(ctx context.Context, to, subject, body string, isHTML bool) error {
	msg := EmailMessage{To: to, Subject: subject, Body: body, HTML: isHTML}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal email message: %v", util.ErrInternal, err)
	}
	if err := m.nc.Publish(emailSubject, data); err != nil {
		return fmt.Errorf("%w: failed to queue email to %s: %v", util.ErrInternal, to, err)
	}
	return nil
}

// LogMailer logs mail instead of sending it. Used when no NATS connection is
// configured, and in tests.
type LogMailer struct {
	Logger *zap.Logger
}

// SendEmail logs the message and reports success.
func (m *LogMailer) SendEmail(ctx context.Context, to, subject, body string, isHTML bool) error {
	m.Logger.Info("email notification (not sent, queue disabled)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
