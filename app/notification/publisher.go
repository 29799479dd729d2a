package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/factory"
)

const (
	RoutingKeyEmailBookingConfirmed = "notify.email.booking_confirmed"
	RoutingKeyEmailBookingFailed    = "notify.email.booking_failed"
	RoutingKeySMSPaymentConfirmed   = "notify.sms.payment_confirmed"
	RoutingKeySMSPaymentFailed      = "notify.sms.payment_failed"
)

type EmailMessage struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Template       string `json:"template"`
	TransactionRef string `json:"transaction_ref"`
	Domain         string `json:"domain"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
}

type SMSMessage struct {
	Phone          string `json:"phone"`
	Body           string `json:"body"`
	TransactionRef string `json:"transaction_ref"`
}

// Publisher is the outbound notification channel. Sends are best-effort:
// callers must treat every error as log-and-continue.
type Publisher interface {
	PublishEmail(ctx context.Context, key string, message *EmailMessage) error
	PublishSMS(ctx context.Context, key string, message *SMSMessage) error
}

// LogPublisher stands in when no broker is configured. It keeps the
// dispatch path exercised in local development.
type LogPublisher struct {
	logger logrus.FieldLogger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: factory.NewModuleLogger("notification-log")}
}

func (p *LogPublisher) PublishEmail(_ context.Context, key string, message *EmailMessage) error {
	p.logger.WithFields(logrus.Fields{
		"routing_key":     key,
		"to":              message.To,
		"transaction_ref": message.TransactionRef,
	}).Info("Email notification (not delivered, no broker configured)")
	return nil
}

func (p *LogPublisher) PublishSMS(_ context.Context, key string, message *SMSMessage) error {
	p.logger.WithFields(logrus.Fields{
		"routing_key":     key,
		"phone":           message.Phone,
		"transaction_ref": message.TransactionRef,
	}).Info("SMS notification (not delivered, no broker configured)")
	return nil
}
