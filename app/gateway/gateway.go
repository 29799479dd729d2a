package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

var (
	ErrGatewayNotSupported = errors.New("gateway is not supported")
	ErrSignatureMismatch   = errors.New("signature mismatch")
	ErrCredentialsMissing  = errors.New("gateway credentials are not configured")
	ErrMalformedPayload    = errors.New("malformed webhook payload")
)

// Notification is a provider webhook delivery after signature verification
// and status normalization. TransactionRef correlates it to a booking.
// RawPayload and Signature carry the delivery as received so the audit log
// can replay it.
type Notification struct {
	EventID        string
	TransactionRef string

	RawStatus string
	Outcome   types.Outcome

	Amount     string
	OccurredAt *time.Time

	RawPayload []byte
	Signature  string
}

type Gateway interface {
	Name() string
	ParseNotification(ctx context.Context, payload []byte, signature string) (*Notification, error)
}

// Verifier validates a delivery before it is parsed. Real implementations
// recompute the provider's signature; the mock implementation skips the
// check entirely and is selected once at startup, never per request.
type Verifier interface {
	Verify(fields map[string]string, payload []byte, signature string) error
}
