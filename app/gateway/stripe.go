package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/factory"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

const GatewayNameStripe = "stripe"

type StripeConfig struct {
	WebhookSecret             string
	SignatureToleranceSeconds int64
}

// StripeVerifier checks the timestamped HMAC header Stripe sends as
// Stripe-Signature: `t=<unix>,v1=<hex>[,v1=<hex>...]`. The signed payload
// is the raw request body, never a re-serialized object.
type StripeVerifier struct {
	cfg StripeConfig
}

func NewStripeVerifier(cfg StripeConfig) *StripeVerifier {
	if cfg.SignatureToleranceSeconds <= 0 {
		cfg.SignatureToleranceSeconds = 300
	}
	return &StripeVerifier{cfg: cfg}
}

func (v *StripeVerifier) Verify(_ map[string]string, payload []byte, signature string) error {
	if strings.TrimSpace(v.cfg.WebhookSecret) == "" {
		return ErrCredentialsMissing
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%w: missing stripe-signature header", ErrSignatureMismatch)
	}

	var ts string
	candidates := make([]string, 0, 1)
	for _, part := range strings.Split(signature, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimSpace(strings.TrimPrefix(part, "t="))
		}
		if strings.HasPrefix(part, "v1=") {
			candidates = append(candidates, strings.TrimSpace(strings.TrimPrefix(part, "v1=")))
		}
	}
	if ts == "" || len(candidates) == 0 {
		return fmt.Errorf("%w: malformed stripe-signature header", ErrSignatureMismatch)
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid signature timestamp", ErrSignatureMismatch)
	}
	now := time.Now().Unix()
	if now-tsUnix > v.cfg.SignatureToleranceSeconds || tsUnix-now > v.cfg.SignatureToleranceSeconds {
		return fmt.Errorf("%w: signature timestamp outside tolerance", ErrSignatureMismatch)
	}

	mac := hmac.New(sha256.New, []byte(v.cfg.WebhookSecret))
	_, _ = mac.Write([]byte(ts + "." + string(payload)))
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return ErrSignatureMismatch
}

type StripeGateway struct {
	verifier Verifier
	logger   logrus.FieldLogger
}

func NewStripeGateway(verifier Verifier) *StripeGateway {
	return &StripeGateway{
		verifier: verifier,
		logger:   factory.NewModuleLogger("gateway-stripe"),
	}
}

func (g *StripeGateway) Name() string {
	return GatewayNameStripe
}

func (g *StripeGateway) ParseNotification(_ context.Context, payload []byte, signature string) (*Notification, error) {
	if err := g.verifier.Verify(nil, payload, signature); err != nil {
		return nil, err
	}

	var event struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Created int64  `json:"created"`
		Data    struct {
			Object struct {
				ID       string            `json:"id"`
				Amount   int64             `json:"amount"`
				Currency string            `json:"currency"`
				Metadata map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	notification := &Notification{
		EventID:    strings.TrimSpace(event.ID),
		RawStatus:  event.Type,
		Outcome:    normalizeStripeEventType(event.Type),
		RawPayload: payload,
		Signature:  strings.TrimSpace(signature),
	}

	notification.TransactionRef = strings.TrimSpace(event.Data.Object.Metadata["transaction_ref"])
	if notification.TransactionRef == "" {
		notification.TransactionRef = strings.TrimSpace(event.Data.Object.Metadata["booking_ref"])
	}
	if event.Data.Object.Amount > 0 {
		notification.Amount = strconv.FormatInt(event.Data.Object.Amount, 10)
	}
	if event.Created > 0 {
		occurredAt := time.Unix(event.Created, 0).UTC()
		notification.OccurredAt = &occurredAt
	}

	if notification.Outcome == types.OutcomeUnknown {
		g.logger.WithField("event_type", event.Type).Warn("Unhandled stripe event type")
	}

	return notification, nil
}

func normalizeStripeEventType(eventType string) types.Outcome {
	switch eventType {
	case "payment_intent.succeeded":
		return types.OutcomeSuccess
	case "payment_intent.payment_failed":
		return types.OutcomeFailed
	case "payment_intent.canceled":
		return types.OutcomeCancelled
	case "charge.refunded":
		return types.OutcomeRefunded
	case "charge.dispute.created":
		return types.OutcomeDispute
	default:
		return types.OutcomeUnknown
	}
}
