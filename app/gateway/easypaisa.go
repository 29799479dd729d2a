package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/factory"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

const (
	GatewayNameEasyPaisa = "easypaisa"

	easyPaisaSignatureField = "signature"
)

type EasyPaisaConfig struct {
	StoreID string
	HashKey string
}

// EasyPaisaVerifier recomputes the signature: non-empty fields sorted by
// key, joined as `key=value` pairs with '&', HMAC-SHA256 with the hash
// key, uppercase hex.
type EasyPaisaVerifier struct {
	cfg EasyPaisaConfig
}

func NewEasyPaisaVerifier(cfg EasyPaisaConfig) *EasyPaisaVerifier {
	return &EasyPaisaVerifier{cfg: cfg}
}

func (v *EasyPaisaVerifier) Verify(fields map[string]string, _ []byte, signature string) error {
	if strings.TrimSpace(v.cfg.HashKey) == "" {
		return ErrCredentialsMissing
	}
	if strings.TrimSpace(signature) == "" {
		return fmt.Errorf("%w: missing %s", ErrSignatureMismatch, easyPaisaSignatureField)
	}

	pairs := make([]string, 0, len(fields))
	for _, key := range signedKeys(fields, easyPaisaSignatureField) {
		pairs = append(pairs, key+"="+fields[key])
	}

	expected := strings.ToUpper(hmacSHA256Hex(v.cfg.HashKey, strings.Join(pairs, "&")))
	if !equalSignatures(expected, strings.ToUpper(strings.TrimSpace(signature))) {
		return ErrSignatureMismatch
	}
	return nil
}

type EasyPaisaGateway struct {
	verifier Verifier
	logger   logrus.FieldLogger
}

func NewEasyPaisaGateway(verifier Verifier) *EasyPaisaGateway {
	return &EasyPaisaGateway{
		verifier: verifier,
		logger:   factory.NewModuleLogger("gateway-easypaisa"),
	}
}

func (g *EasyPaisaGateway) Name() string {
	return GatewayNameEasyPaisa
}

func (g *EasyPaisaGateway) ParseNotification(_ context.Context, payload []byte, _ string) (*Notification, error) {
	fields, err := parseFlatFields(payload)
	if err != nil {
		return nil, err
	}

	if err := g.verifier.Verify(fields, payload, fields[easyPaisaSignatureField]); err != nil {
		return nil, err
	}

	status := strings.TrimSpace(fields["status"])
	notification := &Notification{
		EventID:        strings.TrimSpace(fields["transactionId"]),
		TransactionRef: strings.TrimSpace(fields["orderId"]),
		RawStatus:      status,
		Outcome:        normalizeEasyPaisaStatus(status),
		Amount:         strings.TrimSpace(fields["amount"]),
		RawPayload:     payload,
		Signature:      strings.TrimSpace(fields[easyPaisaSignatureField]),
	}

	if raw := strings.TrimSpace(fields["paymentDate"]); raw != "" {
		if occurredAt, err := time.Parse(time.RFC3339, raw); err == nil {
			occurredAt = occurredAt.UTC()
			notification.OccurredAt = &occurredAt
		}
	}

	if notification.Outcome == types.OutcomeUnknown {
		g.logger.WithField("status", status).Warn("Unknown easypaisa status code")
	}

	return notification, nil
}

// normalizeEasyPaisaStatus maps the documented status vocabulary only.
// Anything outside it is UNKNOWN, never SUCCESS.
func normalizeEasyPaisaStatus(status string) types.Outcome {
	switch strings.ToLower(status) {
	case "0000", "success":
		return types.OutcomeSuccess
	case "failed":
		return types.OutcomeFailed
	case "pending":
		return types.OutcomePending
	case "cancelled":
		return types.OutcomeCancelled
	case "expired":
		return types.OutcomeExpired
	default:
		return types.OutcomeUnknown
	}
}
