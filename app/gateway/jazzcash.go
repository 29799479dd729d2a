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
	GatewayNameJazzCash = "jazzcash"

	jazzCashSignatureField = "pp_SecureHash"
	jazzCashDateTimeLayout = "20060102150405"
)

type JazzCashConfig struct {
	MerchantID    string
	IntegritySalt string
}

// JazzCashVerifier recomputes pp_SecureHash: non-empty fields sorted by
// key, values joined with '&', integrity salt prepended, HMAC-SHA256 with
// the salt as key, uppercase hex.
type JazzCashVerifier struct {
	cfg JazzCashConfig
}

func NewJazzCashVerifier(cfg JazzCashConfig) *JazzCashVerifier {
	return &JazzCashVerifier{cfg: cfg}
}

func (v *JazzCashVerifier) Verify(fields map[string]string, _ []byte, signature string) error {
	if strings.TrimSpace(v.cfg.IntegritySalt) == "" {
		return ErrCredentialsMissing
	}
	if strings.TrimSpace(signature) == "" {
		return fmt.Errorf("%w: missing %s", ErrSignatureMismatch, jazzCashSignatureField)
	}

	values := make([]string, 0, len(fields)+1)
	values = append(values, v.cfg.IntegritySalt)
	for _, key := range signedKeys(fields, jazzCashSignatureField) {
		values = append(values, fields[key])
	}

	expected := strings.ToUpper(hmacSHA256Hex(v.cfg.IntegritySalt, strings.Join(values, "&")))
	if !equalSignatures(expected, strings.ToUpper(strings.TrimSpace(signature))) {
		return ErrSignatureMismatch
	}
	return nil
}

type JazzCashGateway struct {
	verifier Verifier
	logger   logrus.FieldLogger
}

func NewJazzCashGateway(verifier Verifier) *JazzCashGateway {
	return &JazzCashGateway{
		verifier: verifier,
		logger:   factory.NewModuleLogger("gateway-jazzcash"),
	}
}

func (g *JazzCashGateway) Name() string {
	return GatewayNameJazzCash
}

func (g *JazzCashGateway) ParseNotification(_ context.Context, payload []byte, _ string) (*Notification, error) {
	fields, err := parseFlatFields(payload)
	if err != nil {
		return nil, err
	}

	if err := g.verifier.Verify(fields, payload, fields[jazzCashSignatureField]); err != nil {
		return nil, err
	}

	responseCode := strings.TrimSpace(fields["pp_ResponseCode"])
	notification := &Notification{
		EventID:        strings.TrimSpace(fields["pp_BillReference"]),
		TransactionRef: strings.TrimSpace(fields["pp_TxnRefNo"]),
		RawStatus:      responseCode,
		Outcome:        normalizeJazzCashCode(responseCode),
		Amount:         strings.TrimSpace(fields["pp_Amount"]),
		RawPayload:     payload,
		Signature:      strings.TrimSpace(fields[jazzCashSignatureField]),
	}

	if raw := strings.TrimSpace(fields["pp_TxnDateTime"]); raw != "" {
		if occurredAt, err := time.Parse(jazzCashDateTimeLayout, raw); err == nil {
			occurredAt = occurredAt.UTC()
			notification.OccurredAt = &occurredAt
		}
	}

	return notification, nil
}

// normalizeJazzCashCode maps JazzCash numeric response codes. Anything
// that is not the documented success or cancellation code is treated as a
// failure, never as a success.
func normalizeJazzCashCode(code string) types.Outcome {
	switch code {
	case "000":
		return types.OutcomeSuccess
	case "999":
		return types.OutcomeCancelled
	case "":
		return types.OutcomeUnknown
	default:
		return types.OutcomeFailed
	}
}
