package gateway

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/factory"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

const (
	GatewayNamePayFast = "payfast"

	payFastSignatureField = "signature"
)

type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
}

// PayFastVerifier recomputes the ITN signature: non-empty fields sorted by
// key, values URL-encoded with spaces as '+', joined as `key=value` pairs
// with '&', optional passphrase appended, MD5, lowercase hex.
type PayFastVerifier struct {
	cfg PayFastConfig
}

func NewPayFastVerifier(cfg PayFastConfig) *PayFastVerifier {
	return &PayFastVerifier{cfg: cfg}
}

func (v *PayFastVerifier) Verify(fields map[string]string, _ []byte, signature string) error {
	if strings.TrimSpace(v.cfg.MerchantKey) == "" {
		return ErrCredentialsMissing
	}
	if strings.TrimSpace(signature) == "" {
		return fmt.Errorf("%w: missing %s", ErrSignatureMismatch, payFastSignatureField)
	}

	pairs := make([]string, 0, len(fields)+1)
	for _, key := range signedKeys(fields, payFastSignatureField) {
		pairs = append(pairs, key+"="+url.QueryEscape(fields[key]))
	}
	signed := strings.Join(pairs, "&")
	if passphrase := strings.TrimSpace(v.cfg.Passphrase); passphrase != "" {
		signed += "&passphrase=" + url.QueryEscape(passphrase)
	}

	sum := md5.Sum([]byte(signed))
	expected := hex.EncodeToString(sum[:])
	if !equalSignatures(expected, strings.ToLower(strings.TrimSpace(signature))) {
		return ErrSignatureMismatch
	}
	return nil
}

type PayFastGateway struct {
	verifier Verifier
	logger   logrus.FieldLogger
}

func NewPayFastGateway(verifier Verifier) *PayFastGateway {
	return &PayFastGateway{
		verifier: verifier,
		logger:   factory.NewModuleLogger("gateway-payfast"),
	}
}

func (g *PayFastGateway) Name() string {
	return GatewayNamePayFast
}

func (g *PayFastGateway) ParseNotification(_ context.Context, payload []byte, _ string) (*Notification, error) {
	fields, err := parseFlatFields(payload)
	if err != nil {
		return nil, err
	}

	if err := g.verifier.Verify(fields, payload, fields[payFastSignatureField]); err != nil {
		return nil, err
	}

	paymentStatus := strings.TrimSpace(fields["payment_status"])
	notification := &Notification{
		EventID:        strings.TrimSpace(fields["pf_payment_id"]),
		TransactionRef: strings.TrimSpace(fields["m_payment_id"]),
		RawStatus:      paymentStatus,
		Outcome:        normalizePayFastStatus(paymentStatus),
		Amount:         strings.TrimSpace(fields["amount_gross"]),
		RawPayload:     payload,
		Signature:      strings.TrimSpace(fields[payFastSignatureField]),
	}

	if notification.TransactionRef == "" {
		notification.TransactionRef = strings.TrimSpace(fields["custom_str1"])
	}

	if notification.Outcome == types.OutcomeUnknown {
		g.logger.WithField("payment_status", paymentStatus).Warn("Unknown payfast payment status")
	}

	return notification, nil
}

func normalizePayFastStatus(status string) types.Outcome {
	switch strings.ToUpper(status) {
	case "COMPLETE":
		return types.OutcomeSuccess
	case "FAILED":
		return types.OutcomeFailed
	case "CANCELLED":
		return types.OutcomeCancelled
	case "PENDING":
		return types.OutcomePending
	default:
		return types.OutcomeUnknown
	}
}
