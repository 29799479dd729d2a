package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

func stripeSignatureHeader(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%d.%s", ts, string(payload))))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeVerifier(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	secret := "whsec_test"
	verifier := NewStripeVerifier(StripeConfig{WebhookSecret: secret, SignatureToleranceSeconds: 300})

	header := stripeSignatureHeader(payload, secret, time.Now().Unix())
	if err := verifier.Verify(nil, payload, header); err != nil {
		t.Fatalf("expected signature to validate, got %v", err)
	}

	wrong := NewStripeVerifier(StripeConfig{WebhookSecret: "whsec_other", SignatureToleranceSeconds: 300})
	if err := wrong.Verify(nil, payload, header); err == nil {
		t.Fatal("expected signature with wrong secret to fail")
	}

	stale := stripeSignatureHeader(payload, secret, time.Now().Add(-time.Hour).Unix())
	if err := verifier.Verify(nil, payload, stale); err == nil {
		t.Fatal("expected signature outside tolerance to fail")
	}

	if err := verifier.Verify(nil, payload, ""); err == nil {
		t.Fatal("expected missing signature header to fail")
	}
}

func TestStripeVerifierMissingSecret(t *testing.T) {
	verifier := NewStripeVerifier(StripeConfig{})
	payload := []byte(`{}`)
	header := stripeSignatureHeader(payload, "whsec_test", time.Now().Unix())
	if err := verifier.Verify(nil, payload, header); err == nil {
		t.Fatal("expected verification to fail closed without a secret")
	}
}

func TestStripeGatewayParseNotification(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{
		"id": "evt_42",
		"type": "payment_intent.succeeded",
		"created": 1735689600,
		"data": {"object": {"id": "pi_1", "amount": 12500, "currency": "usd", "metadata": {"transaction_ref": "BK123"}}}
	}`)
	header := stripeSignatureHeader(payload, secret, time.Now().Unix())

	g := NewStripeGateway(NewStripeVerifier(StripeConfig{WebhookSecret: secret, SignatureToleranceSeconds: 300}))
	n, err := g.ParseNotification(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("expected notification, got %v", err)
	}
	if n.EventID != "evt_42" {
		t.Fatalf("unexpected event id: %s", n.EventID)
	}
	if n.TransactionRef != "BK123" {
		t.Fatalf("unexpected transaction ref: %s", n.TransactionRef)
	}
	if n.Outcome != types.OutcomeSuccess {
		t.Fatalf("unexpected outcome: %s", n.Outcome)
	}
	if n.Amount != "12500" {
		t.Fatalf("unexpected amount: %s", n.Amount)
	}
	if n.OccurredAt == nil || n.OccurredAt.Unix() != 1735689600 {
		t.Fatalf("unexpected occurred at: %v", n.OccurredAt)
	}
}

func TestStripeGatewayRejectsTamperedPayload(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := stripeSignatureHeader(payload, secret, time.Now().Unix())

	tampered := []byte(`{"id":"evt_1","type":"payment_intent.payment_failed"}`)
	g := NewStripeGateway(NewStripeVerifier(StripeConfig{WebhookSecret: secret, SignatureToleranceSeconds: 300}))
	if _, err := g.ParseNotification(context.Background(), tampered, header); err == nil {
		t.Fatal("expected tampered payload to be rejected")
	}
}

func TestNormalizeStripeEventType(t *testing.T) {
	cases := map[string]types.Outcome{
		"payment_intent.succeeded":      types.OutcomeSuccess,
		"payment_intent.payment_failed": types.OutcomeFailed,
		"payment_intent.canceled":       types.OutcomeCancelled,
		"charge.refunded":               types.OutcomeRefunded,
		"charge.dispute.created":        types.OutcomeDispute,
		"customer.created":              types.OutcomeUnknown,
		"":                              types.OutcomeUnknown,
	}
	for eventType, want := range cases {
		if got := normalizeStripeEventType(eventType); got != want {
			t.Fatalf("event %q: expected %s, got %s", eventType, want, got)
		}
	}
}
