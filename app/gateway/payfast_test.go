package gateway

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

func payFastSignature(fields map[string]string, passphrase string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == payFastSignatureField || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(fields[k]))
	}
	signed := strings.Join(pairs, "&")
	if passphrase != "" {
		signed += "&passphrase=" + url.QueryEscape(passphrase)
	}
	sum := md5.Sum([]byte(signed))
	return hex.EncodeToString(sum[:])
}

func payFastFormBody(fields map[string]string) []byte {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	return []byte(values.Encode())
}

func TestPayFastGatewayParseNotification(t *testing.T) {
	cfg := PayFastConfig{MerchantID: "10000100", MerchantKey: "46f0cd694581a", Passphrase: "pass phrase"}
	fields := map[string]string{
		"m_payment_id":   "PNR789",
		"pf_payment_id":  "1089250",
		"payment_status": "COMPLETE",
		"amount_gross":   "200.00",
		"amount_fee":     "4.60",
		"amount_net":     "195.40",
	}
	fields[payFastSignatureField] = payFastSignature(fields, cfg.Passphrase)

	g := NewPayFastGateway(NewPayFastVerifier(cfg))
	n, err := g.ParseNotification(context.Background(), payFastFormBody(fields), "")
	if err != nil {
		t.Fatalf("expected notification, got %v", err)
	}
	if n.TransactionRef != "PNR789" {
		t.Fatalf("unexpected transaction ref: %s", n.TransactionRef)
	}
	if n.EventID != "1089250" {
		t.Fatalf("unexpected event id: %s", n.EventID)
	}
	if n.Outcome != types.OutcomeSuccess {
		t.Fatalf("unexpected outcome: %s", n.Outcome)
	}
	if n.Amount != "200.00" {
		t.Fatalf("unexpected amount: %s", n.Amount)
	}
}

func TestPayFastGatewayNoPassphrase(t *testing.T) {
	cfg := PayFastConfig{MerchantID: "10000100", MerchantKey: "46f0cd694581a"}
	fields := map[string]string{
		"m_payment_id":   "BK10",
		"payment_status": "CANCELLED",
		"amount_gross":   "75.00",
	}
	fields[payFastSignatureField] = payFastSignature(fields, "")

	g := NewPayFastGateway(NewPayFastVerifier(cfg))
	n, err := g.ParseNotification(context.Background(), payFastFormBody(fields), "")
	if err != nil {
		t.Fatalf("expected notification, got %v", err)
	}
	if n.Outcome != types.OutcomeCancelled {
		t.Fatalf("unexpected outcome: %s", n.Outcome)
	}
}

func TestPayFastGatewayRejectsBadSignature(t *testing.T) {
	cfg := PayFastConfig{MerchantKey: "46f0cd694581a", Passphrase: "right"}
	fields := map[string]string{
		"m_payment_id":   "BK10",
		"payment_status": "COMPLETE",
	}
	fields[payFastSignatureField] = payFastSignature(fields, "wrong")

	g := NewPayFastGateway(NewPayFastVerifier(cfg))
	if _, err := g.ParseNotification(context.Background(), payFastFormBody(fields), ""); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestPayFastGatewayFallsBackToCustomRef(t *testing.T) {
	cfg := PayFastConfig{MerchantKey: "46f0cd694581a"}
	fields := map[string]string{
		"pf_payment_id":  "555",
		"payment_status": "COMPLETE",
		"custom_str1":    "BK42",
	}
	fields[payFastSignatureField] = payFastSignature(fields, "")

	g := NewPayFastGateway(NewPayFastVerifier(cfg))
	n, err := g.ParseNotification(context.Background(), payFastFormBody(fields), "")
	if err != nil {
		t.Fatalf("expected notification, got %v", err)
	}
	if n.TransactionRef != "BK42" {
		t.Fatalf("unexpected transaction ref: %s", n.TransactionRef)
	}
}

func TestNormalizePayFastStatus(t *testing.T) {
	cases := map[string]types.Outcome{
		"COMPLETE":  types.OutcomeSuccess,
		"complete":  types.OutcomeSuccess,
		"FAILED":    types.OutcomeFailed,
		"CANCELLED": types.OutcomeCancelled,
		"PENDING":   types.OutcomePending,
		"VOID":      types.OutcomeUnknown,
	}
	for status, want := range cases {
		if got := normalizePayFastStatus(status); got != want {
			t.Fatalf("status %q: expected %s, got %s", status, want, got)
		}
	}
}
