package gateway

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

func jazzCashSecureHash(fields map[string]string, salt string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == jazzCashSignatureField || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := []string{salt}
	for _, k := range keys {
		values = append(values, fields[k])
	}
	return strings.ToUpper(hmacSHA256Hex(salt, strings.Join(values, "&")))
}

func jazzCashPayload(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	payload, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func TestJazzCashGatewayParseNotification(t *testing.T) {
	salt := "abc123salt"
	fields := map[string]string{
		"pp_TxnRefNo":        "BK123",
		"pp_ResponseCode":    "000",
		"pp_ResponseMessage": "Success",
		"pp_Amount":          "150000",
		"pp_BillReference":   "bill-9",
		"pp_TxnDateTime":     "20250101120000",
	}
	fields[jazzCashSignatureField] = jazzCashSecureHash(fields, salt)

	g := NewJazzCashGateway(NewJazzCashVerifier(JazzCashConfig{MerchantID: "MC001", IntegritySalt: salt}))
	n, err := g.ParseNotification(context.Background(), jazzCashPayload(t, fields), "")
	if err != nil {
		t.Fatalf("expected notification, got %v", err)
	}
	if n.TransactionRef != "BK123" {
		t.Fatalf("unexpected transaction ref: %s", n.TransactionRef)
	}
	if n.Outcome != types.OutcomeSuccess {
		t.Fatalf("unexpected outcome: %s", n.Outcome)
	}
	if n.Amount != "150000" {
		t.Fatalf("unexpected amount: %s", n.Amount)
	}
	if n.OccurredAt == nil {
		t.Fatal("expected occurred at to be parsed from pp_TxnDateTime")
	}
}

func TestJazzCashGatewayRejectsBadHash(t *testing.T) {
	salt := "abc123salt"
	fields := map[string]string{
		"pp_TxnRefNo":     "BK123",
		"pp_ResponseCode": "000",
		"pp_Amount":       "150000",
	}
	fields[jazzCashSignatureField] = jazzCashSecureHash(fields, "wrong-salt")

	g := NewJazzCashGateway(NewJazzCashVerifier(JazzCashConfig{IntegritySalt: salt}))
	if _, err := g.ParseNotification(context.Background(), jazzCashPayload(t, fields), ""); err == nil {
		t.Fatal("expected hash mismatch to be rejected")
	}
}

func TestJazzCashGatewayRejectsTamperedField(t *testing.T) {
	salt := "abc123salt"
	fields := map[string]string{
		"pp_TxnRefNo":     "BK123",
		"pp_ResponseCode": "124",
		"pp_Amount":       "150000",
	}
	fields[jazzCashSignatureField] = jazzCashSecureHash(fields, salt)
	fields["pp_ResponseCode"] = "000"

	g := NewJazzCashGateway(NewJazzCashVerifier(JazzCashConfig{IntegritySalt: salt}))
	if _, err := g.ParseNotification(context.Background(), jazzCashPayload(t, fields), ""); err == nil {
		t.Fatal("expected tampered response code to be rejected")
	}
}

func TestJazzCashGatewayFormEncodedBody(t *testing.T) {
	salt := "abc123salt"
	fields := map[string]string{
		"pp_TxnRefNo":     "BK77",
		"pp_ResponseCode": "999",
		"pp_Amount":       "5000",
	}
	hash := jazzCashSecureHash(fields, salt)
	body := "pp_TxnRefNo=BK77&pp_ResponseCode=999&pp_Amount=5000&pp_SecureHash=" + hash

	g := NewJazzCashGateway(NewJazzCashVerifier(JazzCashConfig{IntegritySalt: salt}))
	n, err := g.ParseNotification(context.Background(), []byte(body), "")
	if err != nil {
		t.Fatalf("expected form body to parse, got %v", err)
	}
	if n.Outcome != types.OutcomeCancelled {
		t.Fatalf("unexpected outcome: %s", n.Outcome)
	}
}

func TestNormalizeJazzCashCode(t *testing.T) {
	cases := map[string]types.Outcome{
		"000": types.OutcomeSuccess,
		"999": types.OutcomeCancelled,
		"124": types.OutcomeFailed,
		"431": types.OutcomeFailed,
		"":    types.OutcomeUnknown,
	}
	for code, want := range cases {
		if got := normalizeJazzCashCode(code); got != want {
			t.Fatalf("code %q: expected %s, got %s", code, want, got)
		}
	}
}
