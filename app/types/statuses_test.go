package types

import "testing"

func TestTerminalPaymentStatus(t *testing.T) {
	terminal := []PaymentStatus{PaymentStatusCompleted, PaymentStatusRefunded}
	for _, status := range terminal {
		if !TerminalPaymentStatus(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	open := []PaymentStatus{PaymentStatusPending, PaymentStatusFailed}
	for _, status := range open {
		if TerminalPaymentStatus(status) {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}

func TestParsePaymentStatus(t *testing.T) {
	status, ok := ParsePaymentStatus(" completed ")
	if !ok || status != PaymentStatusCompleted {
		t.Fatalf("unexpected result: %s %v", status, ok)
	}
	if _, ok := ParsePaymentStatus("SETTLED"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
