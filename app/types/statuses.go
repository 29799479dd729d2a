package types

import "strings"

// Outcome is the internal normalization of a provider's native payment
// status vocabulary. Providers never share codes; every gateway maps its
// own codes onto this set before anything touches a booking.
type Outcome string

const (
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeCancelled Outcome = "CANCELLED"
	OutcomePending   Outcome = "PENDING"
	OutcomeExpired   Outcome = "EXPIRED"
	OutcomeRefunded  Outcome = "REFUNDED"
	OutcomeDispute   Outcome = "DISPUTE"
	OutcomeUnknown   Outcome = "UNKNOWN"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// TerminalPaymentStatus reports whether a payment status must never be
// regressed by a later, staler delivery.
func TerminalPaymentStatus(status PaymentStatus) bool {
	switch status {
	case PaymentStatusCompleted, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type TrainBookingStatus string

const (
	TrainBookingStatusConfirmed TrainBookingStatus = "CONFIRMED"
	TrainBookingStatusWaiting   TrainBookingStatus = "WAITING"
	TrainBookingStatusCancelled TrainBookingStatus = "CANCELLED"
)

func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	switch PaymentStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case PaymentStatusPending:
		return PaymentStatusPending, true
	case PaymentStatusCompleted:
		return PaymentStatusCompleted, true
	case PaymentStatusFailed:
		return PaymentStatusFailed, true
	case PaymentStatusRefunded:
		return PaymentStatusRefunded, true
	default:
		return "", false
	}
}
