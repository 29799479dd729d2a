package service

import (
	"context"
	"fmt"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/notification"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

// targetSnapshot captures everything the dispatcher needs before the HTTP
// response is written; the goroutine must not touch the live target.
type targetSnapshot struct {
	ref         string
	domain      string
	email       string
	phone       *string
	amountCents int64
	currency    string
}

func snapshotTarget(target PaymentTarget) targetSnapshot {
	return targetSnapshot{
		ref:         target.Ref(),
		domain:      target.Domain(),
		email:       target.ContactEmail(),
		phone:       target.ContactPhone(),
		amountCents: target.AmountCents(),
		currency:    target.Currency(),
	}
}

func (s *ReconciliationService) dispatchAsync(snapshot targetSnapshot, outcome types.Outcome) {
	if !outcomeNotifies(outcome) {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("panic", r).Error("Notification dispatch panicked")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		s.dispatch(ctx, snapshot, outcome)
	}()
}

// dispatch is best-effort: each channel is attempted independently and a
// failure is only logged, never surfaced to the webhook response.
func (s *ReconciliationService) dispatch(ctx context.Context, snapshot targetSnapshot, outcome types.Outcome) {
	confirmed := outcome == types.OutcomeSuccess

	emailKey := notification.RoutingKeyEmailBookingFailed
	if confirmed {
		emailKey = notification.RoutingKeyEmailBookingConfirmed
	}

	if snapshot.email != "" {
		err := s.publisher.PublishEmail(ctx, emailKey, &notification.EmailMessage{
			To:             snapshot.email,
			Subject:        emailSubject(confirmed, snapshot.domain),
			Template:       emailKey,
			TransactionRef: snapshot.ref,
			Domain:         snapshot.domain,
			AmountCents:    snapshot.amountCents,
			Currency:       snapshot.currency,
		})
		if err != nil {
			s.logger.WithError(err).WithField("transaction_ref", snapshot.ref).
				Warn("Failed to publish email notification")
		}
	}

	if snapshot.phone != nil && *snapshot.phone != "" {
		smsKey := notification.RoutingKeySMSPaymentFailed
		if confirmed {
			smsKey = notification.RoutingKeySMSPaymentConfirmed
		}
		err := s.publisher.PublishSMS(ctx, smsKey, &notification.SMSMessage{
			Phone:          *snapshot.phone,
			Body:           smsBody(confirmed, snapshot),
			TransactionRef: snapshot.ref,
		})
		if err != nil {
			s.logger.WithError(err).WithField("transaction_ref", snapshot.ref).
				Warn("Failed to publish SMS notification")
		}
	}
}

// outcomeNotifies gates the dispatcher: only settled outcomes notify the
// guest, pending and review-only outcomes stay silent.
func outcomeNotifies(outcome types.Outcome) bool {
	switch outcome {
	case types.OutcomeSuccess, types.OutcomeFailed, types.OutcomeCancelled, types.OutcomeExpired, types.OutcomeRefunded:
		return true
	default:
		return false
	}
}

func emailSubject(confirmed bool, domain string) string {
	kind := "Booking"
	if domain == DomainTrainBooking {
		kind = "Train booking"
	}
	if confirmed {
		return kind + " confirmed"
	}
	return kind + " payment unsuccessful"
}

func smsBody(confirmed bool, snapshot targetSnapshot) string {
	amount := fmt.Sprintf("%s %.2f", snapshot.currency, float64(snapshot.amountCents)/100)
	if confirmed {
		return fmt.Sprintf("Payment of %s received for booking %s.", amount, snapshot.ref)
	}
	return fmt.Sprintf("Payment of %s for booking %s was not completed.", amount, snapshot.ref)
}
