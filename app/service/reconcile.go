package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/entity"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/factory"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/gateway"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/notification"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

const defaultNotifyTimeout = 5 * time.Second

type ReconciliationService struct {
	bookingRepo   bookingRepository
	trainRepo     trainBookingRepository
	eventRepo     webhookEventRepository
	publisher     notification.Publisher
	notifyTimeout time.Duration
	logger        logrus.FieldLogger
}

func NewReconciliationService(
	bookingRepo bookingRepository,
	trainRepo trainBookingRepository,
	eventRepo webhookEventRepository,
	publisher notification.Publisher,
	notifyTimeout time.Duration,
) *ReconciliationService {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &ReconciliationService{
		bookingRepo:   bookingRepo,
		trainRepo:     trainRepo,
		eventRepo:     eventRepo,
		publisher:     publisher,
		notifyTimeout: notifyTimeout,
		logger:        factory.NewModuleLogger("reconciliation"),
	}
}

// Result tells the webhook adapter how a delivery was handled so it can
// shape the provider-specific acknowledgment.
type Result struct {
	TransactionRef string
	Outcome        types.Outcome
	Disposition    string
}

// Resolve locates the owner of a transaction reference: generic bookings
// first, then train bookings. Providers do not know which domain a
// payment belongs to.
func (s *ReconciliationService) Resolve(ctx context.Context, transactionRef string) (PaymentTarget, error) {
	booking, err := s.bookingRepo.FindByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}
	if booking != nil {
		return &bookingTarget{booking: booking, repo: s.bookingRepo}, nil
	}

	trainBooking, err := s.trainRepo.FindByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}
	if trainBooking == nil {
		// Legacy train checkouts sent the PNR as the payment reference.
		trainBooking, err = s.trainRepo.FindByPNR(ctx, transactionRef)
		if err != nil {
			return nil, err
		}
	}
	if trainBooking != nil {
		return &trainBookingTarget{booking: trainBooking, repo: s.trainRepo}, nil
	}

	return nil, ErrTargetNotFound
}

// Reconcile applies a verified, normalized notification to its booking.
// A nil error with a non-processed disposition means the delivery was
// acknowledged without mutating anything (orphan, unknown code, stale
// retry). A non-nil error means the store write failed and the provider
// should retry.
func (s *ReconciliationService) Reconcile(ctx context.Context, gatewayName string, n *gateway.Notification) (*Result, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"gateway":         gatewayName,
		"transaction_ref": n.TransactionRef,
		"outcome":         string(n.Outcome),
	})

	result := &Result{TransactionRef: n.TransactionRef, Outcome: n.Outcome}

	target, err := s.Resolve(ctx, n.TransactionRef)
	if err == ErrTargetNotFound {
		logger.Warn("Orphaned webhook, no booking owns this transaction reference")
		result.Disposition = entity.EventDispositionOrphaned
		s.persistEvent(ctx, gatewayName, n, result.Disposition, nil)
		return result, nil
	}
	if err != nil {
		s.persistEvent(ctx, gatewayName, n, entity.EventDispositionErrored, &err)
		return nil, err
	}

	paymentStatus, intent, actionable := transitionFor(n.Outcome)
	if !actionable {
		logger.Warn("Outcome requires no status transition, logged for manual review")
		result.Disposition = entity.EventDispositionIgnored
		s.persistEvent(ctx, gatewayName, n, result.Disposition, nil)
		return result, nil
	}

	// Ordering guard: a late PENDING must never regress a booking whose
	// payment already reached a terminal state.
	if paymentStatus == types.PaymentStatusPending && types.TerminalPaymentStatus(target.PaymentStatus()) {
		logger.WithField("current_payment_status", string(target.PaymentStatus())).
			Warn("Stale delivery, payment already terminal")
		result.Disposition = entity.EventDispositionStale
		s.persistEvent(ctx, gatewayName, n, result.Disposition, nil)
		return result, nil
	}

	if err := target.UpdateStatus(ctx, paymentStatus, intent); err != nil {
		logger.WithError(err).Error("Failed to persist reconciled status")
		s.persistEvent(ctx, gatewayName, n, entity.EventDispositionErrored, &err)
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"domain":         target.Domain(),
		"payment_status": string(paymentStatus),
	}).Info("Reconciled payment status")

	result.Disposition = entity.EventDispositionProcessed
	s.persistEvent(ctx, gatewayName, n, result.Disposition, nil)

	s.dispatchAsync(snapshotTarget(target), n.Outcome)

	return result, nil
}

// RecordRejected persists an audit row for a delivery that failed
// signature verification or could not be parsed.
func (s *ReconciliationService) RecordRejected(ctx context.Context, gatewayName string, payload []byte, signature, reason string) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "delivery rejected"
	}
	trimmed := truncate(reason, 1024)

	event := &entity.WebhookEvent{
		ID:          uuid.NewString(),
		Provider:    gatewayName,
		Signature:   strings.TrimSpace(signature),
		PayloadJSON: string(payload),
		Outcome:     string(types.OutcomeUnknown),
		Disposition: entity.EventDispositionRejected,
		Error:       &trimmed,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.WithError(err).WithField("gateway", gatewayName).
			Warn("Failed to persist rejected webhook event")
	}
}

// persistEvent writes the audit row with the delivery as received; errored
// rows are the dead-letter queue, so the raw payload must survive for
// manual replay.
func (s *ReconciliationService) persistEvent(ctx context.Context, gatewayName string, n *gateway.Notification, disposition string, cause *error) {
	event := &entity.WebhookEvent{
		ID:             uuid.NewString(),
		Provider:       gatewayName,
		TransactionRef: n.TransactionRef,
		Signature:      n.Signature,
		PayloadJSON:    string(n.RawPayload),
		RawStatus:      n.RawStatus,
		Outcome:        string(n.Outcome),
		Amount:         n.Amount,
		Disposition:    disposition,
		CreatedAt:      time.Now().UTC(),
	}
	if cause != nil && *cause != nil {
		text := truncate((*cause).Error(), 1024)
		event.Error = &text
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"gateway":         gatewayName,
			"transaction_ref": n.TransactionRef,
		}).Warn("Failed to persist webhook event")
	}
}

// transitionFor is the reconciliation state table. The lifecycle intent is
// mapped to domain labels by the target; actionable=false means the
// delivery is log-only.
func transitionFor(outcome types.Outcome) (types.PaymentStatus, lifecycleIntent, bool) {
	switch outcome {
	case types.OutcomeSuccess:
		return types.PaymentStatusCompleted, lifecycleConfirm, true
	case types.OutcomeFailed, types.OutcomeCancelled, types.OutcomeExpired:
		return types.PaymentStatusFailed, lifecycleCancel, true
	case types.OutcomePending:
		return types.PaymentStatusPending, lifecycleHold, true
	case types.OutcomeRefunded:
		return types.PaymentStatusRefunded, lifecycleCancel, true
	default:
		return "", lifecycleHold, false
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
