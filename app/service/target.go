package service

import (
	"context"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/entity"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

const (
	DomainBooking      = "booking"
	DomainTrainBooking = "train_booking"
)

// lifecycleIntent abstracts the booking lifecycle over both domains. Each
// target maps intents onto its own status vocabulary (a held train booking
// is WAITING, a held generic booking is PENDING).
type lifecycleIntent int

const (
	lifecycleHold lifecycleIntent = iota
	lifecycleConfirm
	lifecycleCancel
)

// PaymentTarget is the capability a resolved booking exposes to the
// reconciliation engine: identity, contact details, and an atomic update
// of the (paymentStatus, status) pair.
type PaymentTarget interface {
	Ref() string
	Domain() string
	AmountCents() int64
	Currency() string
	ContactEmail() string
	ContactPhone() *string
	PaymentStatus() types.PaymentStatus
	UpdateStatus(ctx context.Context, paymentStatus types.PaymentStatus, intent lifecycleIntent) error
}

type bookingRepository interface {
	FindByRef(ctx context.Context, ref string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, ref string, paymentStatus types.PaymentStatus, status types.BookingStatus) error
}

type trainBookingRepository interface {
	FindByRef(ctx context.Context, ref string) (*entity.TrainBooking, error)
	FindByPNR(ctx context.Context, pnr string) (*entity.TrainBooking, error)
	UpdateStatus(ctx context.Context, ref string, paymentStatus types.PaymentStatus, status types.TrainBookingStatus) error
}

type webhookEventRepository interface {
	Create(ctx context.Context, event *entity.WebhookEvent) error
}

type bookingTarget struct {
	booking *entity.Booking
	repo    bookingRepository
}

func (t *bookingTarget) Ref() string                        { return t.booking.Ref }
func (t *bookingTarget) Domain() string                     { return DomainBooking }
func (t *bookingTarget) AmountCents() int64                 { return t.booking.AmountCents }
func (t *bookingTarget) Currency() string                   { return t.booking.Currency }
func (t *bookingTarget) ContactEmail() string               { return t.booking.GuestEmail }
func (t *bookingTarget) ContactPhone() *string              { return t.booking.GuestPhone }
func (t *bookingTarget) PaymentStatus() types.PaymentStatus { return t.booking.PaymentStatus }

func (t *bookingTarget) UpdateStatus(ctx context.Context, paymentStatus types.PaymentStatus, intent lifecycleIntent) error {
	var status types.BookingStatus
	switch intent {
	case lifecycleConfirm:
		status = types.BookingStatusConfirmed
	case lifecycleCancel:
		status = types.BookingStatusCancelled
	default:
		status = types.BookingStatusPending
	}
	return t.repo.UpdateStatus(ctx, t.booking.Ref, paymentStatus, status)
}

type trainBookingTarget struct {
	booking *entity.TrainBooking
	repo    trainBookingRepository
}

func (t *trainBookingTarget) Ref() string                        { return t.booking.Ref }
func (t *trainBookingTarget) Domain() string                     { return DomainTrainBooking }
func (t *trainBookingTarget) AmountCents() int64                 { return t.booking.AmountCents }
func (t *trainBookingTarget) Currency() string                   { return t.booking.Currency }
func (t *trainBookingTarget) ContactEmail() string               { return t.booking.ContactEmail }
func (t *trainBookingTarget) ContactPhone() *string              { return t.booking.ContactPhone }
func (t *trainBookingTarget) PaymentStatus() types.PaymentStatus { return t.booking.PaymentStatus }

func (t *trainBookingTarget) UpdateStatus(ctx context.Context, paymentStatus types.PaymentStatus, intent lifecycleIntent) error {
	var status types.TrainBookingStatus
	switch intent {
	case lifecycleConfirm:
		status = types.TrainBookingStatusConfirmed
	case lifecycleCancel:
		status = types.TrainBookingStatusCancelled
	default:
		status = types.TrainBookingStatusWaiting
	}
	return t.repo.UpdateStatus(ctx, t.booking.Ref, paymentStatus, status)
}
