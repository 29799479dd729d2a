package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/entity"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

var ErrTrainBookingNotFound = errors.New("train booking not found")

type TrainBookingRepository struct {
	db DBTX
}

func NewTrainBookingRepository(db DBTX) *TrainBookingRepository {
	return &TrainBookingRepository{db: db}
}

func (r *TrainBookingRepository) FindByRef(ctx context.Context, ref string) (*entity.TrainBooking, error) {
	return r.findOne(ctx, "ref = ?", ref)
}

func (r *TrainBookingRepository) FindByPNR(ctx context.Context, pnr string) (*entity.TrainBooking, error) {
	return r.findOne(ctx, "pnr = ?", pnr)
}

func (r *TrainBookingRepository) findOne(ctx context.Context, where string, arg interface{}) (*entity.TrainBooking, error) {
	query := `
		SELECT ref, user_ref, pnr, train_number, train_name,
			origin_station, destination_station, departure_at, arrival_at,
			passenger_count, amount_cents, currency,
			contact_email, contact_phone, status, payment_status,
			created_at, updated_at
		FROM train_bookings
		WHERE ` + where

	booking := &entity.TrainBooking{}
	var arrivalAt sql.NullTime
	var contactPhone sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&booking.Ref,
		&booking.UserRef,
		&booking.PNR,
		&booking.TrainNumber,
		&booking.TrainName,
		&booking.OriginStation,
		&booking.DestinationStation,
		&booking.DepartureAt,
		&arrivalAt,
		&booking.PassengerCount,
		&booking.AmountCents,
		&booking.Currency,
		&booking.ContactEmail,
		&contactPhone,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	booking.ArrivalAt = timePtrFromNull(arrivalAt)
	booking.ContactPhone = stringPtrFromNull(contactPhone)

	return booking, nil
}

// UpdateStatus writes both status columns in one statement, matching the
// booking repository's atomicity contract.
func (r *TrainBookingRepository) UpdateStatus(ctx context.Context, ref string, paymentStatus types.PaymentStatus, status types.TrainBookingStatus) error {
	query := `
		UPDATE train_bookings SET
			payment_status = ?,
			status = ?,
			updated_at = ?
		WHERE ref = ?
	`

	result, err := r.db.ExecContext(ctx, query, string(paymentStatus), string(status), time.Now().UTC(), ref)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTrainBookingNotFound
	}

	return nil
}
