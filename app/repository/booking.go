package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/entity"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) FindByRef(ctx context.Context, ref string) (*entity.Booking, error) {
	query := `
		SELECT ref, user_ref, product_type, amount_cents, currency,
			guest_email, guest_phone, status, payment_status,
			created_at, updated_at
		FROM bookings
		WHERE ref = ?
	`

	booking := &entity.Booking{}
	var guestPhone sql.NullString
	err := r.db.QueryRowContext(ctx, query, ref).Scan(
		&booking.Ref,
		&booking.UserRef,
		&booking.ProductType,
		&booking.AmountCents,
		&booking.Currency,
		&booking.GuestEmail,
		&guestPhone,
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
	booking.GuestPhone = stringPtrFromNull(guestPhone)

	return booking, nil
}

// UpdateStatus writes both status columns in one statement so a crash can
// never leave the pair inconsistent.
func (r *BookingRepository) UpdateStatus(ctx context.Context, ref string, paymentStatus types.PaymentStatus, status types.BookingStatus) error {
	query := `
		UPDATE bookings SET
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
		return ErrBookingNotFound
	}

	return nil
}
