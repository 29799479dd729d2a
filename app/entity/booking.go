package entity

import (
	"time"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

// Booking is the generic marketplace booking (hotel, flight, car, activity,
// eSIM). Ref doubles as the transaction reference echoed back by every
// payment provider.
type Booking struct {
	Ref     string
	UserRef string

	ProductType string

	AmountCents int64
	Currency    string

	GuestEmail string
	GuestPhone *string

	Status        types.BookingStatus
	PaymentStatus types.PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
