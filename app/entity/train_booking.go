package entity

import (
	"time"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

// TrainBooking shares the payment lifecycle with Booking but carries the
// transport-domain fields. Webhooks resolve it by Ref; the PNR is a
// secondary, human-facing lookup key.
type TrainBooking struct {
	Ref     string
	UserRef string

	PNR         string
	TrainNumber string
	TrainName   string

	OriginStation      string
	DestinationStation string
	DepartureAt        time.Time
	ArrivalAt          *time.Time

	PassengerCount int32

	AmountCents int64
	Currency    string

	ContactEmail string
	ContactPhone *string

	Status        types.TrainBookingStatus
	PaymentStatus types.PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
