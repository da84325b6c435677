package models

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// MaxSeatsPerBooking caps one booking's seat claim.
const MaxSeatsPerBooking = 5

// Booking is a customer's claim on seats of one trip, pending payment
// confirmation. Amount is always route price times seat count in VND.
type Booking struct {
	ID            string    `json:"id"`
	TripID        string    `json:"trip_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"phone_number"`
	CustomerEmail string    `json:"email"`
	Seats         []string  `json:"seat_numbers"`
	PickupPoint   string    `json:"pickup_point"`
	DropoffPoint  string    `json:"dropoff_point"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"booking_time"`
}

const bookingIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingID returns a 6-character alphanumeric booking reference, short
// enough to read over the phone.
func NewBookingID() string {
	buf := make([]byte, 6)
	max := big.NewInt(int64(len(bookingIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform is broken anyway
			panic(err)
		}
		buf[i] = bookingIDAlphabet[n.Int64()]
	}
	return string(buf)
}
