package models

import "time"

// Trip is one departure of a route. BookedSeats is derived from trip_seats
// rows of non-cancelled bookings; it is never stored on the trip itself.
type Trip struct {
	ID          string    `json:"id"`
	RouteID     string    `json:"route_id"`
	Departure   time.Time `json:"trip_date"`
	VehicleType string    `json:"vehicle_type"`
	SeatCount   int       `json:"available_seats"`
	BookedSeats []string  `json:"booked_seats"`
	Route       *Route    `json:"routes,omitempty"`
}

// TripUpdate supports PATCH-style updates via key presence.
type TripUpdate struct {
	RouteID     *string    `json:"route_id"`
	Departure   *time.Time `json:"trip_date"`
	VehicleType *string    `json:"vehicle_type"`
	SeatCount   *int       `json:"available_seats"`
}
