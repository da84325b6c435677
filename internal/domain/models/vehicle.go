package models

// Vehicle is a bus in the fleet. SeatCount bounds trip capacity when the
// vehicle is assigned.
type Vehicle struct {
	ID        int64  `json:"id"`
	Plate     string `json:"plate"`
	Type      string `json:"type"`
	SeatCount int    `json:"seat_count"`
	Status    string `json:"status"`
}
