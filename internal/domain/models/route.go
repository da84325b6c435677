package models

// Route is a fixed origin-destination line served by trips. Price is VND per
// seat for the full line.
type Route struct {
	ID            string  `json:"id"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DistanceKm    float64 `json:"distance"`
	DurationHours float64 `json:"duration"`
	Price         int64   `json:"price"`
	Active        bool    `json:"active"`
	Stops         []Stop  `json:"stops,omitempty"`
}

// Stop is an intermediate pickup/drop-off point on a route. OffsetHours is
// measured from trip departure.
type Stop struct {
	Name        string  `json:"name"`
	OffsetHours float64 `json:"offset_hours"`
}

// RouteUpdate supports PATCH-style updates via key presence.
type RouteUpdate struct {
	Origin        *string  `json:"origin"`
	Destination   *string  `json:"destination"`
	DistanceKm    *float64 `json:"distance"`
	DurationHours *float64 `json:"duration"`
	Price         *int64   `json:"price"`
	Active        *bool    `json:"active"`
}
