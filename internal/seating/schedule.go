package seating

import (
	"time"

	"busticket/internal/domain/models"
)

// StopTime pairs a pickup/drop-off point with its derived passing time.
type StopTime struct {
	Name string
	At   time.Time
}

// StopTimes derives the passing time of every intermediate stop plus the
// final arrival from the trip departure and the route's duration. Stops with
// offsets past the route duration are clamped to the arrival time.
func StopTimes(departure time.Time, route models.Route) []StopTime {
	arrival := departure.Add(hoursToDuration(route.DurationHours))

	out := make([]StopTime, 0, len(route.Stops)+2)
	out = append(out, StopTime{Name: route.Origin, At: departure})

	for _, stop := range route.Stops {
		at := departure.Add(hoursToDuration(stop.OffsetHours))
		if at.After(arrival) {
			at = arrival
		}
		out = append(out, StopTime{Name: stop.Name, At: at})
	}

	out = append(out, StopTime{Name: route.Destination, At: arrival})
	return out
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
