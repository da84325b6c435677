package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "busticket/internal/config"
	"busticket/internal/domain"
	"busticket/internal/domain/models"

	"github.com/google/uuid"
)

type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripSelect = `
	SELECT t.id, t.route_id, t.departure, t.vehicle_type, t.seat_count,
	       r.id, r.origin, r.destination, r.distance_km, r.duration_hours, r.price, r.active
	FROM trips t
	JOIN routes r ON r.id = t.route_id`

func scanTrip(row interface{ Scan(...any) error }) (models.Trip, error) {
	var trip models.Trip
	var route models.Route
	var active int
	err := row.Scan(
		&trip.ID,
		&trip.RouteID,
		&trip.Departure,
		&trip.VehicleType,
		&trip.SeatCount,
		&route.ID,
		&route.Origin,
		&route.Destination,
		&route.DistanceKm,
		&route.DurationHours,
		&route.Price,
		&active,
	)
	if err != nil {
		return models.Trip{}, err
	}
	route.Active = active != 0
	trip.Route = &route
	return trip, nil
}

// GetByID returns a trip with its route and current booked-seat set.
func (r TripRepository) GetByID(ctx context.Context, id string) (models.Trip, error) {
	trip, err := scanTrip(r.db().QueryRowContext(ctx, tripSelect+` WHERE t.id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip"}
		}
		return models.Trip{}, err
	}

	seats, err := r.BookedSeats(ctx, id)
	if err != nil {
		return models.Trip{}, err
	}
	trip.BookedSeats = seats
	return trip, nil
}

// BookedSeats lists seat codes currently claimed by non-cancelled bookings.
func (r TripRepository) BookedSeats(ctx context.Context, tripID string) ([]string, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT seat_code FROM trip_seats WHERE trip_id=? ORDER BY seat_code ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		out = append(out, strings.ToUpper(strings.TrimSpace(seat)))
	}
	return out, rows.Err()
}

// Search finds trips by origin/destination/date. Empty filters are skipped.
func (r TripRepository) Search(ctx context.Context, origin, destination, date string) ([]models.Trip, error) {
	query := tripSelect + ` WHERE r.active=1`
	args := []any{}

	if origin != "" {
		query += ` AND r.origin=?`
		args = append(args, origin)
	}
	if destination != "" {
		query += ` AND r.destination=?`
		args = append(args, destination)
	}
	if date != "" {
		query += ` AND DATE(t.departure)=?`
		args = append(args, date)
	}
	query += ` ORDER BY t.departure ASC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		seats, err := r.BookedSeats(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].BookedSeats = seats
	}
	return out, nil
}

func (r TripRepository) Create(ctx context.Context, trip models.Trip) (models.Trip, error) {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO trips (id, route_id, departure, vehicle_type, seat_count)
		VALUES (?, ?, ?, ?, ?)`,
		trip.ID, trip.RouteID, trip.Departure, trip.VehicleType, trip.SeatCount,
	)
	if err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

func (r TripRepository) Update(ctx context.Context, id string, upd models.TripUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, val any) {
		sets = append(sets, col+"=?")
		args = append(args, val)
	}

	if upd.RouteID != nil {
		add("route_id", *upd.RouteID)
	}
	if upd.Departure != nil {
		add("departure", *upd.Departure)
	}
	if upd.VehicleType != nil {
		add("vehicle_type", *upd.VehicleType)
	}
	if upd.SeatCount != nil {
		add("seat_count", *upd.SeatCount)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := r.db().ExecContext(ctx, `UPDATE trips SET `+strings.Join(sets, ",")+` WHERE id=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	return nil
}

func (r TripRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM trips WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	return nil
}
