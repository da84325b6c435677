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

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r RouteRepository) GetByID(ctx context.Context, id string) (models.Route, error) {
	var route models.Route
	var active int
	err := r.db().QueryRowContext(ctx, `
		SELECT id, origin, destination, distance_km, duration_hours, price, active
		FROM routes
		WHERE id=? LIMIT 1`, id).Scan(
		&route.ID,
		&route.Origin,
		&route.Destination,
		&route.DistanceKm,
		&route.DurationHours,
		&route.Price,
		&active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route"}
		}
		return models.Route{}, err
	}
	route.Active = active != 0

	stops, err := r.stops(ctx, id)
	if err != nil {
		return models.Route{}, err
	}
	route.Stops = stops
	return route, nil
}

func (r RouteRepository) stops(ctx context.Context, routeID string) ([]models.Stop, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT name, offset_hours
		FROM route_stops
		WHERE route_id=?
		ORDER BY position ASC`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Stop{}
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.Name, &s.OffsetHours); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r RouteRepository) List(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	query := `
		SELECT id, origin, destination, distance_km, duration_hours, price, active
		FROM routes`
	if activeOnly {
		query += ` WHERE active=1`
	}
	query += ` ORDER BY origin, destination`

	rows, err := r.db().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var route models.Route
		var active int
		if err := rows.Scan(
			&route.ID,
			&route.Origin,
			&route.Destination,
			&route.DistanceKm,
			&route.DurationHours,
			&route.Price,
			&active,
		); err != nil {
			return nil, err
		}
		route.Active = active != 0
		out = append(out, route)
	}
	return out, rows.Err()
}

func (r RouteRepository) Create(ctx context.Context, route models.Route) (models.Route, error) {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	active := 0
	if route.Active {
		active = 1
	}
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO routes (id, origin, destination, distance_km, duration_hours, price, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		route.ID, route.Origin, route.Destination, route.DistanceKm, route.DurationHours, route.Price, active,
	)
	if err != nil {
		return models.Route{}, err
	}

	for i, stop := range route.Stops {
		if _, err := r.db().ExecContext(ctx, `
			INSERT INTO route_stops (route_id, name, offset_hours, position)
			VALUES (?, ?, ?, ?)`,
			route.ID, stop.Name, stop.OffsetHours, i,
		); err != nil {
			return models.Route{}, err
		}
	}
	return route, nil
}

func (r RouteRepository) Update(ctx context.Context, id string, upd models.RouteUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, val any) {
		sets = append(sets, col+"=?")
		args = append(args, val)
	}

	if upd.Origin != nil {
		add("origin", *upd.Origin)
	}
	if upd.Destination != nil {
		add("destination", *upd.Destination)
	}
	if upd.DistanceKm != nil {
		add("distance_km", *upd.DistanceKm)
	}
	if upd.DurationHours != nil {
		add("duration_hours", *upd.DurationHours)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Active != nil {
		v := 0
		if *upd.Active {
			v = 1
		}
		add("active", v)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := r.db().ExecContext(ctx, `UPDATE routes SET `+strings.Join(sets, ",")+` WHERE id=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}

func (r RouteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM routes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "route"}
	}
	_, _ = r.db().ExecContext(ctx, `DELETE FROM route_stops WHERE route_id=?`, id)
	return nil
}
