package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "busticket/internal/config"
	"busticket/internal/domain"
	"busticket/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// CreateWithSeats persists the booking and claims its seats in one
// transaction. The UNIQUE KEY on trip_seats (trip_id, seat_code) is the
// arbiter for concurrent claims: the loser gets a ConflictError and nothing
// is persisted.
func (r BookingRepository) CreateWithSeats(ctx context.Context, b models.Booking) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "failed to open transaction", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (id, trip_id, customer_name, customer_phone, customer_email,
		                      pickup_point, dropoff_point, seat_count, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		b.ID, b.TripID, b.CustomerName, b.CustomerPhone, b.CustomerEmail,
		b.PickupPoint, b.DropoffPoint, len(b.Seats), b.Amount, b.Status,
	)
	if err != nil {
		return domain.InternalError{Msg: "failed to save booking", Err: err}
	}

	for _, seat := range b.Seats {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trip_seats (trip_id, seat_code, booking_id, created_at)
			VALUES (?, ?, ?, NOW())`,
			b.TripID, seat, b.ID,
		)
		if err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
				return domain.ConflictError{Resource: "seat", Msg: "seat " + seat + " already sold"}
			}
			return domain.InternalError{Msg: "failed to save seat", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "failed to commit booking", Err: err}
	}
	return nil
}

func (r BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	var b models.Booking
	err := r.db().QueryRowContext(ctx, `
		SELECT id, trip_id, customer_name, customer_phone, customer_email,
		       pickup_point, dropoff_point, amount, status, created_at
		FROM bookings
		WHERE id=? LIMIT 1`, id).Scan(
		&b.ID,
		&b.TripID,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.PickupPoint,
		&b.DropoffPoint,
		&b.Amount,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}

	seats, err := r.SeatsByBookingID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	b.Seats = seats
	return b, nil
}

// SeatsByBookingID lists the seat codes a booking currently claims. Empty
// for cancelled bookings, whose rows were released.
func (r BookingRepository) SeatsByBookingID(ctx context.Context, bookingID string) ([]string, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT seat_code FROM trip_seats WHERE booking_id=? ORDER BY seat_code ASC`, bookingID)
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

// ConfirmIfPending moves a pending booking to confirmed. Returns false when
// the booking was not pending (already reconciled), which callers treat as
// an idempotent no-op.
func (r BookingRepository) ConfirmIfPending(ctx context.Context, id string) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings SET status=? WHERE id=? AND status=?`,
		models.BookingStatusConfirmed, id, models.BookingStatusPending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// CancelAndRelease cancels a pending booking and releases its seats in one
// transaction, so no reader observes a cancelled booking still holding
// seats or freed seats on a live booking.
func (r BookingRepository) CancelAndRelease(ctx context.Context, id string) (bool, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET status=? WHERE id=? AND status=?`,
		models.BookingStatusCancelled, id, models.BookingStatusPending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_seats WHERE booking_id=?`, id); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ChangeSeats moves a booking's seat claim to a new trip/seat set in one
// transaction. The trip_seats unique key arbitrates races for the new seats
// exactly as it does on create; a lost race rolls everything back, old
// claim included.
func (r BookingRepository) ChangeSeats(ctx context.Context, bookingID, newTripID string, seats []string, amount int64) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "failed to open transaction", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_seats WHERE booking_id=?`, bookingID); err != nil {
		return domain.InternalError{Msg: "failed to release seats", Err: err}
	}

	for _, seat := range seats {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trip_seats (trip_id, seat_code, booking_id, created_at)
			VALUES (?, ?, ?, NOW())`,
			newTripID, seat, bookingID,
		)
		if err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
				return domain.ConflictError{Resource: "seat", Msg: "seat " + seat + " already sold"}
			}
			return domain.InternalError{Msg: "failed to save seat", Err: err}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE bookings SET trip_id=?, seat_count=?, amount=? WHERE id=?`,
		newTripID, len(seats), amount, bookingID,
	); err != nil {
		return domain.InternalError{Msg: "failed to update booking", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "failed to commit seat change", Err: err}
	}
	return nil
}

// FindBySeatAndTrip resolves which booking currently holds a seat on a trip.
func (r BookingRepository) FindBySeatAndTrip(ctx context.Context, tripID, seat string) (models.Booking, error) {
	var b models.Booking
	err := r.db().QueryRowContext(ctx, `
		SELECT b.id, b.trip_id, b.customer_name, b.customer_phone, b.customer_email,
		       b.pickup_point, b.dropoff_point, b.amount, b.status, b.created_at
		FROM bookings b
		JOIN trip_seats ts ON ts.booking_id = b.id
		WHERE ts.trip_id=? AND ts.seat_code=? LIMIT 1`, tripID, seat).Scan(
		&b.ID,
		&b.TripID,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.PickupPoint,
		&b.DropoffPoint,
		&b.Amount,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}

	seats, err := r.SeatsByBookingID(ctx, b.ID)
	if err != nil {
		return models.Booking{}, err
	}
	b.Seats = seats
	return b, nil
}

// LookupByPhone returns bookings matching a customer phone, newest first.
func (r BookingRepository) LookupByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	return r.listByPhone(ctx, phone, "")
}

// ConfirmedByPhone returns only a customer's confirmed bookings, for the
// staff boarding view.
func (r BookingRepository) ConfirmedByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	return r.listByPhone(ctx, phone, models.BookingStatusConfirmed)
}

func (r BookingRepository) listByPhone(ctx context.Context, phone, status string) ([]models.Booking, error) {
	query := `
		SELECT id, trip_id, customer_name, customer_phone, customer_email,
		       pickup_point, dropoff_point, amount, status, created_at
		FROM bookings
		WHERE customer_phone=?`
	args := []any{phone}
	if status != "" {
		query += ` AND status=?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID,
			&b.TripID,
			&b.CustomerName,
			&b.CustomerPhone,
			&b.CustomerEmail,
			&b.PickupPoint,
			&b.DropoffPoint,
			&b.Amount,
			&b.Status,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		seats, err := r.SeatsByBookingID(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Seats = seats
	}
	return out, nil
}
