package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intconfig "busticket/internal/config"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r PaymentRepository) Create(ctx context.Context, p models.Payment) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO payments (id, booking_id, amount, bank_code, locale, client_ip, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())`,
		p.ID, p.BookingID, p.Amount, p.BankCode, p.Locale, p.ClientIP, p.Status,
	)
	return err
}

func (r PaymentRepository) GetByID(ctx context.Context, id string) (models.Payment, error) {
	var p models.Payment
	var completed sql.NullTime
	err := r.db().QueryRowContext(ctx, `
		SELECT id, booking_id, amount, gateway_txn_no, response_code, bank_code,
		       locale, client_ip, status, created_at, completed_at
		FROM payments
		WHERE id=? LIMIT 1`, id).Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.GatewayTxnNo,
		&p.ResponseCode,
		&p.BankCode,
		&p.Locale,
		&p.ClientIP,
		&p.Status,
		&p.CreatedAt,
		&completed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, err
	}
	if completed.Valid {
		t := completed.Time
		p.CompletedAt = &t
	}
	return p, nil
}

func (r PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (models.Payment, error) {
	var p models.Payment
	var completed sql.NullTime
	err := r.db().QueryRowContext(ctx, `
		SELECT id, booking_id, amount, gateway_txn_no, response_code, bank_code,
		       locale, client_ip, status, created_at, completed_at
		FROM payments
		WHERE booking_id=?
		ORDER BY created_at DESC
		LIMIT 1`, bookingID).Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.GatewayTxnNo,
		&p.ResponseCode,
		&p.BankCode,
		&p.Locale,
		&p.ClientIP,
		&p.Status,
		&p.CreatedAt,
		&completed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, err
	}
	if completed.Valid {
		t := completed.Time
		p.CompletedAt = &t
	}
	return p, nil
}

// FinalizeIfPending moves a payment from pending to the given terminal
// status exactly once. Returns false when the payment was already terminal;
// gateways retry IPN delivery, so callers must treat that as a no-op rather
// than reapplying the transition. completedAt is the gateway's pay time when
// the callback carried one, the local clock otherwise.
func (r PaymentRepository) FinalizeIfPending(ctx context.Context, id, status, gatewayTxnNo, responseCode string, completedAt time.Time) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE payments
		SET status=?, gateway_txn_no=?, response_code=?, completed_at=?
		WHERE id=? AND status=?`,
		status, gatewayTxnNo, responseCode, completedAt, id, models.PaymentStatusPending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// List returns all payment attempts newest first, for the admin
// reconciliation view.
func (r PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, booking_id, amount, gateway_txn_no, response_code, bank_code,
		       locale, client_ip, status, created_at, completed_at
		FROM payments
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		var completed sql.NullTime
		if err := rows.Scan(
			&p.ID,
			&p.BookingID,
			&p.Amount,
			&p.GatewayTxnNo,
			&p.ResponseCode,
			&p.BankCode,
			&p.Locale,
			&p.ClientIP,
			&p.Status,
			&p.CreatedAt,
			&completed,
		); err != nil {
			return nil, err
		}
		if completed.Valid {
			t := completed.Time
			p.CompletedAt = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
