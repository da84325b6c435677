package repositories

import (
	"context"
	"testing"
	"time"

	"busticket/internal/domain"
	"busticket/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func paymentRows(status string, completed any) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "booking_id", "amount", "gateway_txn_no", "response_code",
		"bank_code", "locale", "client_ip", "status", "created_at", "completed_at",
	})
	rows.AddRow("pay-1", "aB3xY9", int64(300000), "", "", "", "vn", "203.0.113.7",
		status, time.Now(), completed)
	return rows
}

func TestFinalizeIfPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	paidAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	mock.ExpectExec("UPDATE payments").
		WithArgs(models.PaymentStatusSuccess, "14226112", "00", paidAt, "pay-1", models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payments").
		WithArgs(models.PaymentStatusSuccess, "14226112", "00", paidAt, "pay-1", models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := PaymentRepository{DB: db}

	moved, err := repo.FinalizeIfPending(context.Background(), "pay-1", models.PaymentStatusSuccess, "14226112", "00", paidAt)
	if err != nil || !moved {
		t.Fatalf("first finalize: moved=%v err=%v, want true/nil", moved, err)
	}

	moved, err = repo.FinalizeIfPending(context.Background(), "pay-1", models.PaymentStatusSuccess, "14226112", "00", paidAt)
	if err != nil || moved {
		t.Fatalf("retry finalize: moved=%v err=%v, want false/nil", moved, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("pay-1").
		WillReturnRows(paymentRows(models.PaymentStatusSuccess, time.Now()))

	repo := PaymentRepository{DB: db}
	p, err := repo.GetByID(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !p.Terminal() {
		t.Error("success payment must be terminal")
	}
	if p.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
}

func TestPaymentList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	rows := paymentRows(models.PaymentStatusSuccess, time.Now())
	rows.AddRow("pay-2", "cD4zW8", int64(150000), "", "", "", "vn", "203.0.113.8",
		models.PaymentStatusPending, time.Now(), nil)
	mock.ExpectQuery("SELECT (.+) FROM payments").WillReturnRows(rows)

	repo := PaymentRepository{DB: db}
	payments, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("len = %d, want 2", len(payments))
	}
	if payments[1].CompletedAt != nil {
		t.Error("pending payment must not carry a completion time")
	}
}

func TestPaymentGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := PaymentRepository{DB: db}
	if _, err := repo.GetByID(context.Background(), "nosuch"); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}
