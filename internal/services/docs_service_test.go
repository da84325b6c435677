package services

import (
	"bytes"
	"context"
	"testing"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGenerateETicket(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectBookingFetch(mock, models.BookingStatusConfirmed, "A1", "A2")
	expectTripFetch(mock, 150000)

	svc := DocsService{
		BookingRepo: repositories.BookingRepository{DB: db},
		TripRepo:    repositories.TripRepository{DB: db},
	}
	pdfBytes, filename, err := svc.GenerateETicket(context.Background(), "aB3xY9")
	if err != nil {
		t.Fatalf("GenerateETicket: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
	if filename != "ETICKET_aB3xY9.pdf" {
		t.Errorf("filename = %q", filename)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGenerateETicketPendingBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectBookingFetch(mock, models.BookingStatusPending, "A1")

	svc := DocsService{
		BookingRepo: repositories.BookingRepository{DB: db},
		TripRepo:    repositories.TripRepository{DB: db},
	}
	if _, _, err := svc.GenerateETicket(context.Background(), "aB3xY9"); !domain.IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
}
