package repositories

import (
	"context"
	"testing"

	"busticket/internal/domain"
	"busticket/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestCreateWithSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WithArgs("trip-1", "A1", "aB3xY9").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WithArgs("trip-1", "A2", "aB3xY9").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	repo := BookingRepository{DB: db}
	err = repo.CreateWithSeats(context.Background(), models.Booking{
		ID:     "aB3xY9",
		TripID: "trip-1",
		Seats:  []string{"A1", "A2"},
		Amount: 500000,
		Status: models.BookingStatusPending,
	})
	if err != nil {
		t.Fatalf("CreateWithSeats: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateWithSeatsSeatConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	repo := BookingRepository{DB: db}
	err = repo.CreateWithSeats(context.Background(), models.Booking{
		ID:     "aB3xY9",
		TripID: "trip-1",
		Seats:  []string{"A1"},
		Status: models.BookingStatusPending,
	})
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmIfPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingStatusConfirmed, "aB3xY9", models.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingStatusConfirmed, "aB3xY9", models.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := BookingRepository{DB: db}

	moved, err := repo.ConfirmIfPending(context.Background(), "aB3xY9")
	if err != nil || !moved {
		t.Fatalf("first confirm: moved=%v err=%v, want true/nil", moved, err)
	}

	// Second call hits zero rows: already terminal, no transition.
	moved, err = repo.ConfirmIfPending(context.Background(), "aB3xY9")
	if err != nil || moved {
		t.Fatalf("second confirm: moved=%v err=%v, want false/nil", moved, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelAndRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingStatusCancelled, "aB3xY9", models.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM trip_seats").
		WithArgs("aB3xY9").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := BookingRepository{DB: db}
	moved, err := repo.CancelAndRelease(context.Background(), "aB3xY9")
	if err != nil || !moved {
		t.Fatalf("cancel: moved=%v err=%v, want true/nil", moved, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelAndReleaseAlreadyTerminal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := BookingRepository{DB: db}
	moved, err := repo.CancelAndRelease(context.Background(), "aB3xY9")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if moved {
		t.Fatal("terminal booking must not be cancelled again")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := BookingRepository{DB: db}
	_, err = repo.GetByID(context.Background(), "nosuch")
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}
