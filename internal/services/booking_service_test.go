package services

import (
	"context"
	"database/sql"
	"reflect"
	"strings"
	"testing"
	"time"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/vnpay"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var testGatewayConfig = vnpay.Config{
	TmnCode:    "TESTTMN1",
	HashSecret: "testsecret",
	PayURL:     "https://sandbox.example/pay",
	ReturnURL:  "https://shop.example/payment/return",
}

func testClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func newBookingService(db *sql.DB) BookingService {
	return BookingService{
		BookingRepo: repositories.BookingRepository{DB: db},
		TripRepo:    repositories.TripRepository{DB: db},
		PaymentRepo: repositories.PaymentRepository{DB: db},
		Gateway:     vnpay.NewWithClock(testGatewayConfig, testClock),
	}
}

func validInput() BookingInput {
	return BookingInput{
		TripID:        "trip-1",
		CustomerName:  "Nguyen Van A",
		CustomerPhone: "0912345678",
		CustomerEmail: "a@example.com",
		Seats:         []string{"A1", "A2"},
		Amount:        500000,
	}
}

func expectTripFetch(mock sqlmock.Sqlmock, price int64, booked ...string) {
	trip := sqlmock.NewRows([]string{
		"id", "route_id", "departure", "vehicle_type", "seat_count",
		"r_id", "origin", "destination", "distance_km", "duration_hours", "price", "active",
	}).AddRow("trip-1", "route-1", time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
		"seater", 40, "route-1", "Hanoi", "Ha Giang", 300.0, 6.0, price, 1)
	mock.ExpectQuery("SELECT t.id, t.route_id").WithArgs("trip-1").WillReturnRows(trip)

	seats := sqlmock.NewRows([]string{"seat_code"})
	for _, s := range booked {
		seats.AddRow(s)
	}
	mock.ExpectQuery("SELECT seat_code FROM trip_seats").WithArgs("trip-1").WillReturnRows(seats)
}

func TestCreateBookingValidation(t *testing.T) {
	svc := BookingService{}

	cases := []struct {
		name   string
		mutate func(*BookingInput)
	}{
		{"missing trip", func(in *BookingInput) { in.TripID = "" }},
		{"missing name", func(in *BookingInput) { in.CustomerName = " " }},
		{"short phone", func(in *BookingInput) { in.CustomerPhone = "12345" }},
		{"alpha phone", func(in *BookingInput) { in.CustomerPhone = "09123456ab" }},
		{"bad email", func(in *BookingInput) { in.CustomerEmail = "not-an-email" }},
		{"no seats", func(in *BookingInput) { in.Seats = nil }},
		{"too many seats", func(in *BookingInput) { in.Seats = []string{"A1", "A2", "A3", "A4", "A5", "A6"} }},
		{"duplicate seats", func(in *BookingInput) { in.Seats = []string{"A1", "a1"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in, "203.0.113.7")
			if !domain.IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateBookingAmountMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// Route price 250000 x 2 seats = 500000; client claims 450000.
	expectTripFetch(mock, 250000)

	svc := newBookingService(db)
	in := validInput()
	in.Amount = 450000

	_, err = svc.Create(context.Background(), in, "203.0.113.7")
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectTripFetch(mock, 250000)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO trip_seats").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO trip_seats").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))

	svc := newBookingService(db)
	result, err := svc.Create(context.Background(), validInput(), "203.0.113.7")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(result.Booking.ID) != 6 {
		t.Errorf("booking id %q, want 6 characters", result.Booking.ID)
	}
	if result.Booking.Status != "pending" {
		t.Errorf("status = %q, want pending", result.Booking.Status)
	}
	if result.Booking.Amount != 500000 {
		t.Errorf("amount = %d, want 500000", result.Booking.Amount)
	}
	if result.PaymentID == "" {
		t.Error("payment id must be set")
	}
	if !strings.HasPrefix(result.PaymentURL, testGatewayConfig.PayURL+"?") {
		t.Errorf("payment url %q does not point at the gateway", result.PaymentURL)
	}
	if !strings.Contains(result.PaymentURL, "vnp_Amount=50000000") {
		t.Errorf("payment url %q should carry the scaled amount", result.PaymentURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingSeatConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectTripFetch(mock, 250000)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	svc := newBookingService(db)
	_, err = svc.Create(context.Background(), validInput(), "203.0.113.7")
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingOrdersSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectTripFetch(mock, 250000)

	// Seats are claimed in display order regardless of click order.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WithArgs("trip-1", "A1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WithArgs("trip-1", "A2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WithArgs("trip-1", "A10", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))

	in := validInput()
	in.Seats = []string{"A10", "A2", "A1"}
	in.Amount = 750000

	result, err := newBookingService(db).Create(context.Background(), in, "203.0.113.7")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if want := []string{"A1", "A2", "A10"}; !reflect.DeepEqual(result.Booking.Seats, want) {
		t.Errorf("seats = %v, want %v", result.Booking.Seats, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLookupByPhoneInvalid(t *testing.T) {
	svc := BookingService{}
	if _, err := svc.LookupByPhone(context.Background(), "nope"); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestLookupTicket(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectBookingFetch(mock, models.BookingStatusConfirmed, "A1", "A2")
	expectTripFetch(mock, 250000)
	expectPaymentFetch(mock, models.PaymentStatusSuccess, 300000)

	svc := newBookingService(db)
	ticket, err := svc.LookupTicket(context.Background(), "0912345678", "aB3xY9")
	if err != nil {
		t.Fatalf("LookupTicket: %v", err)
	}
	if ticket.Booking.ID != "aB3xY9" {
		t.Errorf("booking id = %s", ticket.Booking.ID)
	}
	if ticket.Trip.RouteName != "Hanoi - Ha Giang" {
		t.Errorf("route name = %q", ticket.Trip.RouteName)
	}
	if ticket.Payment == nil || ticket.Payment.Status != models.PaymentStatusSuccess {
		t.Errorf("payment summary = %+v, want success", ticket.Payment)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLookupTicketPhoneMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectBookingFetch(mock, models.BookingStatusConfirmed, "A1")

	svc := newBookingService(db)
	_, err = svc.LookupTicket(context.Background(), "0999999999", "aB3xY9")
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError (no detail for a wrong phone)", err)
	}
	// Nothing beyond the booking read may run for a mismatched phone.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database activity: %v", err)
	}
}

func TestChangeSeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectBookingFetch(mock, models.BookingStatusConfirmed, "A1", "A2")
	expectTripFetch(mock, 250000)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM trip_seats").
		WithArgs("aB3xY9").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO trip_seats").
		WithArgs("trip-1", "B1", "aB3xY9").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WithArgs("trip-1", "B2", "aB3xY9").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("UPDATE bookings SET trip_id").
		WithArgs("trip-1", 2, int64(500000), "aB3xY9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	in := ChangeSeatInput{
		BookingID:      "aB3xY9",
		NewTripID:      "trip-1",
		NewSeatNumbers: []string{"B2", "B1"},
	}
	booking, err := newBookingService(db).ChangeSeat(context.Background(), in)
	if err != nil {
		t.Fatalf("ChangeSeat: %v", err)
	}
	if want := []string{"B1", "B2"}; !reflect.DeepEqual(booking.Seats, want) {
		t.Errorf("seats = %v, want %v", booking.Seats, want)
	}
	if booking.Amount != 500000 {
		t.Errorf("amount = %d, want 500000", booking.Amount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestChangeSeatLosesRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectBookingFetch(mock, models.BookingStatusConfirmed, "A1")
	expectTripFetch(mock, 250000)

	// The new seat is gone; the rollback keeps the old claim intact.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM trip_seats").
		WithArgs("aB3xY9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO trip_seats").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	in := ChangeSeatInput{
		BookingID:      "aB3xY9",
		NewTripID:      "trip-1",
		NewSeatNumbers: []string{"B1"},
	}
	_, err = newBookingService(db).ChangeSeat(context.Background(), in)
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestChangeSeatCancelledBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectBookingFetch(mock, models.BookingStatusCancelled)

	in := ChangeSeatInput{
		BookingID:      "aB3xY9",
		NewTripID:      "trip-1",
		NewSeatNumbers: []string{"B1"},
	}
	_, err = newBookingService(db).ChangeSeat(context.Background(), in)
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
