package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"busticket/internal/cache"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/metrics"
	"busticket/internal/mq"
	"busticket/internal/repositories"
	"busticket/internal/seating"
	"busticket/internal/utils"
	"busticket/internal/vnpay"

	"github.com/google/uuid"
)

var (
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// BookingService runs the booking flow: validate, claim seats, open the
// payment window and hand the customer a signed gateway URL.
type BookingService struct {
	BookingRepo repositories.BookingRepository
	TripRepo    repositories.TripRepository
	PaymentRepo repositories.PaymentRepository

	Holds   *cache.Holds
	Events  mq.BookingEvents
	Gateway *vnpay.Client

	PaymentExpiry time.Duration
	RequestID     string
}

// BookingInput is the submission payload from the seat-selection page.
type BookingInput struct {
	TripID        string   `json:"trip_id"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"phone_number"`
	CustomerEmail string   `json:"email"`
	Seats         []string `json:"seat_numbers"`
	PickupPoint   string   `json:"pickup_point"`
	DropoffPoint  string   `json:"dropoff_point"`
	Amount        int64    `json:"amount"`
	BankCode      string   `json:"bank_code"`
	Locale        string   `json:"locale"`
}

// BookingResult is returned to the client after a successful submission.
type BookingResult struct {
	Booking    models.Booking `json:"booking"`
	PaymentID  string         `json:"payment_id"`
	PaymentURL string         `json:"payment_url"`
}

func (s BookingService) expiry() time.Duration {
	if s.PaymentExpiry > 0 {
		return s.PaymentExpiry
	}
	return 15 * time.Minute
}

// Create validates the submission, claims the seats and opens a pending
// payment. The database unique key decides seat races; the Redis hold check
// before it only rejects submissions that would certainly lose.
func (s BookingService) Create(ctx context.Context, in BookingInput, clientIP string) (BookingResult, error) {
	seats := utils.NormalizeSeats(in.Seats)

	switch {
	case strings.TrimSpace(in.TripID) == "":
		return BookingResult{}, domain.ValidationError{Field: "trip_id", Msg: "required"}
	case strings.TrimSpace(in.CustomerName) == "":
		return BookingResult{}, domain.ValidationError{Field: "customer_name", Msg: "required"}
	case !phoneRe.MatchString(strings.TrimSpace(in.CustomerPhone)):
		return BookingResult{}, domain.ValidationError{Field: "phone_number", Msg: "must be 10 digits"}
	case !emailRe.MatchString(strings.TrimSpace(in.CustomerEmail)):
		return BookingResult{}, domain.ValidationError{Field: "email", Msg: "invalid email address"}
	case len(seats) == 0:
		return BookingResult{}, domain.ValidationError{Field: "seat_numbers", Msg: "select at least one seat"}
	case len(seats) > models.MaxSeatsPerBooking:
		return BookingResult{}, domain.ValidationError{Field: "seat_numbers", Msg: fmt.Sprintf("at most %d seats per booking", models.MaxSeatsPerBooking)}
	case utils.HasDuplicates(seats):
		return BookingResult{}, domain.ValidationError{Field: "seat_numbers", Msg: "duplicate seat"}
	}
	seating.SortSeats(seats)

	trip, err := s.TripRepo.GetByID(ctx, strings.TrimSpace(in.TripID))
	if err != nil {
		return BookingResult{}, err
	}

	// The client echoes the amount it showed the customer; the route price is
	// authoritative and a mismatch means a stale or tampered page.
	amount := trip.Route.Price * int64(len(seats))
	if in.Amount != amount {
		return BookingResult{}, domain.ValidationError{Field: "amount", Msg: fmt.Sprintf("expected %d", amount)}
	}

	if s.Holds != nil {
		if held, err := s.Holds.AnyHeld(ctx, trip.ID, seats); err != nil {
			utils.LogEvent(s.RequestID, "booking", "create", "hold check failed: "+err.Error())
		} else if held != "" {
			metrics.BookingConflicts.Inc()
			return BookingResult{}, domain.ConflictError{Resource: "seat", Msg: "seat " + held + " is being paid for"}
		}
	}

	booking := models.Booking{
		ID:            models.NewBookingID(),
		TripID:        trip.ID,
		CustomerName:  utils.NormalizeSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		Seats:         seats,
		PickupPoint:   utils.NormalizeSpace(in.PickupPoint),
		DropoffPoint:  utils.NormalizeSpace(in.DropoffPoint),
		Amount:        amount,
		Status:        models.BookingStatusPending,
	}

	if err := s.BookingRepo.CreateWithSeats(ctx, booking); err != nil {
		if domain.IsConflict(err) {
			metrics.BookingConflicts.Inc()
		}
		return BookingResult{}, err
	}

	payment := models.Payment{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Amount:    amount,
		BankCode:  strings.TrimSpace(in.BankCode),
		Locale:    strings.TrimSpace(in.Locale),
		ClientIP:  clientIP,
		Status:    models.PaymentStatusPending,
	}
	if err := s.PaymentRepo.Create(ctx, payment); err != nil {
		// The seats are claimed but unpayable; the expiry sweep will release
		// them. Surface the error so the client retries cleanly.
		utils.LogEvent(s.RequestID, "booking", "create", "payment insert failed: "+err.Error())
		return BookingResult{}, domain.InternalError{Msg: "failed to open payment", Err: err}
	}

	if s.Holds != nil {
		if err := s.Holds.HoldSeats(ctx, trip.ID, booking.ID, seats, s.expiry()); err != nil {
			utils.LogEvent(s.RequestID, "booking", "create", "seat hold failed: "+err.Error())
		}
		if err := s.Holds.ArmExpiry(ctx, booking.ID, s.expiry()); err != nil {
			utils.LogEvent(s.RequestID, "booking", "create", "expiry arm failed: "+err.Error())
		}
	}

	if err := s.Events.Created(ctx, mq.BookingEvent{
		BookingID:   booking.ID,
		TripID:      trip.ID,
		SeatNumbers: seats,
		Status:      booking.Status,
	}); err != nil {
		utils.LogEvent(s.RequestID, "booking", "create", "event publish failed: "+err.Error())
	}

	payURL, err := s.Gateway.BuildPaymentURL(vnpay.PaymentRequest{
		TxnRef:    payment.ID,
		Amount:    amount,
		OrderInfo: "Bus ticket booking " + booking.ID,
		BankCode:  payment.BankCode,
		Locale:    payment.Locale,
		ClientIP:  clientIP,
	})
	if err != nil {
		return BookingResult{}, domain.InternalError{Msg: "failed to build payment url", Err: err}
	}

	metrics.BookingsCreated.Inc()
	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking=%s trip=%s seats=%d amount=%d", booking.ID, trip.ID, len(seats), amount))

	return BookingResult{Booking: booking, PaymentID: payment.ID, PaymentURL: payURL}, nil
}

// Get returns one booking by its short reference, expiring it lazily when
// its payment window ran out while the expiry listener was down.
func (s BookingService) Get(ctx context.Context, id string) (models.Booking, error) {
	booking, err := s.BookingRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Booking{}, err
	}
	return s.lazyExpire(ctx, booking), nil
}

// LookupByPhone lists a customer's bookings, newest first.
func (s BookingService) LookupByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	phone = strings.TrimSpace(phone)
	if !phoneRe.MatchString(phone) {
		return nil, domain.ValidationError{Field: "phone_number", Msg: "must be 10 digits"}
	}
	bookings, err := s.BookingRepo.LookupByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i] = s.lazyExpire(ctx, bookings[i])
	}
	return bookings, nil
}

// TripSummary is the slice of trip data a ticket lookup renders.
type TripSummary struct {
	RouteName   string `json:"route_name"`
	Departure   string `json:"departure"`
	VehicleType string `json:"vehicle_type"`
}

// PaymentSummary is the slice of payment data a ticket lookup renders.
type PaymentSummary struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Amount      int64      `json:"amount"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TicketSummary bundles a booking with its trip and latest payment attempt.
type TicketSummary struct {
	Booking models.Booking  `json:"booking"`
	Trip    TripSummary     `json:"trip"`
	Payment *PaymentSummary `json:"payment,omitempty"`
}

// LookupTicket resolves one booking by reference and phone. The phone must
// match the booking's; a mismatch reads exactly like an unknown reference,
// so the endpoint leaks nothing about other customers' bookings.
func (s BookingService) LookupTicket(ctx context.Context, phone, bookingID string) (TicketSummary, error) {
	phone = strings.TrimSpace(phone)
	bookingID = strings.TrimSpace(bookingID)
	if !phoneRe.MatchString(phone) {
		return TicketSummary{}, domain.ValidationError{Field: "phone_number", Msg: "must be 10 digits"}
	}
	if bookingID == "" {
		return TicketSummary{}, domain.ValidationError{Field: "booking_id", Msg: "required"}
	}

	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return TicketSummary{}, err
	}
	if booking.CustomerPhone != phone {
		return TicketSummary{}, domain.NotFoundError{Resource: "booking"}
	}
	booking = s.lazyExpire(ctx, booking)

	out := TicketSummary{Booking: booking}

	trip, err := s.TripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return TicketSummary{}, err
	}
	if trip.Route != nil {
		out.Trip.RouteName = trip.Route.Origin + " - " + trip.Route.Destination
	}
	out.Trip.Departure = utils.FormatDateTime(trip.Departure)
	out.Trip.VehicleType = trip.VehicleType

	payment, err := s.PaymentRepo.GetByBookingID(ctx, booking.ID)
	switch {
	case err == nil:
		out.Payment = &PaymentSummary{
			ID:          payment.ID,
			Status:      payment.Status,
			Amount:      payment.Amount,
			CompletedAt: payment.CompletedAt,
		}
	case !domain.IsNotFound(err):
		return TicketSummary{}, err
	}
	return out, nil
}

// ConfirmedByPhone lists a customer's confirmed bookings, newest first.
func (s BookingService) ConfirmedByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	phone = strings.TrimSpace(phone)
	if !phoneRe.MatchString(phone) {
		return nil, domain.ValidationError{Field: "phone_number", Msg: "must be 10 digits"}
	}
	return s.BookingRepo.ConfirmedByPhone(ctx, phone)
}

// BySeatAndTrip resolves which booking holds a seat on a trip, for the staff
// support view.
func (s BookingService) BySeatAndTrip(ctx context.Context, tripID, seat string) (models.Booking, error) {
	tripID = strings.TrimSpace(tripID)
	seat = strings.ToUpper(strings.TrimSpace(seat))
	if tripID == "" {
		return models.Booking{}, domain.ValidationError{Field: "trip_id", Msg: "required"}
	}
	if seat == "" {
		return models.Booking{}, domain.ValidationError{Field: "seat_number", Msg: "required"}
	}
	return s.BookingRepo.FindBySeatAndTrip(ctx, tripID, seat)
}

// ChangeSeatInput is the seat-change payload. The old trip and seats are
// optional cross-checks; the booking's own records are authoritative.
type ChangeSeatInput struct {
	BookingID      string   `json:"booking_id"`
	OldTripID      string   `json:"old_trip_id"`
	OldSeatNumbers []string `json:"old_seat_numbers"`
	NewTripID      string   `json:"new_trip_id"`
	NewSeatNumbers []string `json:"new_seat_numbers"`
}

// ChangeSeat moves a booking onto a new trip and seat set. The claim runs
// through the same trip_seats unique key as creation, so races for the new
// seats resolve the same way; a lost race leaves the old claim intact.
func (s BookingService) ChangeSeat(ctx context.Context, in ChangeSeatInput) (models.Booking, error) {
	newSeats := utils.NormalizeSeats(in.NewSeatNumbers)

	switch {
	case strings.TrimSpace(in.BookingID) == "":
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "required"}
	case strings.TrimSpace(in.NewTripID) == "":
		return models.Booking{}, domain.ValidationError{Field: "new_trip_id", Msg: "required"}
	case len(newSeats) == 0:
		return models.Booking{}, domain.ValidationError{Field: "new_seat_numbers", Msg: "select at least one seat"}
	case len(newSeats) > models.MaxSeatsPerBooking:
		return models.Booking{}, domain.ValidationError{Field: "new_seat_numbers", Msg: fmt.Sprintf("at most %d seats per booking", models.MaxSeatsPerBooking)}
	case utils.HasDuplicates(newSeats):
		return models.Booking{}, domain.ValidationError{Field: "new_seat_numbers", Msg: "duplicate seat"}
	}
	seating.SortSeats(newSeats)

	booking, err := s.BookingRepo.GetByID(ctx, strings.TrimSpace(in.BookingID))
	if err != nil {
		return models.Booking{}, err
	}
	if booking.Status == models.BookingStatusCancelled {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is cancelled"}
	}
	if old := strings.TrimSpace(in.OldTripID); old != "" && old != booking.TripID {
		return models.Booking{}, domain.ValidationError{Field: "old_trip_id", Msg: "does not match booking"}
	}
	oldTripID, oldSeats := booking.TripID, booking.Seats

	trip, err := s.TripRepo.GetByID(ctx, strings.TrimSpace(in.NewTripID))
	if err != nil {
		return models.Booking{}, err
	}
	amount := trip.Route.Price * int64(len(newSeats))

	if err := s.BookingRepo.ChangeSeats(ctx, booking.ID, trip.ID, newSeats, amount); err != nil {
		if domain.IsConflict(err) {
			metrics.BookingConflicts.Inc()
		}
		return models.Booking{}, err
	}

	// A still-pending booking keeps its payment countdown; only the advisory
	// holds move with the seats.
	if s.Holds != nil && booking.Status == models.BookingStatusPending {
		if err := s.Holds.ReleaseSeats(ctx, oldTripID, oldSeats); err != nil {
			utils.LogEvent(s.RequestID, "booking", "change_seat", "hold release failed: "+err.Error())
		}
		if err := s.Holds.HoldSeats(ctx, trip.ID, booking.ID, newSeats, s.expiry()); err != nil {
			utils.LogEvent(s.RequestID, "booking", "change_seat", "seat hold failed: "+err.Error())
		}
	}

	if err := s.Events.Changed(ctx, mq.SeatChangeEvent{
		BookingID:      booking.ID,
		OldTripID:      oldTripID,
		OldSeatNumbers: oldSeats,
		NewTripID:      trip.ID,
		NewSeatNumbers: newSeats,
	}); err != nil {
		utils.LogEvent(s.RequestID, "booking", "change_seat", "event publish failed: "+err.Error())
	}

	utils.LogEvent(s.RequestID, "booking", "change_seat",
		fmt.Sprintf("booking=%s trip=%s->%s seats=%d amount=%d", booking.ID, oldTripID, trip.ID, len(newSeats), amount))

	booking.TripID = trip.ID
	booking.Seats = newSeats
	booking.Amount = amount
	return booking, nil
}

// lazyExpire cancels a pending booking whose payment window has passed. The
// Redis expiry listener normally does this; the read path is the backstop.
func (s BookingService) lazyExpire(ctx context.Context, b models.Booking) models.Booking {
	if b.Status != models.BookingStatusPending || time.Since(b.CreatedAt) < s.expiry() {
		return b
	}

	done, err := s.BookingRepo.CancelAndRelease(ctx, b.ID)
	if err != nil {
		utils.LogEvent(s.RequestID, "booking", "lazy_expire", "cancel failed: "+err.Error())
		return b
	}
	if !done {
		return b
	}

	utils.LogEvent(s.RequestID, "booking", "lazy_expire", "booking="+b.ID)
	if s.Holds != nil {
		if err := s.Holds.ReleaseSeats(ctx, b.TripID, b.Seats); err != nil {
			utils.LogEvent(s.RequestID, "booking", "lazy_expire", "hold release failed: "+err.Error())
		}
	}
	if err := s.Events.Cancelled(ctx, mq.BookingEvent{
		BookingID:   b.ID,
		TripID:      b.TripID,
		SeatNumbers: b.Seats,
		Status:      models.BookingStatusCancelled,
	}); err != nil {
		utils.LogEvent(s.RequestID, "booking", "lazy_expire", "event publish failed: "+err.Error())
	}

	b.Status = models.BookingStatusCancelled
	b.Seats = []string{}
	return b
}
