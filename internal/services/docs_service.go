package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the e-ticket PDF for a confirmed booking.
type DocsService struct {
	BookingRepo repositories.BookingRepository
	TripRepo    repositories.TripRepository
	RequestID   string
}

type ticketData struct {
	BookingID    string
	CustomerName string
	Phone        string
	Seats        []string
	RouteFrom    string
	RouteTo      string
	Departure    string
	Pickup       string
	Dropoff      string
	Amount       int64
}

// GenerateETicket builds the PDF and its download filename. Only confirmed
// bookings have a ticket.
func (s DocsService) GenerateETicket(ctx context.Context, bookingID string) ([]byte, string, error) {
	booking, err := s.BookingRepo.GetByID(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return nil, "", err
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, "", domain.ConflictError{Resource: "booking", Msg: "booking is not confirmed"}
	}

	trip, err := s.TripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return nil, "", err
	}

	data := ticketData{
		BookingID:    booking.ID,
		CustomerName: booking.CustomerName,
		Phone:        booking.CustomerPhone,
		Seats:        booking.Seats,
		Departure:    utils.FormatDateTime(trip.Departure),
		Pickup:       booking.PickupPoint,
		Dropoff:      booking.DropoffPoint,
		Amount:       booking.Amount,
	}
	if trip.Route != nil {
		data.RouteFrom = trip.Route.Origin
		data.RouteTo = trip.Route.Destination
	}

	utils.LogEvent(s.RequestID, "docs", "generate_eticket", "booking="+booking.ID)
	return buildETicketPDF(data)
}

func buildETicketPDF(d ticketData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking code : %s", d.BookingID),
		fmt.Sprintf("Passenger    : %s", safe(d.CustomerName, "-")),
		fmt.Sprintf("Phone        : %s", safe(d.Phone, "-")),
		fmt.Sprintf("Route        : %s -> %s", safe(d.RouteFrom, "-"), safe(d.RouteTo, "-")),
		fmt.Sprintf("Departure    : %s", safe(d.Departure, "-")),
		fmt.Sprintf("Seats        : %s", safe(strings.Join(d.Seats, ", "), "-")),
		fmt.Sprintf("Pickup       : %s", safe(d.Pickup, "-")),
		fmt.Sprintf("Dropoff      : %s", safe(d.Dropoff, "-")),
		fmt.Sprintf("Total paid   : %s", utils.FormatVND(d.Amount)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this ticket when boarding. Seats are released if payment is not completed.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(d.BookingID))
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func safeFilenamePart(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out.WriteRune(r)
		default:
			out.WriteByte('_')
		}
	}
	return out.String()
}
