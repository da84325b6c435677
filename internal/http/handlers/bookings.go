package handlers

import (
	"net/http"

	"busticket/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateBooking claims seats and opens the payment window. Responds 409 when
// a seat was taken between the seat map snapshot and submission.
func CreateBooking(c *gin.Context) {
	var in services.BookingInput
	if !BindJSONOrError(c, &in) {
		return
	}

	result, err := bookingSvc(c).Create(c.Request.Context(), in, c.ClientIP())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func GetBooking(c *gin.Context) {
	booking, err := bookingSvc(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// LookupTicket returns one booking with trip and payment summaries. The
// phone number must match the booking's; a mismatch reads as not found.
func LookupTicket(c *gin.Context) {
	ticket, err := bookingSvc(c).LookupTicket(c.Request.Context(), c.Query("phoneNumber"), c.Query("bookingId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// LookupBookings lists a customer's bookings by phone number.
func LookupBookings(c *gin.Context) {
	bookings, err := bookingSvc(c).LookupByPhone(c.Request.Context(), c.Query("phoneNumber"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetConfirmedBookings lists a customer's confirmed bookings for boarding.
func GetConfirmedBookings(c *gin.Context) {
	bookings, err := bookingSvc(c).ConfirmedByPhone(c.Request.Context(), c.Query("phoneNumber"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBookingBySeatAndTrip resolves which booking holds a seat on a trip.
func GetBookingBySeatAndTrip(c *gin.Context) {
	booking, err := bookingSvc(c).BySeatAndTrip(c.Request.Context(), c.Query("tripId"), c.Query("seatNumber"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ChangeSeat moves a booking to a new trip and seat set.
func ChangeSeat(c *gin.Context) {
	var in services.ChangeSeatInput
	if !BindJSONOrError(c, &in) {
		return
	}

	booking, err := bookingSvc(c).ChangeSeat(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
