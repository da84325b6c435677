package handlers

import (
	"net/http"

	"busticket/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// SearchTrips lists trips matching origin/destination/date query filters.
func SearchTrips(c *gin.Context) {
	trips, err := tripSvc(c).Search(c.Request.Context(), c.Query("origin"), c.Query("destination"), c.Query("date"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetTrip returns one trip with its route and booked-seat snapshot, which the
// seat map renders.
func GetTrip(c *gin.Context) {
	trip, err := tripSvc(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GetTripStops returns the derived passing times of every stop on the trip.
func GetTripStops(c *gin.Context) {
	stops, err := tripSvc(c).StopTimes(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func CreateTrip(c *gin.Context) {
	var in models.Trip
	if !BindJSONOrError(c, &in) {
		return
	}
	trip, err := tripSvc(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func UpdateTrip(c *gin.Context) {
	var in models.TripUpdate
	if !BindJSONOrError(c, &in) {
		return
	}
	if err := tripSvc(c).Update(c.Request.Context(), c.Param("id"), in); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip updated"})
}

func DeleteTrip(c *gin.Context) {
	if err := tripSvc(c).Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip deleted"})
}
