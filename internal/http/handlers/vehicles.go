package handlers

import (
	"net/http"
	"strconv"

	"busticket/internal/domain/models"
	"busticket/internal/repositories"

	"github.com/gin-gonic/gin"
)

func GetVehicles(c *gin.Context) {
	vehicles, err := repositories.VehicleRepository{}.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

func CreateVehicle(c *gin.Context) {
	var in models.Vehicle
	if !BindJSONOrError(c, &in) {
		return
	}
	if in.Plate == "" || in.SeatCount <= 0 {
		RespondError(c, http.StatusBadRequest, "plate and seat_count required", nil)
		return
	}
	id, err := repositories.VehicleRepository{}.Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	in.ID = id
	c.JSON(http.StatusCreated, in)
}

func UpdateVehicle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid vehicle id", err)
		return
	}
	var in models.Vehicle
	if !BindJSONOrError(c, &in) {
		return
	}
	in.ID = id
	if err := (repositories.VehicleRepository{}).Update(c.Request.Context(), in); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

func DeleteVehicle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid vehicle id", err)
		return
	}
	if err := (repositories.VehicleRepository{}).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted"})
}
