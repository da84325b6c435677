package handlers

import (
	"net/http"

	"busticket/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func GetRoutes(c *gin.Context) {
	activeOnly := c.Query("all") == ""
	routes, err := routeSvc(c).List(c.Request.Context(), activeOnly)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

func GetRouteByID(c *gin.Context) {
	route, err := routeSvc(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func CreateRoute(c *gin.Context) {
	var in models.Route
	if !BindJSONOrError(c, &in) {
		return
	}
	route, err := routeSvc(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

func UpdateRoute(c *gin.Context) {
	var in models.RouteUpdate
	if !BindJSONOrError(c, &in) {
		return
	}
	if err := routeSvc(c).Update(c.Request.Context(), c.Param("id"), in); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route updated"})
}

func DeleteRoute(c *gin.Context) {
	if err := routeSvc(c).Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}
