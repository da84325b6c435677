package handlers

import (
	"net/http"
	"strconv"

	"busticket/internal/http/middleware"
	"busticket/internal/repositories"

	"github.com/gin-gonic/gin"
)

func GetUsers(c *gin.Context) {
	users, err := repositories.UserRepository{}.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func GetUserByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid user id", err)
		return
	}
	user, err := repositories.UserRepository{}.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid user id", err)
		return
	}
	if claims, ok := middleware.GetClaims(c); ok && claims.UserID == id {
		RespondError(c, http.StatusBadRequest, "cannot delete your own account", nil)
		return
	}
	if err := (repositories.UserRepository{}).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
