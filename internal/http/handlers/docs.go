package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetBookingETicket returns the e-ticket PDF for a confirmed booking (inline).
func GetBookingETicket(c *gin.Context) {
	pdfBytes, filename, err := docsSvc(c).GenerateETicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
