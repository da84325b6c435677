package handlers

import (
	"net/http"

	"busticket/internal/services"
	"busticket/internal/vnpay"

	"github.com/gin-gonic/gin"
)

type paymentURLInput struct {
	BookingID string `json:"booking_id"`
	BankCode  string `json:"bank_code"`
	Locale    string `json:"locale"`
}

// CreatePaymentURL re-issues a signed gateway redirect URL for a pending
// booking.
func CreatePaymentURL(c *gin.Context) {
	var in paymentURLInput
	if !BindJSONOrError(c, &in) {
		return
	}

	payURL, err := paymentSvc(c).PaymentURL(c.Request.Context(), in.BookingID, in.BankCode, in.Locale, c.ClientIP())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_url": payURL})
}

// VNPayIPN is the server-to-server notification endpoint. The gateway posts
// form-encoded parameters and retries until acknowledged; this always answers
// 200, with the outcome carried in the RspCode.
func VNPayIPN(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusOK, services.IPNAck{RspCode: vnpay.RspUnknownError, Message: "Unknown error"})
		return
	}
	ack := paymentSvc(c).HandleIPN(c.Request.Context(), c.Request.PostForm)
	c.JSON(http.StatusOK, ack)
}

// GetPayments lists payment attempts for the staff reconciliation view.
func GetPayments(c *gin.Context) {
	payments, err := paymentSvc(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func GetPaymentByID(c *gin.Context) {
	payment, err := paymentSvc(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// VNPayReturn handles the customer's browser redirect. Display only: the
// authoritative state transition happens on the IPN.
func VNPayReturn(c *gin.Context) {
	result, err := paymentSvc(c).HandleReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
