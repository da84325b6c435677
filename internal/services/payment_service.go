package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"busticket/internal/cache"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/metrics"
	"busticket/internal/mq"
	"busticket/internal/repositories"
	"busticket/internal/utils"
	"busticket/internal/vnpay"

	"github.com/google/uuid"
)

// PaymentService owns the gateway side of the flow: issuing payment URLs and
// reconciling bookings from verified callbacks.
type PaymentService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository

	Holds   *cache.Holds
	Events  mq.BookingEvents
	Gateway *vnpay.Client

	RequestID string
}

// IPNAck is the JSON body the gateway expects from the IPN endpoint. The
// gateway retries until it receives RspCode 00 or 02.
type IPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// ReturnResult is the display-only outcome of the customer's browser redirect.
// Status comes from our own records; the redirect never changes state.
type ReturnResult struct {
	BookingID     string `json:"booking_id"`
	PaymentID     string `json:"payment_id"`
	Amount        int64  `json:"amount"`
	ResponseCode  string `json:"response_code"`
	GatewaySaysOK bool   `json:"gateway_success"`
	Status        string `json:"status"`
}

// PaymentURL re-issues a signed gateway URL for a pending booking, e.g. when
// the customer closed the payment tab. The open payment attempt is reused; a
// new one is created only if the previous attempt already reached a terminal
// state.
func (s PaymentService) PaymentURL(ctx context.Context, bookingID, bankCode, locale, clientIP string) (string, error) {
	booking, err := s.BookingRepo.GetByID(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return "", err
	}
	if booking.Status != models.BookingStatusPending {
		return "", domain.ConflictError{Resource: "booking", Msg: "booking is " + booking.Status}
	}

	payment, err := s.PaymentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil && !domain.IsNotFound(err) {
		return "", err
	}
	if err != nil || payment.Terminal() {
		payment = models.Payment{
			ID:        uuid.NewString(),
			BookingID: booking.ID,
			Amount:    booking.Amount,
			BankCode:  strings.TrimSpace(bankCode),
			Locale:    strings.TrimSpace(locale),
			ClientIP:  clientIP,
			Status:    models.PaymentStatusPending,
		}
		if err := s.PaymentRepo.Create(ctx, payment); err != nil {
			return "", domain.InternalError{Msg: "failed to open payment", Err: err}
		}
	}

	return s.Gateway.BuildPaymentURL(vnpay.PaymentRequest{
		TxnRef:    payment.ID,
		Amount:    payment.Amount,
		OrderInfo: "Bus ticket booking " + booking.ID,
		BankCode:  strings.TrimSpace(bankCode),
		Locale:    strings.TrimSpace(locale),
		ClientIP:  clientIP,
	})
}

// HandleIPN reconciles a server-to-server gateway notification. Order of
// checks follows the gateway contract: signature, order, amount, state. Only
// a verified, first-time notification moves any state; retries are answered
// with 02 and change nothing.
func (s PaymentService) HandleIPN(ctx context.Context, values url.Values) IPNAck {
	cb, err := s.Gateway.VerifyCallback(values)
	if err != nil {
		metrics.IPNRejected.WithLabelValues("signature").Inc()
		utils.LogEvent(s.RequestID, "payment", "ipn", "rejected: "+err.Error())
		return IPNAck{RspCode: vnpay.RspInvalidSignature, Message: "Invalid signature"}
	}

	payment, err := s.PaymentRepo.GetByID(ctx, cb.TxnRef)
	if err != nil {
		if domain.IsNotFound(err) {
			metrics.IPNRejected.WithLabelValues("order_not_found").Inc()
			return IPNAck{RspCode: vnpay.RspOrderNotFound, Message: "Order not found"}
		}
		utils.LogEvent(s.RequestID, "payment", "ipn", "lookup failed: "+err.Error())
		return IPNAck{RspCode: vnpay.RspUnknownError, Message: "Unknown error"}
	}

	if cb.Amount != payment.Amount {
		metrics.IPNRejected.WithLabelValues("amount").Inc()
		utils.LogEvent(s.RequestID, "payment", "ipn",
			fmt.Sprintf("amount mismatch payment=%s got=%d want=%d", payment.ID, cb.Amount, payment.Amount))
		return IPNAck{RspCode: vnpay.RspInvalidAmount, Message: "Invalid amount"}
	}

	if payment.Terminal() {
		return IPNAck{RspCode: vnpay.RspAlreadyConfirmed, Message: "Order already confirmed"}
	}

	status := models.PaymentStatusFailed
	if cb.Success() {
		status = models.PaymentStatusSuccess
	}

	// The gateway's pay time is the authoritative completion timestamp; fall
	// back to the local clock when the callback omits it.
	completedAt := time.Now()
	if t, err := utils.ParseGatewayTime(cb.PayDate); err == nil {
		completedAt = t
	}

	moved, err := s.PaymentRepo.FinalizeIfPending(ctx, payment.ID, status, cb.TransactionNo, cb.ResponseCode, completedAt)
	if err != nil {
		utils.LogEvent(s.RequestID, "payment", "ipn", "finalize failed: "+err.Error())
		return IPNAck{RspCode: vnpay.RspUnknownError, Message: "Unknown error"}
	}
	if !moved {
		// Lost a race against a concurrent retry that already finalized.
		return IPNAck{RspCode: vnpay.RspAlreadyConfirmed, Message: "Order already confirmed"}
	}
	metrics.PaymentsFinalized.WithLabelValues(status).Inc()

	if status == models.PaymentStatusSuccess {
		s.confirmBooking(ctx, payment.BookingID)
	} else {
		s.cancelBooking(ctx, payment.BookingID)
	}
	utils.LogEvent(s.RequestID, "payment", "ipn",
		fmt.Sprintf("payment=%s booking=%s status=%s code=%s", payment.ID, payment.BookingID, status, cb.ResponseCode))

	return IPNAck{RspCode: vnpay.RspOK, Message: "Confirm success"}
}

// HandleReturn verifies the browser redirect and reports the current payment
// state for display. The IPN is the only writer; the return path re-reads.
func (s PaymentService) HandleReturn(ctx context.Context, values url.Values) (ReturnResult, error) {
	cb, err := s.Gateway.VerifyCallback(values)
	if err != nil {
		return ReturnResult{}, domain.ValidationError{Field: "vnp_SecureHash", Msg: "invalid signature", Err: err}
	}

	payment, err := s.PaymentRepo.GetByID(ctx, cb.TxnRef)
	if err != nil {
		return ReturnResult{}, err
	}

	return ReturnResult{
		BookingID:     payment.BookingID,
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		ResponseCode:  cb.ResponseCode,
		GatewaySaysOK: cb.Success(),
		Status:        payment.Status,
	}, nil
}

// List returns all payment attempts for the staff reconciliation view.
func (s PaymentService) List(ctx context.Context) ([]models.Payment, error) {
	return s.PaymentRepo.List(ctx)
}

// Get returns one payment attempt by its gateway transaction reference.
func (s PaymentService) Get(ctx context.Context, id string) (models.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Payment{}, domain.ValidationError{Field: "id", Msg: "required"}
	}
	return s.PaymentRepo.GetByID(ctx, id)
}

// ExpireBooking is invoked by the Redis expiry listener when a payment window
// lapses. It fails the open payment and cancels the booking; both transitions
// are conditional, so a concurrently-arriving IPN wins cleanly.
func (s PaymentService) ExpireBooking(ctx context.Context, bookingID string) {
	payment, err := s.PaymentRepo.GetByBookingID(ctx, bookingID)
	if err == nil && !payment.Terminal() {
		moved, err := s.PaymentRepo.FinalizeIfPending(ctx, payment.ID, models.PaymentStatusFailed, "", "expired", time.Now())
		if err != nil {
			utils.LogEvent(s.RequestID, "payment", "expire", "finalize failed: "+err.Error())
			return
		}
		if !moved {
			return
		}
		metrics.PaymentsFinalized.WithLabelValues(models.PaymentStatusFailed).Inc()
	}

	s.cancelBooking(ctx, bookingID)
	utils.LogEvent(s.RequestID, "payment", "expire", "booking="+bookingID)
}

func (s PaymentService) confirmBooking(ctx context.Context, bookingID string) {
	moved, err := s.BookingRepo.ConfirmIfPending(ctx, bookingID)
	if err != nil {
		utils.LogEvent(s.RequestID, "payment", "confirm", "booking update failed: "+err.Error())
		return
	}
	if !moved {
		utils.LogEvent(s.RequestID, "payment", "confirm", "booking "+bookingID+" no longer pending")
		return
	}
	if s.Holds != nil {
		if err := s.Holds.DisarmExpiry(ctx, bookingID); err != nil {
			utils.LogEvent(s.RequestID, "payment", "confirm", "expiry disarm failed: "+err.Error())
		}
	}
}

func (s PaymentService) cancelBooking(ctx context.Context, bookingID string) {
	// Seats must be read before the cancel releases them.
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		utils.LogEvent(s.RequestID, "payment", "cancel", "booking read failed: "+err.Error())
		return
	}
	seats := booking.Seats

	moved, err := s.BookingRepo.CancelAndRelease(ctx, bookingID)
	if err != nil {
		utils.LogEvent(s.RequestID, "payment", "cancel", "booking update failed: "+err.Error())
		return
	}
	if !moved {
		return
	}

	if s.Holds != nil {
		if err := s.Holds.ReleaseSeats(ctx, booking.TripID, seats); err != nil {
			utils.LogEvent(s.RequestID, "payment", "cancel", "hold release failed: "+err.Error())
		}
		if err := s.Holds.DisarmExpiry(ctx, bookingID); err != nil {
			utils.LogEvent(s.RequestID, "payment", "cancel", "expiry disarm failed: "+err.Error())
		}
	}
	if err := s.Events.Cancelled(ctx, mq.BookingEvent{
		BookingID:   bookingID,
		TripID:      booking.TripID,
		SeatNumbers: seats,
		Status:      models.BookingStatusCancelled,
	}); err != nil {
		utils.LogEvent(s.RequestID, "payment", "cancel", "event publish failed: "+err.Error())
	}
}
