package models

import "time"

const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Payment tracks one payment attempt for a booking. ID doubles as the
// gateway transaction reference (vnp_TxnRef), so callbacks can be matched
// without a separate mapping table. Status moves from pending to exactly one
// terminal state; terminal states are immutable.
type Payment struct {
	ID           string     `json:"id"`
	BookingID    string     `json:"booking_id"`
	Amount       int64      `json:"amount"`
	GatewayTxnNo string     `json:"gateway_txn_no,omitempty"`
	ResponseCode string     `json:"response_code,omitempty"`
	BankCode     string     `json:"bank_code,omitempty"`
	Locale       string     `json:"locale,omitempty"`
	ClientIP     string     `json:"client_ip,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the payment reached a final state.
func (p Payment) Terminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}
