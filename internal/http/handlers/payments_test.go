package handlers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	intconfig "busticket/internal/config"
	"busticket/internal/vnpay"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

var handlerGatewayConfig = vnpay.Config{
	TmnCode:    "TESTTMN1",
	HashSecret: "testsecret",
	PayURL:     "https://sandbox.example/pay",
	ReturnURL:  "https://shop.example/payment/return",
}

func setupIPNRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	prev := intconfig.DB
	intconfig.DB = db
	t.Cleanup(func() { intconfig.DB = prev })

	SetDeps(Deps{Gateway: vnpay.New(handlerGatewayConfig)})

	r := gin.New()
	r.POST("/api/payment/ipn", VNPayIPN)
	return r, mock
}

// postIPN delivers form-encoded gateway parameters the way VNPay posts them.
func postIPN(r *gin.Engine, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/ipn", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	mac := hmac.New(sha512.New, []byte(handlerGatewayConfig.HashSecret))
	mac.Write([]byte(strings.Join(pairs, "&")))

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func TestVNPayIPNAckInvalidSignature(t *testing.T) {
	r, mock := setupIPNRouter(t)

	w := postIPN(r, "vnp_TxnRef=pay-1&vnp_SecureHash=deadbeef")

	// The gateway contract: HTTP 200 always, outcome in RspCode.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var ack struct {
		RspCode string
		Message string
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.RspCode != vnpay.RspInvalidSignature {
		t.Fatalf("RspCode = %s, want %s", ack.RspCode, vnpay.RspInvalidSignature)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database activity: %v", err)
	}
}

func TestVNPayIPNAckSuccess(t *testing.T) {
	r, mock := setupIPNRouter(t)

	rows := sqlmock.NewRows([]string{
		"id", "booking_id", "amount", "gateway_txn_no", "response_code",
		"bank_code", "locale", "client_ip", "status", "created_at", "completed_at",
	}).AddRow("pay-1", "aB3xY9", int64(300000), "", "", "", "vn", "203.0.113.7",
		"pending", time.Now(), nil)
	mock.ExpectQuery("SELECT (.+) FROM payments").WillReturnRows(rows)
	mock.ExpectExec("UPDATE payments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))

	form := signQuery(map[string]string{
		"vnp_TxnRef":            "pay-1",
		"vnp_Amount":            "30000000",
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TransactionNo":     "14226112",
		"vnp_TmnCode":           "TESTTMN1",
	})
	w := postIPN(r, form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var ack struct {
		RspCode string
		Message string
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.RspCode != vnpay.RspOK {
		t.Fatalf("RspCode = %s body = %s", ack.RspCode, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
