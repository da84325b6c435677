// Package vnpay implements the VNPay redirect/IPN contract: building the
// signed payment URL and independently verifying callback signatures.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"busticket/internal/utils"
)

// Gateway response codes used in IPN acknowledgements.
const (
	RspOK               = "00"
	RspOrderNotFound    = "01"
	RspAlreadyConfirmed = "02"
	RspInvalidAmount    = "04"
	RspInvalidSignature = "97"
	RspUnknownError     = "99"
)

// CodeSuccess is the gateway's response/transaction code for a completed
// payment; anything else is a failure with the code retained for diagnostics.
const CodeSuccess = "00"

const expiryWindow = 15 * time.Minute

// Config carries the merchant identity and endpoints. All fields are
// deployment secrets/settings; the package has no defaults for them.
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

// Client signs payment URLs and verifies callbacks with the shared secret.
// Now is injectable for deterministic tests.
type Client struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg, now: time.Now}
}

// NewWithClock is used by tests that need fixed create/expire timestamps.
func NewWithClock(cfg Config, now func() time.Time) *Client {
	return &Client{cfg: cfg, now: now}
}

// PaymentRequest is the subset of a payment the gateway needs to render its
// hosted payment page.
type PaymentRequest struct {
	TxnRef    string
	Amount    int64 // VND, unscaled
	OrderInfo string
	BankCode  string
	Locale    string
	ClientIP  string
}

// BuildPaymentURL assembles the canonical signed redirect URL. The amount is
// scaled by 100 per the gateway contract, and the expiry is pinned to the
// creation time plus the 15-minute window.
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if c.cfg.TmnCode == "" || c.cfg.HashSecret == "" {
		return "", fmt.Errorf("vnpay: merchant credentials not configured")
	}
	if req.TxnRef == "" {
		return "", fmt.Errorf("vnpay: empty transaction reference")
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("vnpay: amount must be positive")
	}

	locale := req.Locale
	if locale == "" {
		locale = "vn"
	}
	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = "Payment for order " + req.TxnRef
	}

	now := c.now()
	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CreateDate": utils.FormatGatewayTime(now),
		"vnp_ExpireDate": utils.FormatGatewayTime(now.Add(expiryWindow)),
		"vnp_CurrCode":   "VND",
		"vnp_Locale":     locale,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  "other",
		"vnp_ReturnUrl":  c.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_TxnRef":     req.TxnRef,
	}
	if req.BankCode != "" {
		params["vnp_BankCode"] = req.BankCode
	}

	query := canonicalQuery(params)
	sig := hmacSHA512(c.cfg.HashSecret, query)

	return c.cfg.PayURL + "?" + query + "&vnp_SecureHash=" + sig, nil
}

// Callback is the verified, decoded result of a return/IPN request.
type Callback struct {
	TxnRef            string
	Amount            int64 // VND, unscaled back down
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	PayDate           string
}

// Success reports whether the gateway marked the transaction completed.
func (cb Callback) Success() bool {
	return cb.ResponseCode == CodeSuccess && cb.TransactionStatus == CodeSuccess
}

// VerifyCallback recomputes the signature over every received parameter
// except the hash fields themselves and compares in constant time. A
// mismatch is terminal: callers must not touch any state.
func (c *Client) VerifyCallback(values url.Values) (Callback, error) {
	received := values.Get("vnp_SecureHash")
	if received == "" {
		return Callback{}, fmt.Errorf("vnpay: missing vnp_SecureHash")
	}

	params := make(map[string]string, len(values))
	for key := range values {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		params[key] = values.Get(key)
	}

	expected := hmacSHA512(c.cfg.HashSecret, canonicalHashData(params))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(received))) != 1 {
		return Callback{}, fmt.Errorf("vnpay: signature mismatch")
	}

	cb := Callback{
		TxnRef:            values.Get("vnp_TxnRef"),
		ResponseCode:      values.Get("vnp_ResponseCode"),
		TransactionStatus: values.Get("vnp_TransactionStatus"),
		TransactionNo:     values.Get("vnp_TransactionNo"),
		BankCode:          values.Get("vnp_BankCode"),
		PayDate:           values.Get("vnp_PayDate"),
	}
	if raw := values.Get("vnp_Amount"); raw != "" {
		scaled, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("vnpay: bad vnp_Amount %q", raw)
		}
		cb.Amount = scaled / 100
	}
	return cb, nil
}

// canonicalQuery builds the URL-encoded query string in sorted key order;
// the same string is signed and sent, so ordering must match on both sides.
func canonicalQuery(params map[string]string) string {
	keys := sortedKeys(params)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// canonicalHashData is the raw (unencoded) key=value join the gateway hashes
// on the callback side.
func canonicalHashData(params map[string]string) string {
	keys := sortedKeys(params)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

func sortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hmacSHA512(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
