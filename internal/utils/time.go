package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
	// Compact timestamp the VNPay gateway expects (yyyyMMddHHmmss).
	layoutGateway = "20060102150405"
)

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}

// FormatGatewayTime renders the gateway's compact timestamp format.
func FormatGatewayTime(t time.Time) string {
	return t.Format(layoutGateway)
}

// ParseGatewayTime parses the gateway's compact timestamp format.
func ParseGatewayTime(s string) (time.Time, error) {
	return time.ParseInLocation(layoutGateway, strings.TrimSpace(s), time.Local)
}
