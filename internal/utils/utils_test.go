package utils

import (
	"reflect"
	"testing"
	"time"
)

func TestFormatVND(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 VND"},
		{500, "500 VND"},
		{250000, "250.000 VND"},
		{1500000, "1.500.000 VND"},
		{-30000, "-30.000 VND"},
	}
	for _, tc := range cases {
		if got := FormatVND(tc.in); got != tc.want {
			t.Errorf("FormatVND(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSeats(t *testing.T) {
	got := NormalizeSeats([]string{" a1", "B2 ", "", "  "})
	want := []string{"A1", "B2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSeats = %v, want %v", got, want)
	}
}

func TestHasDuplicates(t *testing.T) {
	if HasDuplicates([]string{"A1", "A2"}) {
		t.Error("distinct seats flagged as duplicates")
	}
	if !HasDuplicates([]string{"A1", "A1"}) {
		t.Error("duplicate seats not flagged")
	}
}

func TestGatewayTimeRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	s := FormatGatewayTime(at)
	if s != "20260102030405" {
		t.Fatalf("FormatGatewayTime = %q", s)
	}
	parsed, err := ParseGatewayTime(s)
	if err != nil {
		t.Fatalf("ParseGatewayTime: %v", err)
	}
	if !parsed.Equal(at) {
		t.Fatalf("round trip = %s, want %s", parsed, at)
	}
}
