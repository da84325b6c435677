// Package seating holds the pure seat-selection and schedule rules shared by
// the booking flow. Nothing here touches the network or the database.
package seating

import (
	"sort"
	"strconv"
	"strings"

	"busticket/internal/domain/models"
)

// Selection is a bounded set of seat codes a customer is assembling. Booked
// holds the trip's already-claimed seats; those are excluded from toggling.
type Selection struct {
	Booked map[string]bool
	Seats  []string
	Max    int
}

// NewSelection builds a Selection over the trip's booked-seat snapshot.
func NewSelection(booked []string) *Selection {
	set := make(map[string]bool, len(booked))
	for _, s := range booked {
		set[normalize(s)] = true
	}
	return &Selection{
		Booked: set,
		Max:    models.MaxSeatsPerBooking,
	}
}

// Toggle adds or removes a seat. It returns false with a user-facing message
// when the seat is already booked or the selection is full.
func (sel *Selection) Toggle(seat string) (bool, string) {
	seat = normalize(seat)
	if seat == "" {
		return false, "seat code is empty"
	}
	if sel.Booked[seat] {
		return false, "seat " + seat + " is already booked"
	}

	for i, s := range sel.Seats {
		if s == seat {
			sel.Seats = append(sel.Seats[:i], sel.Seats[i+1:]...)
			return true, ""
		}
	}

	if len(sel.Seats) >= sel.Max {
		return false, "you can select at most " + strconv.Itoa(sel.Max) + " seats"
	}

	sel.Seats = append(sel.Seats, seat)
	SortSeats(sel.Seats)
	return true, ""
}

// SortSeats orders seat codes by the numeric suffix ("A2" before "A10") so
// selections render stably regardless of click order.
func SortSeats(seats []string) {
	sort.SliceStable(seats, func(i, j int) bool {
		pi, ni := splitSeat(seats[i])
		pj, nj := splitSeat(seats[j])
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
}

func splitSeat(code string) (prefix string, num int) {
	i := 0
	for i < len(code) && (code[i] < '0' || code[i] > '9') {
		i++
	}
	prefix = code[:i]
	num, _ = strconv.Atoi(code[i:])
	return prefix, num
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
