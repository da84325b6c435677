package seating

import (
	"reflect"
	"testing"
)

func TestToggleAddAndRemove(t *testing.T) {
	sel := NewSelection(nil)

	if ok, _ := sel.Toggle("a3"); !ok {
		t.Fatal("adding a free seat should succeed")
	}
	if !reflect.DeepEqual(sel.Seats, []string{"A3"}) {
		t.Fatalf("Seats = %v, want [A3]", sel.Seats)
	}

	if ok, _ := sel.Toggle("A3"); !ok {
		t.Fatal("toggling a selected seat should remove it")
	}
	if len(sel.Seats) != 0 {
		t.Fatalf("Seats = %v, want empty", sel.Seats)
	}
}

func TestToggleBookedSeat(t *testing.T) {
	sel := NewSelection([]string{"A3"})

	ok, msg := sel.Toggle("a3")
	if ok {
		t.Fatal("booked seat must not be selectable")
	}
	if msg == "" {
		t.Fatal("expected a user-facing message")
	}
	if len(sel.Seats) != 0 {
		t.Fatalf("Seats = %v, want empty", sel.Seats)
	}
}

func TestToggleSelectionFull(t *testing.T) {
	sel := NewSelection(nil)
	for _, s := range []string{"A1", "A2", "A3", "A4", "A5"} {
		if ok, _ := sel.Toggle(s); !ok {
			t.Fatalf("adding %s should succeed", s)
		}
	}

	ok, msg := sel.Toggle("A6")
	if ok {
		t.Fatal("sixth seat must be rejected")
	}
	if msg == "" {
		t.Fatal("expected a user-facing message")
	}

	// Removing one frees a slot again.
	if ok, _ := sel.Toggle("A1"); !ok {
		t.Fatal("removing a seat should succeed while full")
	}
	if ok, _ := sel.Toggle("A6"); !ok {
		t.Fatal("seat should be addable after freeing a slot")
	}
}

func TestToggleEmptyCode(t *testing.T) {
	sel := NewSelection(nil)
	if ok, _ := sel.Toggle("  "); ok {
		t.Fatal("blank seat code must be rejected")
	}
}

func TestSortSeatsNumericSuffix(t *testing.T) {
	seats := []string{"A10", "A2", "B1", "A1"}
	SortSeats(seats)
	want := []string{"A1", "A2", "A10", "B1"}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("SortSeats = %v, want %v", seats, want)
	}
}

func TestSelectionKeepsSortedOrder(t *testing.T) {
	sel := NewSelection(nil)
	for _, s := range []string{"A10", "A2", "A1"} {
		sel.Toggle(s)
	}
	want := []string{"A1", "A2", "A10"}
	if !reflect.DeepEqual(sel.Seats, want) {
		t.Fatalf("Seats = %v, want %v", sel.Seats, want)
	}
}
