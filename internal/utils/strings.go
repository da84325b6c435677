package utils

import (
	"strings"

	"github.com/samber/lo"
)

// NormalizeSeats uppercases and trims seat codes, dropping empty entries.
func NormalizeSeats(seats []string) []string {
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		x := strings.ToUpper(strings.TrimSpace(s))
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}

// HasDuplicates reports whether a normalized seat list repeats a code.
func HasDuplicates(seats []string) bool {
	return len(lo.Uniq(seats)) != len(seats)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
