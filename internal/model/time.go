package model

import (
	"strings"
	"time"
)

// Reservation times travel as naive ISO-8601 strings and are interpreted
// as UTC. Strings carrying a zone offset are rejected rather than
// silently converted.
const (
	// ReservedAtLayout is the canonical render format. time.Parse also
	// accepts fractional seconds against this layout.
	ReservedAtLayout = "2006-01-02T15:04:05"
	// reservedAtShortLayout accepts minute precision on input.
	reservedAtShortLayout = "2006-01-02T15:04"
)

// ParseReservationTime parses a client-supplied reservation time. It
// returns ErrMalformedReservedAt for anything that is not a naive
// ISO-8601 timestamp. Fractional seconds are accepted on input and
// truncated, so the parsed value always matches the precision of the
// reserved_at column and of the rendered form.
func ParseReservationTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrReservedAtRequired
	}
	if t, err := time.ParseInLocation(ReservedAtLayout, s, time.UTC); err == nil {
		return t.Truncate(time.Second), nil
	}
	if t, err := time.ParseInLocation(reservedAtShortLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, ErrMalformedReservedAt
}

// FormatReservationTime renders a reservation time for responses and
// event payloads, always second precision, always UTC.
func FormatReservationTime(t time.Time) string {
	return t.UTC().Format(ReservedAtLayout)
}
