// Package repository implements MySQL persistence for reservations. The
// sentinel values below let the service layer distinguish storage
// failure modes without inspecting driver error codes itself.
package repository

import "errors"

// ErrNotFound is returned when no row matches the lookup key.
var ErrNotFound = errors.New("not found")

// ErrDuplicateActiveSlot is returned when an insert or update collides
// with another active reservation holding the same reserved_at slot.
var ErrDuplicateActiveSlot = errors.New("duplicate active slot")

// ErrDuplicateReservationNumber is returned when an insert collides on
// the reservation number. The service retries with a fresh number.
var ErrDuplicateReservationNumber = errors.New("duplicate reservation number")

// ErrVersionMismatch is returned when an optimistic update matched zero
// rows because the version column moved underneath it.
var ErrVersionMismatch = errors.New("version mismatch")
