package model

import "errors"

// Sentinel errors returned by the service layer. Handlers map each group
// to one HTTP status, so new failures join an existing group or add a
// new one deliberately.

// Invalid input: the request body failed validation (400).
var (
	ErrRequestRequired      = errors.New("request body is required")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrReservedAtRequired   = errors.New("reservation time is required")
	ErrMalformedReservedAt  = errors.New("reservation time is malformed")
	ErrPartySizeTooSmall    = errors.New("party size must be at least 1")
	ErrUnknownStatus        = errors.New("unknown reservation status")
)

// Invalid argument: the request parsed but violates a business rule (400).
var (
	ErrReservedAtNotFuture = errors.New("reservation time must be in the future")
)

// Not found (404).
var (
	ErrReservationNotFound = errors.New("reservation not found")
)

// Conflict: the request collides with current state (409).
var (
	ErrDuplicateActiveSlot = errors.New("an active reservation already exists for that time")
	ErrAlreadyFinalized    = errors.New("reservation is already finalized")
	ErrCancelNotAllowed    = errors.New("reservation cannot be canceled in its current status")
	ErrConcurrentUpdate    = errors.New("reservation was modified concurrently, retry")
)
