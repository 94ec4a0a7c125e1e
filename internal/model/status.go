package model

// ReservationStatus is the lifecycle state of a reservation. Values are
// stored as-is in the status column.
type ReservationStatus string

const (
	// StatusRequested is the initial state assigned at creation.
	StatusRequested ReservationStatus = "REQUESTED"
	// StatusConfirmed marks a reservation accepted by the venue.
	StatusConfirmed ReservationStatus = "CONFIRMED"
	// StatusCanceled is terminal; CancelReason is set alongside it.
	StatusCanceled ReservationStatus = "CANCELED"
	// StatusCompleted is terminal; the party showed up and was served.
	StatusCompleted ReservationStatus = "COMPLETED"
	// StatusNoShow is terminal; the party never arrived.
	StatusNoShow ReservationStatus = "NO_SHOW"
)

// ActiveStatuses are the states in which a reservation occupies its
// ReservedAt slot. Duplicate-slot detection is scoped to this set.
var ActiveStatuses = []ReservationStatus{StatusRequested, StatusConfirmed}

// TerminalStatuses are the states that permit no further transition.
var TerminalStatuses = []ReservationStatus{StatusCanceled, StatusCompleted, StatusNoShow}

// transitions lists every declared edge of the state machine. The edges
// into COMPLETED and NO_SHOW have no triggering operation yet; they are
// declared here so future operations slot in without touching the guards.
// No edge leads back into REQUESTED.
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusRequested: {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusCanceled, StatusCompleted, StatusNoShow},
	StatusCanceled:  {},
	StatusCompleted: {},
	StatusNoShow:    {},
}

// IsActive reports whether the status occupies its time slot.
func (s ReservationStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transition.
func (s ReservationStatus) IsTerminal() bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the declared state machine contains an
// edge from s to next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// ParseStatus converts the textual form into a ReservationStatus. Unknown
// values return ErrUnknownStatus so callers can reject bad filter input
// before touching storage.
func ParseStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case StatusRequested, StatusConfirmed, StatusCanceled, StatusCompleted, StatusNoShow:
		return ReservationStatus(s), nil
	}
	return "", ErrUnknownStatus
}
