package model

import "time"

// Reservation records a customer's request for a time slot. Exactly one
// reservation in an active status may occupy a given ReservedAt instant;
// finalized reservations release their slot but are kept for history and
// are never physically deleted.
//
// Fields:
//
//	ID                - primary key, assigned by storage, immutable.
//	ReservationNumber - externally shareable opaque code, unique, immutable.
//	CustomerName      - trimmed display name, required.
//	CustomerPhone     - contact phone; the current request surface does not
//	                    capture it, so creation stores a fixed placeholder.
//	CustomerEmail     - optional contact email (nullable).
//	ReservedAt        - reserved instant; strictly future at creation and
//	                    immutable afterwards (there is no reschedule).
//	PartySize         - number of guests, at least 1.
//	Status            - lifecycle state, see ReservationStatus.
//	CancelReason      - set exactly when Status is CANCELED, nil otherwise.
//	CreatedAt         - set once at creation.
//	UpdatedAt         - refreshed on every state mutation.
//	Version           - optimistic lock counter, bumped by storage on each
//	                    successful write.
type Reservation struct {
	ID                uint64            // reservations.id
	ReservationNumber string            // reservations.reservation_number
	CustomerName      string            // reservations.customer_name
	CustomerPhone     string            // reservations.customer_phone
	CustomerEmail     *string           // reservations.customer_email (nullable)
	ReservedAt        time.Time         // reservations.reserved_at
	PartySize         int               // reservations.party_size
	Status            ReservationStatus // reservations.status
	CancelReason      *string           // reservations.cancel_reason (nullable)
	CreatedAt         time.Time         // reservations.created_at
	UpdatedAt         time.Time         // reservations.updated_at
	Version           uint64            // reservations.version
}

// UnknownCustomerPhone fills the NOT NULL phone column while the request
// surface has no phone field.
const UnknownCustomerPhone = "UNKNOWN"

// DefaultCancelReason is recorded on every cancellation. The cancel
// operation does not accept a caller-supplied reason; the column stays
// nullable for statuses that never set one.
const DefaultCancelReason = "canceled by customer request"
