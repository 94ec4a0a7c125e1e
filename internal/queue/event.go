// Package queue defines message payloads exchanged over the message broker
// and the publisher that delivers them.
package queue

// Queue names for reservation lifecycle events. The routing key equals
// the queue name because events go through the default exchange.
const (
	ReservationCreatedQueue  = "reservation.created"
	ReservationCanceledQueue = "reservation.canceled"
)

// ReservationEvent is published when a reservation is created or
// canceled. It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database. CancelReason is only set on cancellation events.
type ReservationEvent struct {
	ReservationID     uint64 `json:"reservation_id"`
	ReservationNumber string `json:"reservation_number"`
	CustomerName      string `json:"customer_name"`
	ReservedAt        string `json:"reserved_at"`
	PartySize         int    `json:"party_size"`
	Status            string `json:"status"`
	CancelReason      string `json:"cancel_reason,omitempty"`
	OccurredAt        string `json:"occurred_at"`
}
