// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that carry them.
package queue

// ReservationQueue is the durable queue reservation events travel on.
const ReservationQueue = "reservation.events"

// Reservation event types.
const (
	EventReserved  = "reserved"
	EventCancelled = "cancelled"
)

// ReservationEvent is published after a user reserves or cancels an
// event.  It carries enough context for consumers to log or notify
// without querying the primary database.
type ReservationEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`
	CityName   string `json:"city_name"`
	OccurredAt string `json:"occurred_at"` // RFC 3339, UTC
}
