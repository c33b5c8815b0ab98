package model

import "time"

// Reservation links a user to an event they intend to attend.  It is
// a row of the `event_user` join table whose primary key is
// (user_id, event_id), so a user holds at most one reservation per
// event.
type Reservation struct {
	UserID    string    // event_user.user_id
	EventID   string    // event_user.event_id
	CreatedAt time.Time // event_user.created_at
}

// ReservedEvent is an event as seen from a user's reservation list,
// carrying the time the reservation was made.
type ReservedEvent struct {
	Event
	ReservedAt time.Time // event_user.created_at
}
