package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-reservation-api/internal/model"
)

// ReservationRepo manages the event_user join table that records which
// users are registered for which events.  All timestamp fields are
// assumed to be stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Create registers userID for eventID.  The composite primary key turns
// a second registration into ErrAlreadyReserved even under concurrent
// requests; a vanished event yields ErrEventNotFound.
func (r *ReservationRepo) Create(ctx context.Context, userID, eventID string) error {
	const q = `INSERT INTO event_user (user_id, event_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, q, userID, eventID); err != nil {
		if isDuplicate(err) {
			return ErrAlreadyReserved
		}
		if isMissingReference(err) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

// Exists reports whether userID is registered for eventID.
func (r *ReservationRepo) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM event_user WHERE user_id = ? AND event_id = ?)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, userID, eventID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Delete removes the reservation.  It returns ErrReservationNotFound
// when the user was not registered.
func (r *ReservationRepo) Delete(ctx context.Context, userID, eventID string) error {
	const q = `DELETE FROM event_user WHERE user_id = ? AND event_id = ?`
	res, err := r.db.ExecContext(ctx, q, userID, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ListByUser returns the events userID is registered for, with their
// city, most recent reservation first.  Inactive events are included:
// deactivating an event does not cancel existing reservations.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]*model.ReservedEvent, error) {
	const q = `SELECT ` + eventColumns + `, eu.created_at` + eventFrom + `
  JOIN event_user eu ON eu.event_id = e.id
 WHERE eu.user_id = ?
 ORDER BY eu.created_at DESC, e.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.ReservedEvent, 0)
	for rows.Next() {
		var reservedAt sql.NullTime
		e, err := scanEvent(rows, &reservedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, &model.ReservedEvent{Event: *e, ReservedAt: reservedAt.Time})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
