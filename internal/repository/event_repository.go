package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-reservation-api/internal/model"
)

// EventRepo provides CRUD operations for events.  Every read joins the
// owning city so callers always receive Event.City populated.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const (
	eventColumns = `e.id, e.title, e.description, e.start_date, e.end_date, e.price, e.image,
       e.is_active, e.city_id, e.created_at, e.updated_at,
       c.id, c.name, c.created_at, c.updated_at`
	eventFrom = `
  FROM events e
  JOIN cities c ON c.id = e.city_id`
	eventSelect = `SELECT ` + eventColumns + eventFrom
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one row produced by eventSelect, plus any trailing
// columns passed in extra.
func scanEvent(s rowScanner, extra ...any) (*model.Event, error) {
	var (
		e           model.Event
		c           model.City
		description sql.NullString
		start, end  sql.NullTime
		price       sql.NullFloat64
		image       sql.NullString
	)
	dest := []any{
		&e.ID, &e.Title, &description, &start, &end, &price, &image,
		&e.IsActive, &e.CityID, &e.CreatedAt, &e.UpdatedAt,
		&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if description.Valid {
		e.Description = &description.String
	}
	if start.Valid {
		t := start.Time.UTC()
		e.StartDate = &t
	}
	if end.Valid {
		t := end.Time.UTC()
		e.EndDate = &t
	}
	if price.Valid {
		e.Price = &price.Float64
	}
	if image.Valid {
		e.Image = &image.String
	}
	e.City = &c
	return &e, nil
}

func (r *EventRepo) list(ctx context.Context, where, order string, args ...any) ([]*model.Event, error) {
	q := eventSelect
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY " + order
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every event, active or not, newest first.
func (r *EventRepo) ListAll(ctx context.Context) ([]*model.Event, error) {
	return r.list(ctx, "", "e.created_at DESC, e.id")
}

// ListActive returns active events, newest first.
func (r *EventRepo) ListActive(ctx context.Context) ([]*model.Event, error) {
	return r.list(ctx, "e.is_active = 1", "e.created_at DESC, e.id")
}

// ListActiveByCity returns the active events of one city, newest first.
func (r *EventRepo) ListActiveByCity(ctx context.Context, cityID string) ([]*model.Event, error) {
	return r.list(ctx, "e.is_active = 1 AND e.city_id = ?", "e.created_at DESC, e.id", cityID)
}

// ListUpcoming returns active events starting on or after from,
// earliest first.  Events without a start date are excluded.
func (r *EventRepo) ListUpcoming(ctx context.Context, from time.Time) ([]*model.Event, error) {
	return r.list(ctx, "e.is_active = 1 AND e.start_date >= ?", "e.start_date ASC, e.created_at DESC",
		from.UTC().Format(model.DateLayout))
}

// GetByID fetches an event regardless of its active flag.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, eventSelect+" WHERE e.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetActiveByID fetches an event only when it is active.  Inactive and
// missing events both yield ErrEventNotFound.
func (r *EventRepo) GetActiveByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, eventSelect+" WHERE e.id = ? AND e.is_active = 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts a new event.  A UUID is generated when e.ID is empty.
// A missing city yields ErrCityNotFound.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	const q = `INSERT INTO events (id, title, description, start_date, end_date, price, image, is_active, city_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Title, e.Description, dateArg(e.StartDate), dateArg(e.EndDate),
		e.Price, e.Image, e.IsActive, e.CityID)
	if err != nil {
		if isMissingReference(err) {
			return ErrCityNotFound
		}
		return err
	}
	return nil
}

// Update writes every mutable column of e.  It returns
// ErrEventNotFound when no row matches.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events
	              SET title = ?, description = ?, start_date = ?, end_date = ?, price = ?, image = ?,
	                  is_active = ?, city_id = ?, updated_at = CURRENT_TIMESTAMP(6)
	            WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, dateArg(e.StartDate), dateArg(e.EndDate),
		e.Price, e.Image, e.IsActive, e.CityID, e.ID)
	if err != nil {
		if isMissingReference(err) {
			return ErrCityNotFound
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ToggleActive flips is_active in a single statement so concurrent
// toggles never lose an update.
func (r *EventRepo) ToggleActive(ctx context.Context, id string) error {
	const q = `UPDATE events SET is_active = NOT is_active, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event; its reservations go with it through the
// event_user foreign key.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// dateArg converts an optional date into a DATE parameter.
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(model.DateLayout)
}
