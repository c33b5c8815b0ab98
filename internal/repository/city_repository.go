// Package repository contains data access logic separated from HTTP handlers.
// This file holds the city repository.  Cities are referenced by events; a
// city delete removes its events and their reservations in one transaction.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/event-reservation-api/internal/model"
)

// CityRepo encapsulates all database queries related to cities.
type CityRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCityRepo constructs a CityRepo with the provided DB handle.
func NewCityRepo(db *sql.DB) *CityRepo {
	return &CityRepo{db: db}
}

// List returns every city in creation order.
func (r *CityRepo) List(ctx context.Context) ([]*model.City, error) {
	const q = `SELECT id, name, created_at, updated_at FROM cities ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.City, 0)
	for rows.Next() {
		c := new(model.City)
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new city.  A UUID is generated when c.ID is empty.
// After the insert a SELECT populates the default timestamp columns so
// callers receive a fully populated record.
func (r *CityRepo) Create(ctx context.Context, c *model.City) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const qInsert = "INSERT INTO cities (id, name) VALUES (?, ?)"
	if _, err := r.db.ExecContext(ctx, qInsert, c.ID, c.Name); err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	const qSelect = "SELECT name, created_at, updated_at FROM cities WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.Name, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID fetches a city by its ID.  It returns ErrCityNotFound if no
// row is found.
func (r *CityRepo) GetByID(ctx context.Context, id string) (*model.City, error) {
	const q = "SELECT id, name, created_at, updated_at FROM cities WHERE id = ?"
	var c model.City
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &c, nil
}

// NameTaken reports whether another city (any id other than exceptID)
// already uses name.  Comparison follows the column's binary collation,
// so it is case-sensitive.
func (r *CityRepo) NameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM cities WHERE name = ? AND id <> ?)"
	var taken bool
	if err := r.db.QueryRowContext(ctx, q, name, exceptID).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// UpdateName renames a city.  It returns ErrCityNotFound when no row
// matches and ErrDuplicate when the new name is already in use.
func (r *CityRepo) UpdateName(ctx context.Context, id, name string) error {
	const q = `UPDATE cities SET name = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCityNotFound
	}
	return nil
}

// Delete removes a city together with its events and their
// reservations.  The image paths of the removed events are returned so
// the caller can clean up stored files.  The deletion occurs within a
// transaction to maintain integrity.
func (r *CityRepo) Delete(ctx context.Context, id string) (images []string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var found string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM cities WHERE id = ? FOR UPDATE`, id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrCityNotFound
		}
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT image FROM events WHERE city_id = ? AND image IS NOT NULL`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		images = append(images, p)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Reservations first, then events, then the city itself.
	if _, err = tx.ExecContext(ctx,
		`DELETE eu FROM event_user eu JOIN events e ON e.id = eu.event_id WHERE e.city_id = ?`, id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE city_id = ?`, id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cities WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return images, nil
}
