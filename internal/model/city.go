package model

import "time"

// City represents a named location that events take place in.  It
// corresponds to a row in the `cities` table.  Names are unique
// (case-sensitive, enforced by a binary collation on the column).
//
// Fields:
//
//	ID        – UUID primary key.
//	Name      – unique display name.
//	CreatedAt – timestamp when the city was created.
//	UpdatedAt – timestamp of last update.
type City struct {
	ID        string    // cities.id
	Name      string    // cities.name
	CreatedAt time.Time // cities.created_at
	UpdatedAt time.Time // cities.updated_at
}
