package model

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format of event dates.
const DateLayout = "2006-01-02"

// Event represents a listed event as stored in the `events` table.
// Every event belongs to exactly one city.  Optional columns are
// modelled as pointers so that NULL survives a round trip.
//
// Fields:
//
//	ID          – UUID primary key.
//	Title       – required title (max 255 characters).
//	Description – optional free text.
//	StartDate   – optional start date (date only, UTC).
//	EndDate     – optional end date; never before StartDate.
//	Price       – optional non-negative price.
//	Image       – storage path of the cover image, if any.
//	IsActive    – whether the event is publicly visible.
//	CityID      – owning city.
//	City        – the owning city when loaded with a join.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Event struct {
	ID          string     // events.id
	Title       string     // events.title
	Description *string    // events.description (nullable)
	StartDate   *time.Time // events.start_date (nullable)
	EndDate     *time.Time // events.end_date (nullable)
	Price       *float64   // events.price (nullable)
	Image       *string    // events.image (nullable)
	IsActive    bool       // events.is_active
	CityID      string     // events.city_id
	City        *City      // joined cities row
	CreatedAt   time.Time  // events.created_at
	UpdatedAt   time.Time  // events.updated_at
}

// ParseDate accepts either a plain date (2006-01-02) or an RFC 3339
// timestamp and returns the calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		ts, errTS := time.Parse(time.RFC3339, s)
		if errTS != nil {
			return time.Time{}, err
		}
		t = ts.UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders an optional date in DateLayout; nil stays nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateLayout)
	return &s
}
