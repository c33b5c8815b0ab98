package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-reservation-api/internal/model"
)

var eventCols = []string{
	"id", "title", "description", "start_date", "end_date", "price", "image",
	"is_active", "city_id", "created_at", "updated_at",
	"c_id", "c_name", "c_created_at", "c_updated_at",
}

func TestEventGetByIDScansCity(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = ?")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
			"e1", "Jazz Night", nil, start, nil, 12.5, nil,
			true, "c1", now, now,
			"c1", "Tehran", now, now,
		))

	e, err := NewEventRepo(db).GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", e.Title)
	assert.Nil(t, e.Description)
	require.NotNil(t, e.StartDate)
	assert.Equal(t, start, *e.StartDate)
	assert.Nil(t, e.EndDate)
	require.NotNil(t, e.Price)
	assert.InDelta(t, 12.5, *e.Price, 0.0001)
	assert.Nil(t, e.Image)
	require.NotNil(t, e.City)
	assert.Equal(t, "Tehran", e.City.Name)
}

func TestEventGetActiveByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = ? AND e.is_active = 1")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows(eventCols))

	_, err := NewEventRepo(db).GetActiveByID(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventCreateUnknownCity(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	e := &model.Event{Title: "Jazz Night", StartDate: &start, IsActive: true, CityID: "gone"}
	err := NewEventRepo(db).Create(context.Background(), e)
	assert.ErrorIs(t, err, ErrCityNotFound)
	assert.NotEmpty(t, e.ID)
}

func TestEventCreateFormatsDates(t *testing.T) {
	db, mock := newMock(t)
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs("e1", "Jazz Night", nil, "2025-06-10", nil, nil, nil, true, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := &model.Event{ID: "e1", Title: "Jazz Night", StartDate: &start, IsActive: true, CityID: "c1"}
	require.NoError(t, NewEventRepo(db).Create(context.Background(), e))
}

func TestEventToggleActiveMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("SET is_active = NOT is_active")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewEventRepo(db).ToggleActive(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventListUpcomingUsesDateBound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("e.is_active = 1 AND e.start_date >= ?")).
		WithArgs("2025-06-01").
		WillReturnRows(sqlmock.NewRows(eventCols))

	out, err := NewEventRepo(db).ListUpcoming(context.Background(), time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, out)
}
