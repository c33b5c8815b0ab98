package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/queue"
	"github.com/iliyamo/event-reservation-api/internal/service/servicetest"
)

var (
	admin  = Identity{UserID: "admin-1", Role: model.RoleAdmin, TokenID: "jti-admin"}
	member = Identity{UserID: "user-1", Role: model.RoleUser, TokenID: "jti-user"}
	nobody = Identity{}
)

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) error {
	c.n++
	return nil
}

type mockImages struct{ mock.Mock }

func (m *mockImages) Put(_ context.Context, path string, _ []byte, contentType string) error {
	return m.Called(path, contentType).Error(0)
}

func (m *mockImages) Delete(_ context.Context, path string) error {
	return m.Called(path).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	return m.Called(ev.Type, ev.EventID).Error(0)
}

type fixture struct {
	db           *servicetest.DB
	images       *servicetest.Images
	cache        *countingCache
	cities       *CityService
	events       *EventService
	public       *PublicService
	reservations *ReservationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := servicetest.NewDB()
	images := servicetest.NewImages()
	cache := &countingCache{}
	log := zap.NewNop()
	return &fixture{
		db:           db,
		images:       images,
		cache:        cache,
		cities:       NewCityService(db.Cities(), images, cache, log),
		events:       NewEventService(db.Events(), db.Cities(), images, cache, log),
		public:       NewPublicService(db.Events(), db.Cities()),
		reservations: NewReservationService(db.Events(), db.Reservations(), nil, log),
	}
}

func (f *fixture) city(t *testing.T, name string) *model.City {
	t.Helper()
	c, err := f.cities.Create(context.Background(), admin, CityInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) event(t *testing.T, in EventInput) *model.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), admin, in)
	require.NoError(t, err)
	return e
}

func pngURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, want, se.Kind, "error: %v", err)
	return se
}

func eventIDs(events []*model.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
