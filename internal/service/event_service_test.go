package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/service/servicetest"
)

var imagePath = regexp.MustCompile(`^events/[0-9a-f-]{36}\.png$`)

func TestEventCreate(t *testing.T) {
	f := newFixture(t)
	c := f.city(t, "Abidjan")

	e := f.event(t, EventInput{
		Title:       Some("  Concert  "),
		Description: Some("Live music"),
		StartDate:   Some("2025-07-01"),
		EndDate:     Some("2025-07-02"),
		Price:       Some(15.5),
		Image:       Some(pngURI(t)),
		CityID:      Some(c.ID),
	})

	assert.Equal(t, "Concert", e.Title)
	assert.True(t, e.IsActive, "is_active defaults to true")
	require.NotNil(t, e.City)
	assert.Equal(t, "Abidjan", e.City.Name)
	assert.Equal(t, "2025-07-01", *model.FormatDate(e.StartDate))
	assert.Equal(t, 15.5, *e.Price)
	require.NotNil(t, e.Image)
	assert.Regexp(t, imagePath, *e.Image)
	assert.True(t, f.images.Has(*e.Image))
}

func TestEventCreateFromJSONPayload(t *testing.T) {
	f := newFixture(t)
	c := f.city(t, "Abidjan")

	var in EventInput
	body := `{"title":"Concert","city_id":"` + c.ID + `","is_active":false,"price":null,"description":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	assert.True(t, in.Price.Set)
	assert.True(t, in.Price.Null)
	assert.False(t, in.Image.Set)

	e := f.event(t, in)
	assert.False(t, e.IsActive)
	assert.Nil(t, e.Price)
	assert.Nil(t, e.Description)
}

func TestEventCreateValidation(t *testing.T) {
	f := newFixture(t)
	c := f.city(t, "Abidjan")

	cases := []struct {
		name  string
		in    EventInput
		field string
	}{
		{"missing title", EventInput{CityID: Some(c.ID)}, "title"},
		{"null title", EventInput{Title: Null[string](), CityID: Some(c.ID)}, "title"},
		{"long title", EventInput{Title: Some(strings.Repeat("a", 256)), CityID: Some(c.ID)}, "title"},
		{"missing city", EventInput{Title: Some("T")}, "city_id"},
		{"malformed city id", EventInput{Title: Some("T"), CityID: Some("abc")}, "city_id"},
		{"unknown city", EventInput{Title: Some("T"), CityID: Some("7b0f6a52-5f0e-4c43-9f7e-3f3d3c1e2a10")}, "city_id"},
		{"bad start date", EventInput{Title: Some("T"), CityID: Some(c.ID), StartDate: Some("tomorrow")}, "start_date"},
		{"end before start", EventInput{Title: Some("T"), CityID: Some(c.ID), StartDate: Some("2025-07-02"), EndDate: Some("2025-07-01")}, "end_date"},
		{"negative price", EventInput{Title: Some("T"), CityID: Some(c.ID), Price: Some(-1.0)}, "price"},
		{"null is_active", EventInput{Title: Some("T"), CityID: Some(c.ID), IsActive: Null[bool]()}, "is_active"},
		{"plain base64 image", EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some("aGVsbG8=")}, "image"},
		{"unsupported image", EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some("data:image/bmp;base64,aGVsbG8=")}, "image"},
		{"undecodable image", EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some("data:image/png;base64,aGVsbG8=")}, "image"},
		{"image type mismatch", EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some("data:image/gif;base64," + strings.SplitN(pngURI(t), ",", 2)[1])}, "image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.events.Create(context.Background(), admin, tc.in)
			se := requireKind(t, err, KindValidation)
			assert.NotEmpty(t, se.Fields[tc.field], "fields: %v", se.Fields)
		})
	}

	all, err := f.events.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is written on validation failure")
	assert.Equal(t, 0, f.images.Len())
}

func TestEventEqualDatesAccepted(t *testing.T) {
	f := newFixture(t)
	c := f.city(t, "Abidjan")
	e := f.event(t, EventInput{Title: Some("T"), CityID: Some(c.ID), StartDate: Some("2025-07-01"), EndDate: Some("2025-07-01")})
	assert.Equal(t, *e.StartDate, *e.EndDate)
}

func TestEventUpdateChecksEffectiveDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.city(t, "Abidjan")
	e := f.event(t, EventInput{Title: Some("T"), CityID: Some(c.ID), StartDate: Some("2025-07-10")})

	// only end_date sent, but it precedes the stored start_date
	_, err := f.events.Update(ctx, admin, e.ID, EventInput{EndDate: Some("2025-07-09")})
	requireKind(t, err, KindValidation)

	// moving start_date past the stored end_date is rejected too
	_, err = f.events.Update(ctx, admin, e.ID, EventInput{EndDate: Some("2025-07-12")})
	require.NoError(t, err)
	_, err = f.events.Update(ctx, admin, e.ID, EventInput{StartDate: Some("2025-07-13")})
	requireKind(t, err, KindValidation)

	// clearing start_date lifts the constraint
	got, err := f.events.Update(ctx, admin, e.ID, EventInput{StartDate: Null[string](), EndDate: Some("2025-01-01")})
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Equal(t, "2025-01-01", *model.FormatDate(got.EndDate))
}

func TestEventUpdatePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.city(t, "Abidjan")
	b := f.city(t, "Bouaké")
	e := f.event(t, EventInput{Title: Some("Concert"), Description: Some("d"), Price: Some(10.0), CityID: Some(a.ID)})

	got, err := f.events.Update(ctx, admin, e.ID, EventInput{Title: Some("Festival"), CityID: Some(b.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Festival", got.Title)
	assert.Equal(t, b.ID, got.CityID)
	assert.Equal(t, "Bouaké", got.City.Name)
	assert.Equal(t, "d", *got.Description)
	assert.Equal(t, 10.0, *got.Price)

	_, err = f.events.Update(ctx, admin, e.ID, EventInput{Title: Some("")})
	requireKind(t, err, KindValidation)

	_, err = f.events.Update(ctx, admin, "missing", EventInput{Title: Some("x")})
	requireKind(t, err, KindNotFound)
}

func TestEventUpdateReplacesImage(t *testing.T) {
	db := servicetest.NewDB()
	images := &mockImages{}
	svc := NewEventService(db.Events(), db.Cities(), images, nil, zap.NewNop())
	ctx := context.Background()
	c := &model.City{Name: "Abidjan"}
	require.NoError(t, db.Cities().Create(ctx, c))

	images.On("Put", mock.MatchedBy(imagePath.MatchString), "image/png").Return(nil).Twice()
	e, err := svc.Create(ctx, admin, EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some(pngURI(t))})
	require.NoError(t, err)
	old := *e.Image

	images.On("Delete", old).Return(errors.New("already gone")).Once()
	got, err := svc.Update(ctx, admin, e.ID, EventInput{Image: Some(pngURI(t))})
	require.NoError(t, err, "cleanup failure of the old image is not fatal")
	require.NotNil(t, got.Image)
	assert.NotEqual(t, old, *got.Image)
	images.AssertExpectations(t)
}

func TestEventUpdateClearsImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.city(t, "Abidjan")
	e := f.event(t, EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some(pngURI(t))})

	got, err := f.events.Update(ctx, admin, e.ID, EventInput{Image: Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, got.Image)
	assert.False(t, f.images.Has(*e.Image))
}

func TestEventUpdateWithoutImageKeepsIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.city(t, "Abidjan")
	e := f.event(t, EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some(pngURI(t))})

	got, err := f.events.Update(ctx, admin, e.ID, EventInput{Title: Some("U")})
	require.NoError(t, err)
	assert.Equal(t, *e.Image, *got.Image)
	assert.True(t, f.images.Has(*e.Image))
}

func TestEventDeleteRemovesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.city(t, "Abidjan")
	e := f.event(t, EventInput{Title: Some("T"), CityID: Some(c.ID), Image: Some(pngURI(t))})

	require.NoError(t, f.events.Delete(ctx, admin, e.ID))
	assert.False(t, f.images.Has(*e.Image))
	_, err := f.events.Get(ctx, admin, e.ID)
	requireKind(t, err, KindNotFound)
	requireKind(t, f.events.Delete(ctx, admin, e.ID), KindNotFound)
}

func TestEventToggleStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.city(t, "Abidjan")
	e := f.event(t, EventInput{Title: Some("T"), CityID: Some(c.ID)})

	got, err := f.events.ToggleStatus(ctx, admin, e.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.City)

	got, err = f.events.ToggleStatus(ctx, admin, e.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = f.events.ToggleStatus(ctx, admin, "missing")
	requireKind(t, err, KindNotFound)
	_, err = f.events.ToggleStatus(ctx, member, e.ID)
	requireKind(t, err, KindForbidden)
}

func TestPublicListingHidesInactiveEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.city(t, "Abidjan")
	active := f.event(t, EventInput{Title: Some("A"), CityID: Some(c.ID)})
	inactive := f.event(t, EventInput{Title: Some("B"), CityID: Some(c.ID), IsActive: Some(false)})

	pub, err := f.public.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{active.ID}, eventIDs(pub))

	all, err := f.events.List(ctx, admin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{active.ID, inactive.ID}, eventIDs(all))
}

// Create city, create event, toggle it off: the public list loses it and
// the admin list still shows it as inactive.
func TestScenarioToggleHidesFromPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.city(t, "Abidjan")
	e := f.event(t, EventInput{Title: Some("Concert"), CityID: Some(c.ID), IsActive: Some(true)})

	pub, err := f.public.List(ctx)
	require.NoError(t, err)
	require.Len(t, pub, 1)
	assert.Equal(t, e.ID, pub[0].ID)

	_, err = f.events.ToggleStatus(ctx, admin, e.ID)
	require.NoError(t, err)

	pub, err = f.public.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub)

	all, err := f.events.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, e.ID, all[0].ID)
	assert.False(t, all[0].IsActive)
}
