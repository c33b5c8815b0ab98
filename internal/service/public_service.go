package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/repository"
)

// PublicService answers anonymous read-only queries.  Only active
// events are ever returned; an inactive event is reported exactly like
// a missing one.
type PublicService struct {
	events EventStore
	cities CityStore
	now    func() time.Time
}

func NewPublicService(events EventStore, cities CityStore) *PublicService {
	return &PublicService{events: events, cities: cities, now: time.Now}
}

// List returns active events, newest first.
func (s *PublicService) List(ctx context.Context) ([]*model.Event, error) {
	events, err := s.events.ListActive(ctx)
	if err != nil {
		return nil, Internal("Error while retrieving events", err)
	}
	return events, nil
}

func (s *PublicService) Get(ctx context.Context, eventID string) (*model.Event, error) {
	e, err := s.events.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, NotFound("Event not found or inactive")
		}
		return nil, Internal("Error while retrieving the event", err)
	}
	return e, nil
}

// ByCity returns the city and its active events, newest first.
func (s *PublicService) ByCity(ctx context.Context, cityID string) (*model.City, []*model.Event, error) {
	c, err := s.cities.GetByID(ctx, cityID)
	if err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			return nil, nil, cityNotFound()
		}
		return nil, nil, Internal("Error while retrieving events by city", err)
	}
	events, err := s.events.ListActiveByCity(ctx, cityID)
	if err != nil {
		return nil, nil, Internal("Error while retrieving events by city", err)
	}
	return c, events, nil
}

// Upcoming returns active events starting today (UTC) or later,
// earliest first.
func (s *PublicService) Upcoming(ctx context.Context) ([]*model.Event, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	events, err := s.events.ListUpcoming(ctx, today)
	if err != nil {
		return nil, Internal("Error while retrieving upcoming events", err)
	}
	return events, nil
}
