package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/queue"
)

// The store interfaces below are satisfied by the MySQL repositories in
// internal/repository and by in-memory fakes in tests.

type CityStore interface {
	List(ctx context.Context) ([]*model.City, error)
	Create(ctx context.Context, c *model.City) error
	GetByID(ctx context.Context, id string) (*model.City, error)
	NameTaken(ctx context.Context, name, exceptID string) (bool, error)
	UpdateName(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) (images []string, err error)
}

type EventStore interface {
	ListAll(ctx context.Context) ([]*model.Event, error)
	ListActive(ctx context.Context) ([]*model.Event, error)
	ListActiveByCity(ctx context.Context, cityID string) ([]*model.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetActiveByID(ctx context.Context, id string) (*model.Event, error)
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	ToggleActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ReservationStore interface {
	Create(ctx context.Context, userID, eventID string) error
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	Delete(ctx context.Context, userID, eventID string) error
	ListByUser(ctx context.Context, userID string) ([]*model.ReservedEvent, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type TokenStore interface {
	Store(ctx context.Context, tokenID, userID string, exp time.Time) error
	Validate(ctx context.Context, tokenID string) (userID string, err error)
	Revoke(ctx context.Context, tokenID string) error
}

// ImageStore persists event cover images; see internal/storage.
type ImageStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
}

// EventPublisher emits reservation events; see internal/queue.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// CacheInvalidator drops cached public responses after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }
