package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/queue"
	"github.com/iliyamo/event-reservation-api/internal/repository"
)

const publishTimeout = 3 * time.Second

// ReservationService manages the caller's own reservations.  Any
// authenticated role may use it.
type ReservationService struct {
	events       EventStore
	reservations ReservationStore
	publisher    EventPublisher // nil disables publishing
	log          *zap.Logger
	now          func() time.Time
}

func NewReservationService(events EventStore, reservations ReservationStore, publisher EventPublisher, log *zap.Logger) *ReservationService {
	return &ReservationService{events: events, reservations: reservations, publisher: publisher, log: log, now: time.Now}
}

// List returns the events the caller reserved, most recent reservation first.
func (s *ReservationService) List(ctx context.Context, id Identity) ([]*model.ReservedEvent, error) {
	if err := RequireRole(id); err != nil {
		return nil, err
	}
	out, err := s.reservations.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, Internal("Error while retrieving reservations", err)
	}
	return out, nil
}

// Reserve registers the caller for an active event.  A second
// reservation of the same event is a Conflict; the event_user primary
// key enforces this even when two requests race.
func (s *ReservationService) Reserve(ctx context.Context, id Identity, eventID string) (*model.Event, error) {
	if err := RequireRole(id); err != nil {
		return nil, err
	}
	e, err := s.events.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, NotFound("Event not found or inactive")
		}
		return nil, Internal("Error while making the reservation", err)
	}
	exists, err := s.reservations.Exists(ctx, id.UserID, eventID)
	if err != nil {
		return nil, Internal("Error while making the reservation", err)
	}
	if exists {
		return nil, alreadyReserved()
	}
	if err := s.reservations.Create(ctx, id.UserID, eventID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyReserved):
			return nil, alreadyReserved()
		case errors.Is(err, repository.ErrEventNotFound):
			return nil, NotFound("Event not found or inactive")
		}
		return nil, Internal("Error while making the reservation", err)
	}
	s.publish(ctx, queue.EventReserved, id.UserID, e)
	return e, nil
}

// Cancel removes the caller's reservation.  The event may be inactive
// but must exist.
func (s *ReservationService) Cancel(ctx context.Context, id Identity, eventID string) error {
	if err := RequireRole(id); err != nil {
		return err
	}
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return eventNotFound()
		}
		return Internal("Error while cancelling the reservation", err)
	}
	if err := s.reservations.Delete(ctx, id.UserID, eventID); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return NotFound("You are not registered for this event")
		}
		return Internal("Error while cancelling the reservation", err)
	}
	s.publish(ctx, queue.EventCancelled, id.UserID, e)
	return nil
}

// IsRegistered reports whether the caller holds a reservation for
// eventID.  An unknown event simply yields false.
func (s *ReservationService) IsRegistered(ctx context.Context, id Identity, eventID string) (bool, error) {
	if err := RequireRole(id); err != nil {
		return false, err
	}
	ok, err := s.reservations.Exists(ctx, id.UserID, eventID)
	if err != nil {
		return false, Internal("Error while checking the reservation", err)
	}
	return ok, nil
}

// publish emits a reservation event.  Failures are logged and never
// fail the request.
func (s *ReservationService) publish(ctx context.Context, typ, userID string, e *model.Event) {
	if s.publisher == nil {
		return
	}
	ev := queue.ReservationEvent{
		Type:       typ,
		UserID:     userID,
		EventID:    e.ID,
		EventTitle: e.Title,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	if e.City != nil {
		ev.CityName = e.City.Name
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pctx, ev); err != nil {
		s.log.Warn("publish reservation event", zap.String("type", typ), zap.String("event_id", e.ID), zap.Error(err))
	}
}

func alreadyReserved() *Error { return Conflict("You are already registered for this event") }
