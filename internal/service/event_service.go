package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/repository"
	"github.com/iliyamo/event-reservation-api/internal/storage"
)

// EventInput is the body of event create and update requests.  On
// create, title and city_id are required; on update every field is
// optional and only the keys present in the payload are applied.  An
// explicit null (or empty string) clears description, dates, price and
// image.
type EventInput struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[string]  `json:"description"`
	StartDate   Optional[string]  `json:"start_date"`
	EndDate     Optional[string]  `json:"end_date"`
	Price       Optional[float64] `json:"price"`
	Image       Optional[string]  `json:"image"`
	IsActive    Optional[bool]    `json:"is_active"`
	CityID      Optional[string]  `json:"city_id"`
}

// EventService administers events.  Every operation requires the admin role.
type EventService struct {
	events EventStore
	cities CityStore
	images ImageStore
	cache  CacheInvalidator
	log    *zap.Logger
}

func NewEventService(events EventStore, cities CityStore, images ImageStore, cache CacheInvalidator, log *zap.Logger) *EventService {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &EventService{events: events, cities: cities, images: images, cache: cache, log: log}
}

// List returns all events, active or not, with their city.
func (s *EventService) List(ctx context.Context, id Identity) ([]*model.Event, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	events, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, Internal("Error while retrieving events", err)
	}
	return events, nil
}

// Create validates in, stores the decoded image if one was supplied and
// inserts the event.  Nothing is written when validation fails.
func (s *EventService) Create(ctx context.Context, id Identity, in EventInput) (*model.Event, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	e := &model.Event{IsActive: true}
	ch, err := s.apply(ctx, e, in, true)
	if err != nil {
		return nil, err
	}
	if ch.image != nil {
		path, err := s.storeImage(ctx, ch.image)
		if err != nil {
			return nil, err
		}
		e.Image = &path
	}
	if err := s.events.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			return nil, invalidCity()
		}
		return nil, Internal("Error while creating the event", err)
	}
	s.invalidate(ctx)
	return s.find(ctx, e.ID)
}

func (s *EventService) Get(ctx context.Context, id Identity, eventID string) (*model.Event, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.find(ctx, eventID)
}

// Update applies the fields present in in.  When the image is replaced
// or cleared, the previous file is removed best-effort after the row
// has been written.
func (s *EventService) Update(ctx context.Context, id Identity, eventID string, in EventInput) (*model.Event, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	cur, err := s.find(ctx, eventID)
	if err != nil {
		return nil, err
	}
	e := *cur
	ch, err := s.apply(ctx, &e, in, false)
	if err != nil {
		return nil, err
	}
	var newPath string
	switch {
	case ch.image != nil:
		if newPath, err = s.storeImage(ctx, ch.image); err != nil {
			return nil, err
		}
		e.Image = &newPath
	case ch.clearImage:
		e.Image = nil
	}
	if err := s.events.Update(ctx, &e); err != nil {
		if newPath != "" {
			s.removeImage(ctx, newPath)
		}
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return nil, eventNotFound()
		case errors.Is(err, repository.ErrCityNotFound):
			return nil, invalidCity()
		}
		return nil, Internal("Error while updating the event", err)
	}
	if cur.Image != nil && (ch.image != nil || ch.clearImage) {
		s.removeImage(ctx, *cur.Image)
	}
	s.invalidate(ctx)
	return s.find(ctx, eventID)
}

// Delete removes the stored image, if any, and then the event.  The
// event's reservations are removed with it.
func (s *EventService) Delete(ctx context.Context, id Identity, eventID string) error {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return err
	}
	cur, err := s.find(ctx, eventID)
	if err != nil {
		return err
	}
	if cur.Image != nil {
		s.removeImage(ctx, *cur.Image)
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return eventNotFound()
		}
		return Internal("Error while deleting the event", err)
	}
	s.invalidate(ctx)
	return nil
}

// ToggleStatus flips is_active without running field validation.
func (s *EventService) ToggleStatus(ctx context.Context, id Identity, eventID string) (*model.Event, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.events.ToggleActive(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, eventNotFound()
		}
		return nil, Internal("Error while changing the event status", err)
	}
	s.invalidate(ctx)
	return s.find(ctx, eventID)
}

func (s *EventService) find(ctx context.Context, eventID string) (*model.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, eventNotFound()
		}
		return nil, Internal("Error while retrieving the event", err)
	}
	return e, nil
}

// eventChange carries the parts of an input that apply cannot write
// into the event itself.
type eventChange struct {
	image      *storage.Image
	clearImage bool
}

// apply validates in and writes the accepted values into e.  For an
// update e holds the current row, so the end_date >= start_date rule is
// checked against the values the event will have after the update.
// All field errors are collected before returning.
func (s *EventService) apply(ctx context.Context, e *model.Event, in EventInput, create bool) (eventChange, error) {
	var ch eventChange
	fields := FieldErrors{}

	if create || in.Title.Set {
		t := strings.TrimSpace(in.Title.Value)
		switch {
		case in.Title.Null || t == "":
			fields.Add("title", "The title field is required.")
		case utf8.RuneCountInString(t) > 255:
			fields.Add("title", "The title field must not be greater than 255 characters.")
		default:
			e.Title = t
		}
	}

	if in.Description.Set {
		if in.Description.Null || in.Description.Value == "" {
			e.Description = nil
		} else {
			d := in.Description.Value
			e.Description = &d
		}
	}

	datesOK := true
	if in.StartDate.Set {
		t, ok := parseOptionalDate(in.StartDate)
		if !ok {
			datesOK = false
			fields.Add("start_date", "The start date field must be a valid date.")
		} else {
			e.StartDate = t
		}
	}
	if in.EndDate.Set {
		t, ok := parseOptionalDate(in.EndDate)
		if !ok {
			datesOK = false
			fields.Add("end_date", "The end date field must be a valid date.")
		} else {
			e.EndDate = t
		}
	}
	if datesOK && e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		fields.Add("end_date", "The end date field must be a date after or equal to start date.")
	}

	if in.Price.Set {
		switch {
		case in.Price.Null:
			e.Price = nil
		case in.Price.Value < 0:
			fields.Add("price", "The price field must be at least 0.")
		default:
			p := in.Price.Value
			e.Price = &p
		}
	}

	if in.IsActive.Set {
		if in.IsActive.Null {
			fields.Add("is_active", "The is active field must be true or false.")
		} else {
			e.IsActive = in.IsActive.Value
		}
	}

	if create || in.CityID.Set {
		cityID := strings.TrimSpace(in.CityID.Value)
		switch {
		case in.CityID.Null || cityID == "":
			fields.Add("city_id", "The city id field is required.")
		case uuid.Validate(cityID) != nil:
			fields.Add("city_id", "The city id field must be a valid UUID.")
		default:
			c, err := s.cities.GetByID(ctx, cityID)
			switch {
			case errors.Is(err, repository.ErrCityNotFound):
				fields.Add("city_id", "The selected city id is invalid.")
			case err != nil:
				return ch, Internal("Error while validating the event", err)
			default:
				e.CityID = c.ID
				e.City = c
			}
		}
	}

	if in.Image.Set {
		if in.Image.Null || in.Image.Value == "" {
			ch.clearImage = true
		} else {
			img, err := storage.DecodeDataURI(in.Image.Value)
			if err != nil {
				fields.Add("image", err.Error())
			} else {
				ch.image = img
			}
		}
	}

	if len(fields) > 0 {
		return ch, Validation("The given data was invalid.", fields)
	}
	return ch, nil
}

func parseOptionalDate(o Optional[string]) (*time.Time, bool) {
	if o.Null || strings.TrimSpace(o.Value) == "" {
		return nil, true
	}
	t, err := model.ParseDate(o.Value)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// storeImage writes img under a fresh path carrying its extension.
func (s *EventService) storeImage(ctx context.Context, img *storage.Image) (string, error) {
	path := "events/" + uuid.NewString() + "." + img.Ext
	if err := s.images.Put(ctx, path, img.Data, img.ContentType); err != nil {
		return "", Internal("Error while storing the image", err)
	}
	return path, nil
}

func (s *EventService) removeImage(ctx context.Context, path string) {
	if err := s.images.Delete(ctx, path); err != nil {
		s.log.Warn("delete event image", zap.String("path", path), zap.Error(err))
	}
}

func (s *EventService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("cache invalidation failed", zap.Error(err))
	}
}

func eventNotFound() *Error { return NotFound("Event not found") }

func invalidCity() *Error {
	return Validation("The given data was invalid.", FieldErrors{"city_id": {"The selected city id is invalid."}})
}
