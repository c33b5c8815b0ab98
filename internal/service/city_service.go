package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/repository"
)

// CityInput is the body of city create and update requests.  Name is
// required on both; there is no partial city update.
type CityInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CityService administers cities.  Every operation requires the admin role.
type CityService struct {
	cities CityStore
	images ImageStore
	cache  CacheInvalidator
	log    *zap.Logger
}

func NewCityService(cities CityStore, images ImageStore, cache CacheInvalidator, log *zap.Logger) *CityService {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &CityService{cities: cities, images: images, cache: cache, log: log}
}

func (s *CityService) List(ctx context.Context, id Identity) ([]*model.City, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, Internal("Error while retrieving cities", err)
	}
	return cities, nil
}

func (s *CityService) Create(ctx context.Context, id Identity, in CityInput) (*model.City, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(ctx, in, ""); err != nil {
		return nil, err
	}
	c := &model.City{Name: in.Name}
	if err := s.cities.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nameTaken()
		}
		return nil, Internal("Error while creating the city", err)
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CityService) Get(ctx context.Context, id Identity, cityID string) (*model.City, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.find(ctx, cityID)
}

func (s *CityService) Update(ctx context.Context, id Identity, cityID string, in CityInput) (*model.City, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, cityID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(ctx, in, cityID); err != nil {
		return nil, err
	}
	if err := s.cities.UpdateName(ctx, cityID, in.Name); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, nameTaken()
		case errors.Is(err, repository.ErrCityNotFound):
			return nil, cityNotFound()
		}
		return nil, Internal("Error while updating the city", err)
	}
	s.invalidate(ctx)
	return s.find(ctx, cityID)
}

// Delete removes the city along with its events and their reservations.
// Stored images of the removed events are deleted best-effort.
func (s *CityService) Delete(ctx context.Context, id Identity, cityID string) error {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return err
	}
	images, err := s.cities.Delete(ctx, cityID)
	if err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			return cityNotFound()
		}
		return Internal("Error while deleting the city", err)
	}
	for _, p := range images {
		if err := s.images.Delete(ctx, p); err != nil {
			s.log.Warn("delete event image", zap.String("path", p), zap.Error(err))
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *CityService) find(ctx context.Context, cityID string) (*model.City, error) {
	c, err := s.cities.GetByID(ctx, cityID)
	if err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			return nil, cityNotFound()
		}
		return nil, Internal("Error while retrieving the city", err)
	}
	return c, nil
}

// validate checks the field rules and then name uniqueness (exact,
// case-sensitive match) against every city other than exceptID.
func (s *CityService) validate(ctx context.Context, in CityInput, exceptID string) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	taken, err := s.cities.NameTaken(ctx, in.Name, exceptID)
	if err != nil {
		return Internal("Error while validating the city", err)
	}
	if taken {
		return nameTaken()
	}
	return nil
}

func (s *CityService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("cache invalidation failed", zap.Error(err))
	}
}

func cityNotFound() *Error { return NotFound("City not found") }

func nameTaken() *Error {
	return Validation("The given data was invalid.", FieldErrors{"name": {"The name has already been taken."}})
}
