package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/guard-duty-service/internal/domain"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// LocationService manages guarded locations.
type LocationService struct {
	locations repository.LocationRepository
}

// NewLocationService constructs the service.
func NewLocationService(locations repository.LocationRepository) *LocationService {
	return &LocationService{locations: locations}
}

// LocationInput describes a location create/update payload.
type LocationInput struct {
	Name  string
	Image *string
}

// CreateLocation registers a location with zeroed aggregates.
func (s *LocationService) CreateLocation(ctx context.Context, input LocationInput) (*domain.Location, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	location := &domain.Location{Name: strings.TrimSpace(input.Name), Image: input.Image}
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, apperrors.MapError(err)
	}
	return location, nil
}

// UpdateLocation rewrites profile fields only.
func (s *LocationService) UpdateLocation(ctx context.Context, id int64, input LocationInput) (*domain.Location, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	existing, err := s.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = strings.TrimSpace(input.Name)
	existing.Image = input.Image
	if err := s.locations.Update(ctx, existing); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.GetLocation(ctx, id)
}

// DeleteLocation removes a location.
func (s *LocationService) DeleteLocation(ctx context.Context, id int64) error {
	if err := s.locations.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("location", map[string]any{"location_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetLocation fetches one location by id.
func (s *LocationService) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("location", map[string]any{"location_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return location, nil
}

// ListLocations returns a filtered location page with the total count.
func (s *LocationService) ListLocations(ctx context.Context, filter repository.LocationFilter) ([]domain.Location, int, error) {
	locations, total, err := s.locations.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return locations, total, nil
}
