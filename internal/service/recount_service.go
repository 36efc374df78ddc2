package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/guard-duty-service/internal/events"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// RecountService is the repair path for drifted aggregates: it discards the
// stored counters and rebuilds them from a full scan of the duty set.
// Recounts are idempotent, so operators can re-run them freely.
type RecountService struct {
	aggregates repository.AggregateRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewRecountService constructs the service.
func NewRecountService(aggregates repository.AggregateRepository, dispatcher events.Dispatcher, logger *zap.Logger) *RecountService {
	return &RecountService{aggregates: aggregates, dispatcher: dispatcher, logger: logger}
}

// RecountAllStaff rebuilds every staff member's aggregates and returns how
// many rows were rewritten.
func (s *RecountService) RecountAllStaff(ctx context.Context) (int64, error) {
	updated, err := s.aggregates.RecountStaff(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.logger.Info("staff aggregates recounted", zap.Int64("updated", updated))
	s.publishRecount(ctx, "staff", updated)
	return updated, nil
}

// RecountAllLocations rebuilds every location's aggregates.
func (s *RecountService) RecountAllLocations(ctx context.Context) (int64, error) {
	updated, err := s.aggregates.RecountLocations(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.logger.Info("location aggregates recounted", zap.Int64("updated", updated))
	s.publishRecount(ctx, "locations", updated)
	return updated, nil
}

// RecountStaffMember repairs a single staff member without a full-table pass.
func (s *RecountService) RecountStaffMember(ctx context.Context, staffID int64) error {
	if err := s.aggregates.RecountOneStaff(ctx, staffID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return apperrors.MapError(err)
	}
	s.publishRecount(ctx, "staff", 1)
	return nil
}

// RecountLocation repairs a single location.
func (s *RecountService) RecountLocation(ctx context.Context, locationID int64) error {
	if err := s.aggregates.RecountOneLocation(ctx, locationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("location", map[string]any{"location_id": locationID})
		}
		return apperrors.MapError(err)
	}
	s.publishRecount(ctx, "locations", 1)
	return nil
}

func (s *RecountService) publishRecount(ctx context.Context, scope string, updated int64) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRecountCompleted,
		Timestamp: time.Now(),
		Payload:   events.RecountCompletedPayload{Scope: scope, Updated: updated},
	})
}
