package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/guard-duty-service/internal/events"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

type fakeAggregateRepo struct {
	staffUpdated    int64
	locationUpdated int64
	knownStaff      map[int64]bool
	knownLocations  map[int64]bool
	staffRuns       int
}

func (f *fakeAggregateRepo) RecountStaff(ctx context.Context) (int64, error) {
	f.staffRuns++
	return f.staffUpdated, nil
}

func (f *fakeAggregateRepo) RecountLocations(ctx context.Context) (int64, error) {
	return f.locationUpdated, nil
}

func (f *fakeAggregateRepo) RecountOneStaff(ctx context.Context, staffID int64) error {
	if !f.knownStaff[staffID] {
		return pgx.ErrNoRows
	}
	return nil
}

func (f *fakeAggregateRepo) RecountOneLocation(ctx context.Context, locationID int64) error {
	if !f.knownLocations[locationID] {
		return pgx.ErrNoRows
	}
	return nil
}

func TestRecountAllStaffReportsUpdatedAndPublishes(t *testing.T) {
	repo := &fakeAggregateRepo{staffUpdated: 7}
	dispatcher := events.NewInMemoryDispatcher()
	var received []events.Event
	dispatcher.Subscribe(events.EventRecountCompleted, func(ctx context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})
	svc := NewRecountService(repo, dispatcher, zap.NewNop())

	updated, err := svc.RecountAllStaff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated)
	require.Len(t, received, 1)
	payload, ok := received[0].Payload.(events.RecountCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, "staff", payload.Scope)
	assert.Equal(t, int64(7), payload.Updated)
}

func TestRecountIsRepeatable(t *testing.T) {
	repo := &fakeAggregateRepo{staffUpdated: 3}
	svc := NewRecountService(repo, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		updated, err := svc.RecountAllStaff(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated)
	}
	assert.Equal(t, 3, repo.staffRuns)
}

func TestRecountOneStaffNotFound(t *testing.T) {
	repo := &fakeAggregateRepo{knownStaff: map[int64]bool{1: true}}
	svc := NewRecountService(repo, nil, zap.NewNop())

	require.NoError(t, svc.RecountStaffMember(context.Background(), 1))

	err := svc.RecountStaffMember(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRecountOneLocationNotFound(t *testing.T) {
	repo := &fakeAggregateRepo{knownLocations: map[int64]bool{5: true}}
	svc := NewRecountService(repo, nil, zap.NewNop())

	require.NoError(t, svc.RecountLocation(context.Background(), 5))

	err := svc.RecountLocation(context.Background(), 6)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
