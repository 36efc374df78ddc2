package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/guard-duty-service/internal/domain"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeAgg struct {
	total int
	last  *time.Time
}

type dutyState struct {
	duties    map[int64]*domain.GuardDuty
	staff     map[int64]*fakeAgg
	locations map[int64]*fakeAgg
	nextID    int64
}

func newDutyState() *dutyState {
	return &dutyState{
		duties:    map[int64]*domain.GuardDuty{},
		staff:     map[int64]*fakeAgg{},
		locations: map[int64]*fakeAgg{},
		nextID:    1,
	}
}

func (s *dutyState) clone() *dutyState {
	out := newDutyState()
	out.nextID = s.nextID
	for id, d := range s.duties {
		copied := *d
		out.duties[id] = &copied
	}
	for id, a := range s.staff {
		copied := *a
		out.staff[id] = &copied
	}
	for id, a := range s.locations {
		copied := *a
		out.locations[id] = &copied
	}
	return out
}

func (s *dutyState) addDuty(staffID, locationID int64, date time.Time) *domain.GuardDuty {
	duty := &domain.GuardDuty{
		ID:              s.nextID,
		AssignedDate:    date,
		AssignedStaffID: staffID,
		LocationID:      locationID,
		RoleID:          1,
	}
	s.nextID++
	s.duties[duty.ID] = duty
	return duty
}

// fakeDutyStore applies the same primitives as the SQL store against
// in-memory maps, including rollback on error.
type fakeDutyStore struct {
	state *dutyState
}

func (f *fakeDutyStore) WithinTx(ctx context.Context, fn func(tx repository.DutyTx) error) error {
	snapshot := f.state.clone()
	if err := fn(&fakeDutyTx{state: f.state}); err != nil {
		*f.state = *snapshot
		return err
	}
	return nil
}

func (f *fakeDutyStore) GetByID(ctx context.Context, id int64) (*domain.DutyWithRelations, error) {
	duty, ok := f.state.duties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.DutyWithRelations{GuardDuty: *duty}, nil
}

func (f *fakeDutyStore) ListForStaff(ctx context.Context, staffID int64, params repository.HistoryParams) ([]domain.DutyWithRelations, int, error) {
	var out []domain.DutyWithRelations
	for _, d := range f.state.duties {
		if d.AssignedStaffID == staffID || (d.ActualStaffID != nil && *d.ActualStaffID == staffID) {
			out = append(out, domain.DutyWithRelations{GuardDuty: *d})
		}
	}
	return out, len(out), nil
}

func (f *fakeDutyStore) ListForLocation(ctx context.Context, locationID int64, params repository.HistoryParams) ([]domain.DutyWithRelations, int, error) {
	var out []domain.DutyWithRelations
	for _, d := range f.state.duties {
		if d.LocationID == locationID {
			out = append(out, domain.DutyWithRelations{GuardDuty: *d})
		}
	}
	return out, len(out), nil
}

func (f *fakeDutyStore) ListForRange(ctx context.Context, from, to time.Time, locationID *int64) ([]domain.DutyWithRelations, error) {
	var out []domain.DutyWithRelations
	for _, d := range f.state.duties {
		if d.AssignedDate.Before(from) || d.AssignedDate.After(to) {
			continue
		}
		if locationID != nil && d.LocationID != *locationID {
			continue
		}
		out = append(out, domain.DutyWithRelations{GuardDuty: *d})
	}
	return out, nil
}

type fakeDutyTx struct {
	state *dutyState
}

func (t *fakeDutyTx) InsertDuty(ctx context.Context, duty *domain.GuardDuty) error {
	duty.ID = t.state.nextID
	t.state.nextID++
	copied := *duty
	t.state.duties[duty.ID] = &copied
	return nil
}

func (t *fakeDutyTx) UpdateDuty(ctx context.Context, duty *domain.GuardDuty) error {
	if _, ok := t.state.duties[duty.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *duty
	t.state.duties[duty.ID] = &copied
	return nil
}

func (t *fakeDutyTx) DeleteDuty(ctx context.Context, id int64) (bool, error) {
	_, ok := t.state.duties[id]
	delete(t.state.duties, id)
	return ok, nil
}

func (t *fakeDutyTx) GetDutyForUpdate(ctx context.Context, id int64) (*domain.GuardDuty, error) {
	duty, ok := t.state.duties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *duty
	return &copied, nil
}

func (t *fakeDutyTx) DutyExistsOn(ctx context.Context, locationID int64, date time.Time, excludeID int64) (bool, error) {
	for _, d := range t.state.duties {
		if d.ID != excludeID && d.LocationID == locationID && domain.SameDay(d.AssignedDate, date) {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeDutyTx) AdjustStaffTotal(ctx context.Context, staffID int64, delta int) error {
	agg, ok := t.state.staff[staffID]
	if !ok {
		return pgx.ErrNoRows
	}
	agg.total += delta
	if agg.total < 0 {
		agg.total = 0
	}
	return nil
}

func (t *fakeDutyTx) AdjustLocationTotal(ctx context.Context, locationID int64, delta int) error {
	agg, ok := t.state.locations[locationID]
	if !ok {
		return pgx.ErrNoRows
	}
	agg.total += delta
	if agg.total < 0 {
		agg.total = 0
	}
	return nil
}

func (t *fakeDutyTx) ExtendStaffLastGuard(ctx context.Context, staffID int64, date time.Time) error {
	extend(t.state.staff[staffID], date)
	return nil
}

func (t *fakeDutyTx) ExtendLocationLastGuard(ctx context.Context, locationID int64, date time.Time) error {
	extend(t.state.locations[locationID], date)
	return nil
}

func extend(agg *fakeAgg, date time.Time) {
	normalized := domain.NormalizeDate(date)
	if agg.last == nil || agg.last.Before(normalized) {
		agg.last = &normalized
	}
}

func (t *fakeDutyTx) RecomputeStaffLastGuard(ctx context.Context, staffID int64) error {
	var max *time.Time
	for _, d := range t.state.duties {
		if d.AssignedStaffID != staffID {
			continue
		}
		date := d.AssignedDate
		if max == nil || max.Before(date) {
			max = &date
		}
	}
	t.state.staff[staffID].last = max
	return nil
}

func (t *fakeDutyTx) RecomputeLocationLastGuard(ctx context.Context, locationID int64) error {
	var max *time.Time
	for _, d := range t.state.duties {
		if d.LocationID != locationID {
			continue
		}
		date := d.AssignedDate
		if max == nil || max.Before(date) {
			max = &date
		}
	}
	t.state.locations[locationID].last = max
	return nil
}

type fakeStaffRepo struct {
	items map[int64]*domain.Staff
}

func (f *fakeStaffRepo) Create(ctx context.Context, staff *domain.Staff) error { return nil }
func (f *fakeStaffRepo) Update(ctx context.Context, staff *domain.Staff) error { return nil }
func (f *fakeStaffRepo) Delete(ctx context.Context, id int64) error            { return nil }

func (f *fakeStaffRepo) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	staff, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return staff, nil
}

func (f *fakeStaffRepo) GetByDNI(ctx context.Context, dni string) (*domain.Staff, error) {
	for _, staff := range f.items {
		if staff.DNI == dni {
			return staff, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStaffRepo) List(ctx context.Context, filter repository.StaffFilter) ([]domain.Staff, int, error) {
	return nil, 0, nil
}

type fakeLocationRepo struct {
	items map[int64]*domain.Location
}

func (f *fakeLocationRepo) Create(ctx context.Context, location *domain.Location) error { return nil }
func (f *fakeLocationRepo) Update(ctx context.Context, location *domain.Location) error { return nil }
func (f *fakeLocationRepo) Delete(ctx context.Context, id int64) error                  { return nil }

func (f *fakeLocationRepo) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	location, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return location, nil
}

func (f *fakeLocationRepo) List(ctx context.Context, filter repository.LocationFilter) ([]domain.Location, int, error) {
	return nil, 0, nil
}

type fakeRoleRepo struct {
	items map[int64]*domain.Role
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *domain.Role) error { return nil }
func (f *fakeRoleRepo) Update(ctx context.Context, role *domain.Role) error { return nil }
func (f *fakeRoleRepo) Delete(ctx context.Context, id int64) error          { return nil }

func (f *fakeRoleRepo) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	role, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return role, nil
}

func (f *fakeRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]domain.Role, error) { return nil, nil }

type dutyFixture struct {
	state   *dutyState
	service *DutyService
}

func newDutyFixture() *dutyFixture {
	state := newDutyState()
	staffRepo := &fakeStaffRepo{items: map[int64]*domain.Staff{}}
	locationRepo := &fakeLocationRepo{items: map[int64]*domain.Location{}}
	roleRepo := &fakeRoleRepo{items: map[int64]*domain.Role{1: {ID: 1, Name: "Sergeant"}}}

	for id := int64(1); id <= 3; id++ {
		staffRepo.items[id] = &domain.Staff{ID: id, DNI: "D" + string(rune('0'+id)), Name: "Staff", RoleID: 1}
		state.staff[id] = &fakeAgg{}
		locationRepo.items[id] = &domain.Location{ID: id, Name: "Post"}
		state.locations[id] = &fakeAgg{}
	}

	svc := NewDutyService(DutyDependencies{
		DutyStore:    &fakeDutyStore{state: state},
		StaffRepo:    staffRepo,
		LocationRepo: locationRepo,
		RoleRepo:     roleRepo,
	})
	return &dutyFixture{state: state, service: svc}
}

func (f *dutyFixture) seedDuty(staffID, locationID int64, date time.Time) *domain.GuardDuty {
	duty := f.state.addDuty(staffID, locationID, date)
	f.state.staff[staffID].total++
	extend(f.state.staff[staffID], date)
	f.state.locations[locationID].total++
	extend(f.state.locations[locationID], date)
	return duty
}

func baseInput(staffID, locationID int64, date time.Time) DutyInput {
	return DutyInput{
		AssignedDate:    date,
		AssignedStaffID: staffID,
		LocationID:      locationID,
		RoleID:          1,
	}
}

func TestCreateDutyUpdatesAggregates(t *testing.T) {
	f := newDutyFixture()
	target := day(2024, time.January, 10)

	duty, err := f.service.CreateDuty(context.Background(), baseInput(1, 1, target))
	require.NoError(t, err)
	require.NotNil(t, duty)

	assert.Equal(t, 1, f.state.staff[1].total)
	require.NotNil(t, f.state.staff[1].last)
	assert.True(t, f.state.staff[1].last.Equal(target))

	assert.Equal(t, 1, f.state.locations[1].total)
	require.NotNil(t, f.state.locations[1].last)
	assert.True(t, f.state.locations[1].last.Equal(target))
}

func TestCreateDutyEarlierDateKeepsLastGuard(t *testing.T) {
	f := newDutyFixture()
	f.seedDuty(1, 1, day(2024, time.January, 20))

	_, err := f.service.CreateDuty(context.Background(), baseInput(1, 2, day(2024, time.January, 10)))
	require.NoError(t, err)

	assert.Equal(t, 2, f.state.staff[1].total)
	assert.True(t, f.state.staff[1].last.Equal(day(2024, time.January, 20)), "backfill must not regress last_guard")
}

func TestCreateDutyConflictLeavesNoSideEffects(t *testing.T) {
	f := newDutyFixture()
	target := day(2024, time.March, 3)
	f.seedDuty(1, 1, target)

	_, err := f.service.CreateDuty(context.Background(), baseInput(2, 1, target))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	assert.Equal(t, 0, f.state.staff[2].total)
	assert.Equal(t, 1, f.state.locations[1].total)
	assert.Len(t, f.state.duties, 1)
}

func TestCreateDutyValidation(t *testing.T) {
	f := newDutyFixture()

	_, err := f.service.CreateDuty(context.Background(), DutyInput{AssignedStaffID: 1, LocationID: 1, RoleID: 1})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	_, err = f.service.CreateDuty(context.Background(), baseInput(99, 1, day(2024, time.April, 1)))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	assert.Empty(t, f.state.duties)
}

func TestUpdateDutyReassignRecomputesBothStaff(t *testing.T) {
	f := newDutyFixture()
	f.seedDuty(1, 1, day(2024, time.January, 5))
	moved := f.seedDuty(1, 2, day(2024, time.January, 12))

	_, err := f.service.UpdateDuty(context.Background(), moved.ID, baseInput(2, 2, day(2024, time.January, 12)))
	require.NoError(t, err)

	assert.Equal(t, 1, f.state.staff[1].total)
	assert.True(t, f.state.staff[1].last.Equal(day(2024, time.January, 5)), "old staff must fall back to remaining maximum")

	assert.Equal(t, 1, f.state.staff[2].total)
	assert.True(t, f.state.staff[2].last.Equal(day(2024, time.January, 12)))
}

func TestUpdateDutyDateChangeRecomputes(t *testing.T) {
	f := newDutyFixture()
	duty := f.seedDuty(1, 1, day(2024, time.January, 20))

	_, err := f.service.UpdateDuty(context.Background(), duty.ID, baseInput(1, 1, day(2024, time.January, 8)))
	require.NoError(t, err)

	assert.Equal(t, 1, f.state.staff[1].total)
	assert.True(t, f.state.staff[1].last.Equal(day(2024, time.January, 8)), "pulling the only duty earlier must move last_guard back")
	assert.True(t, f.state.locations[1].last.Equal(day(2024, time.January, 8)))
}

func TestUpdateDutyConflictOnMove(t *testing.T) {
	f := newDutyFixture()
	f.seedDuty(1, 2, day(2024, time.February, 1))
	duty := f.seedDuty(2, 1, day(2024, time.February, 1))

	_, err := f.service.UpdateDuty(context.Background(), duty.ID, baseInput(2, 2, day(2024, time.February, 1)))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	assert.Equal(t, int64(1), f.state.duties[duty.ID].LocationID)
	assert.Equal(t, 1, f.state.locations[1].total)
	assert.Equal(t, 1, f.state.locations[2].total)
}

func TestUpdateDutyNotFound(t *testing.T) {
	f := newDutyFixture()

	_, err := f.service.UpdateDuty(context.Background(), 42, baseInput(1, 1, day(2024, time.May, 1)))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteDutyResetsAggregates(t *testing.T) {
	f := newDutyFixture()
	duty := f.seedDuty(1, 1, day(2024, time.June, 15))

	require.NoError(t, f.service.DeleteDuty(context.Background(), duty.ID))

	assert.Empty(t, f.state.duties)
	assert.Equal(t, 0, f.state.staff[1].total)
	assert.Nil(t, f.state.staff[1].last)
	assert.Equal(t, 0, f.state.locations[1].total)
	assert.Nil(t, f.state.locations[1].last)
}

func TestDeleteDutyKeepsRemainingAggregates(t *testing.T) {
	f := newDutyFixture()
	f.seedDuty(1, 1, day(2024, time.June, 10))
	latest := f.seedDuty(1, 2, day(2024, time.June, 20))

	require.NoError(t, f.service.DeleteDuty(context.Background(), latest.ID))

	assert.Equal(t, 1, f.state.staff[1].total)
	assert.True(t, f.state.staff[1].last.Equal(day(2024, time.June, 10)))
}

func TestDeleteDutyNotFound(t *testing.T) {
	f := newDutyFixture()

	err := f.service.DeleteDuty(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateThenDeleteRoundTrip(t *testing.T) {
	f := newDutyFixture()

	duty, err := f.service.CreateDuty(context.Background(), baseInput(3, 3, day(2024, time.July, 4)))
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteDuty(context.Background(), duty.ID))

	assert.Equal(t, 0, f.state.staff[3].total)
	assert.Nil(t, f.state.staff[3].last)
	assert.Equal(t, 0, f.state.locations[3].total)
	assert.Nil(t, f.state.locations[3].last)
}

func TestListForStaffResolvesByDNI(t *testing.T) {
	f := newDutyFixture()
	f.seedDuty(2, 1, day(2024, time.August, 1))

	duties, total, err := f.service.ListForStaff(context.Background(), "D2", repository.HistoryParams{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, duties, 1)
	assert.Equal(t, int64(2), duties[0].AssignedStaffID)
}

func TestListForStaffUnknown(t *testing.T) {
	f := newDutyFixture()

	_, _, err := f.service.ListForStaff(context.Background(), "nope", repository.HistoryParams{})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// vanishingDutyStore commits writes normally but reports every read-back
// as missing, as if the row disappeared between transaction and fetch.
type vanishingDutyStore struct {
	*fakeDutyStore
}

func (f *vanishingDutyStore) GetByID(ctx context.Context, id int64) (*domain.DutyWithRelations, error) {
	return nil, pgx.ErrNoRows
}

func TestDutyReadBackMapsStoreErrors(t *testing.T) {
	state := newDutyState()
	staffRepo := &fakeStaffRepo{items: map[int64]*domain.Staff{1: {ID: 1, DNI: "D1", Name: "Staff", RoleID: 1}}}
	locationRepo := &fakeLocationRepo{items: map[int64]*domain.Location{1: {ID: 1, Name: "Post"}}}
	roleRepo := &fakeRoleRepo{items: map[int64]*domain.Role{1: {ID: 1, Name: "Sergeant"}}}
	state.staff[1] = &fakeAgg{}
	state.locations[1] = &fakeAgg{}

	svc := NewDutyService(DutyDependencies{
		DutyStore:    &vanishingDutyStore{&fakeDutyStore{state: state}},
		StaffRepo:    staffRepo,
		LocationRepo: locationRepo,
		RoleRepo:     roleRepo,
	})

	_, err := svc.CreateDuty(context.Background(), baseInput(1, 1, day(2024, time.March, 5)))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	duty := state.addDuty(1, 1, day(2024, time.March, 6))
	_, err = svc.UpdateDuty(context.Background(), duty.ID, baseInput(1, 1, day(2024, time.March, 7)))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
