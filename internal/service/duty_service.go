package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/guard-duty-service/internal/domain"
	"github.com/spec-kit/guard-duty-service/internal/events"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// DutyService owns every guard duty mutation. All writes to the staff and
// location aggregates flow through the single transaction opened here, which
// is what keeps total_assignments and last_guard consistent with the duty set
// under concurrent mutations.
type DutyService struct {
	duties     repository.DutyStore
	staff      repository.StaffRepository
	locations  repository.LocationRepository
	roles      repository.RoleRepository
	dispatcher events.Dispatcher
}

// DutyDependencies bundles repositories for the duty service.
type DutyDependencies struct {
	DutyStore    repository.DutyStore
	StaffRepo    repository.StaffRepository
	LocationRepo repository.LocationRepository
	RoleRepo     repository.RoleRepository
	Dispatcher   events.Dispatcher
}

// DutyInput describes a duty create/update payload.
type DutyInput struct {
	AssignedDate    time.Time
	AssignedStaffID int64
	ActualStaffID   *int64
	LocationID      int64
	RoleID          int64
	Notes           *string
}

// NewDutyService constructs the service.
func NewDutyService(deps DutyDependencies) *DutyService {
	return &DutyService{
		duties:     deps.DutyStore,
		staff:      deps.StaffRepo,
		locations:  deps.LocationRepo,
		roles:      deps.RoleRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateDuty inserts a duty and applies the insert-path aggregate updates:
// counters go up by one and last_guard extends only when the new date is
// later than the stored maximum. A second duty for the same location and day
// is rejected with a conflict.
func (s *DutyService) CreateDuty(ctx context.Context, input DutyInput) (*domain.DutyWithRelations, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	duty := &domain.GuardDuty{
		AssignedDate:    domain.NormalizeDate(input.AssignedDate),
		AssignedStaffID: input.AssignedStaffID,
		ActualStaffID:   input.ActualStaffID,
		LocationID:      input.LocationID,
		RoleID:          input.RoleID,
		Notes:           input.Notes,
	}

	err := s.duties.WithinTx(ctx, func(tx repository.DutyTx) error {
		occupied, err := tx.DutyExistsOn(ctx, duty.LocationID, duty.AssignedDate, 0)
		if err != nil {
			return err
		}
		if occupied {
			return apperrors.NewConflict("location already has a duty on this date", map[string]any{
				"location_id": duty.LocationID,
				"date":        duty.AssignedDate.Format("2006-01-02"),
			})
		}
		if err := tx.InsertDuty(ctx, duty); err != nil {
			return err
		}
		if err := tx.AdjustStaffTotal(ctx, duty.AssignedStaffID, 1); err != nil {
			return err
		}
		if err := tx.AdjustLocationTotal(ctx, duty.LocationID, 1); err != nil {
			return err
		}
		if err := tx.ExtendStaffLastGuard(ctx, duty.AssignedStaffID, duty.AssignedDate); err != nil {
			return err
		}
		return tx.ExtendLocationLastGuard(ctx, duty.LocationID, duty.AssignedDate)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishDutyEvent(ctx, events.EventDutyCreated, duty, nil, nil)
	created, err := s.duties.GetByID(ctx, duty.ID)
	if err != nil {
		return nil, notFoundOrStore(err, "guard duty", map[string]any{"duty_id": duty.ID})
	}
	return created, nil
}

// UpdateDuty rewrites a duty and reconciles every aggregate it touched.
// Moving a duty off a staff member or location is a decrement, and decrements
// can change which date is the true maximum, so last_guard is fully
// recomputed for each affected entity instead of compare-and-swapped.
func (s *DutyService) UpdateDuty(ctx context.Context, dutyID int64, input DutyInput) (*domain.DutyWithRelations, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	var prevStaffID, prevLocationID *int64
	err := s.duties.WithinTx(ctx, func(tx repository.DutyTx) error {
		existing, err := tx.GetDutyForUpdate(ctx, dutyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("guard duty", map[string]any{"duty_id": dutyID})
			}
			return err
		}

		newDate := domain.NormalizeDate(input.AssignedDate)
		staffChanged := existing.AssignedStaffID != input.AssignedStaffID
		locationChanged := existing.LocationID != input.LocationID
		dateChanged := !domain.SameDay(existing.AssignedDate, newDate)

		if locationChanged || dateChanged {
			occupied, err := tx.DutyExistsOn(ctx, input.LocationID, newDate, dutyID)
			if err != nil {
				return err
			}
			if occupied {
				return apperrors.NewConflict("location already has a duty on this date", map[string]any{
					"location_id": input.LocationID,
					"date":        newDate.Format("2006-01-02"),
				})
			}
		}

		updated := &domain.GuardDuty{
			ID:              dutyID,
			AssignedDate:    newDate,
			AssignedStaffID: input.AssignedStaffID,
			ActualStaffID:   input.ActualStaffID,
			LocationID:      input.LocationID,
			RoleID:          input.RoleID,
			Notes:           input.Notes,
		}
		if err := tx.UpdateDuty(ctx, updated); err != nil {
			return err
		}

		if staffChanged {
			oldStaff := existing.AssignedStaffID
			prevStaffID = &oldStaff
			if err := tx.AdjustStaffTotal(ctx, oldStaff, -1); err != nil {
				return err
			}
			if err := tx.AdjustStaffTotal(ctx, input.AssignedStaffID, 1); err != nil {
				return err
			}
			if err := tx.RecomputeStaffLastGuard(ctx, oldStaff); err != nil {
				return err
			}
			if err := tx.RecomputeStaffLastGuard(ctx, input.AssignedStaffID); err != nil {
				return err
			}
		} else if dateChanged {
			if err := tx.RecomputeStaffLastGuard(ctx, input.AssignedStaffID); err != nil {
				return err
			}
		}

		if locationChanged {
			oldLocation := existing.LocationID
			prevLocationID = &oldLocation
			if err := tx.AdjustLocationTotal(ctx, oldLocation, -1); err != nil {
				return err
			}
			if err := tx.AdjustLocationTotal(ctx, input.LocationID, 1); err != nil {
				return err
			}
			if err := tx.RecomputeLocationLastGuard(ctx, oldLocation); err != nil {
				return err
			}
			if err := tx.RecomputeLocationLastGuard(ctx, input.LocationID); err != nil {
				return err
			}
		} else if dateChanged {
			if err := tx.RecomputeLocationLastGuard(ctx, input.LocationID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	duty := &domain.GuardDuty{
		ID:              dutyID,
		AssignedDate:    domain.NormalizeDate(input.AssignedDate),
		AssignedStaffID: input.AssignedStaffID,
		LocationID:      input.LocationID,
	}
	s.publishDutyEvent(ctx, events.EventDutyUpdated, duty, prevStaffID, prevLocationID)
	updated, err := s.duties.GetByID(ctx, dutyID)
	if err != nil {
		return nil, notFoundOrStore(err, "guard duty", map[string]any{"duty_id": dutyID})
	}
	return updated, nil
}

// DeleteDuty removes a duty and applies the decrement-path aggregate updates,
// recomputing last_guard for the affected staff and location over the
// remaining duties.
func (s *DutyService) DeleteDuty(ctx context.Context, dutyID int64) error {
	var deleted *domain.GuardDuty
	err := s.duties.WithinTx(ctx, func(tx repository.DutyTx) error {
		existing, err := tx.GetDutyForUpdate(ctx, dutyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("guard duty", map[string]any{"duty_id": dutyID})
			}
			return err
		}
		if _, err := tx.DeleteDuty(ctx, dutyID); err != nil {
			return err
		}
		if err := tx.AdjustStaffTotal(ctx, existing.AssignedStaffID, -1); err != nil {
			return err
		}
		if err := tx.AdjustLocationTotal(ctx, existing.LocationID, -1); err != nil {
			return err
		}
		if err := tx.RecomputeStaffLastGuard(ctx, existing.AssignedStaffID); err != nil {
			return err
		}
		if err := tx.RecomputeLocationLastGuard(ctx, existing.LocationID); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishDutyEvent(ctx, events.EventDutyDeleted, deleted, nil, nil)
	return nil
}

// GetDuty returns one duty with its related display fields.
func (s *DutyService) GetDuty(ctx context.Context, dutyID int64) (*domain.DutyWithRelations, error) {
	duty, err := s.duties.GetByID(ctx, dutyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("guard duty", map[string]any{"duty_id": dutyID})
		}
		return nil, apperrors.MapError(err)
	}
	return duty, nil
}

// ListMonth returns all duties of one calendar month, optionally scoped to a
// location, ordered by date.
func (s *DutyService) ListMonth(ctx context.Context, year int, month time.Month, locationID *int64) ([]domain.DutyWithRelations, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	duties, err := s.duties.ListForRange(ctx, start, end, locationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return duties, nil
}

// ListForStaff returns the paginated duty history of one staff member,
// resolved by numeric id or DNI, covering duties served as assigned or
// actual staff.
func (s *DutyService) ListForStaff(ctx context.Context, dniOrID string, params repository.HistoryParams) ([]domain.DutyWithRelations, int, error) {
	staff, err := s.resolveStaff(ctx, dniOrID)
	if err != nil {
		return nil, 0, err
	}
	duties, total, err := s.duties.ListForStaff(ctx, staff.ID, params)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return duties, total, nil
}

// ListForLocation returns the paginated duty history of one location.
func (s *DutyService) ListForLocation(ctx context.Context, locationID int64, params repository.HistoryParams) ([]domain.DutyWithRelations, int, error) {
	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperrors.NewNotFound("location", map[string]any{"location_id": locationID})
		}
		return nil, 0, apperrors.MapError(err)
	}
	duties, total, err := s.duties.ListForLocation(ctx, locationID, params)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return duties, total, nil
}

func (s *DutyService) resolveStaff(ctx context.Context, dniOrID string) (*domain.Staff, error) {
	var staff *domain.Staff
	var err error
	if id, parseErr := strconv.ParseInt(dniOrID, 10, 64); parseErr == nil {
		staff, err = s.staff.GetByID(ctx, id)
	} else {
		staff, err = s.staff.GetByDNI(ctx, dniOrID)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff": dniOrID})
		}
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// validateInput rejects malformed payloads and dangling references before
// any transaction opens, per the error taxonomy: validation and not-found
// never leave side effects.
func (s *DutyService) validateInput(ctx context.Context, input DutyInput) error {
	if input.AssignedDate.IsZero() {
		return apperrors.NewValidationError("assigned_date required", nil)
	}
	if input.AssignedStaffID <= 0 || input.LocationID <= 0 || input.RoleID <= 0 {
		return apperrors.NewValidationError("assigned_staff_id, location_id and rol_id required", nil)
	}

	if _, err := s.staff.GetByID(ctx, input.AssignedStaffID); err != nil {
		return notFoundOrStore(err, "staff", map[string]any{"staff_id": input.AssignedStaffID})
	}
	if input.ActualStaffID != nil {
		if _, err := s.staff.GetByID(ctx, *input.ActualStaffID); err != nil {
			return notFoundOrStore(err, "staff", map[string]any{"staff_id": *input.ActualStaffID})
		}
	}
	if _, err := s.locations.GetByID(ctx, input.LocationID); err != nil {
		return notFoundOrStore(err, "location", map[string]any{"location_id": input.LocationID})
	}
	if _, err := s.roles.GetByID(ctx, input.RoleID); err != nil {
		return notFoundOrStore(err, "role", map[string]any{"rol_id": input.RoleID})
	}
	return nil
}

func notFoundOrStore(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

func (s *DutyService) publishDutyEvent(ctx context.Context, eventType events.EventType, duty *domain.GuardDuty, prevStaffID, prevLocationID *int64) {
	if s.dispatcher == nil || duty == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: events.DutyMutationPayload{
			DutyID:             duty.ID,
			AssignedDate:       duty.AssignedDate,
			AssignedStaffID:    duty.AssignedStaffID,
			LocationID:         duty.LocationID,
			PreviousStaffID:    prevStaffID,
			PreviousLocationID: prevLocationID,
		},
	})
}
