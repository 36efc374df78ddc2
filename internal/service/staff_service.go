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

// StaffService manages staff registration and profiles. It never writes the
// aggregate columns; those belong to the duty transaction and recounts.
type StaffService struct {
	staff repository.StaffRepository
	roles repository.RoleRepository
}

// NewStaffService constructs the service.
func NewStaffService(staff repository.StaffRepository, roles repository.RoleRepository) *StaffService {
	return &StaffService{staff: staff, roles: roles}
}

// StaffInput describes a staff create/update payload.
type StaffInput struct {
	DNI    string
	Name   string
	Phone  *string
	Image  *string
	RoleID int64
}

// RegisterStaff creates a staff member with zeroed aggregates.
func (s *StaffService) RegisterStaff(ctx context.Context, input StaffInput) (*domain.Staff, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	staff := &domain.Staff{
		DNI:    strings.TrimSpace(input.DNI),
		Name:   strings.TrimSpace(input.Name),
		Phone:  input.Phone,
		Image:  input.Image,
		RoleID: input.RoleID,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// UpdateStaff rewrites profile fields only.
func (s *StaffService) UpdateStaff(ctx context.Context, id int64, input StaffInput) (*domain.Staff, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	existing, err := s.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.DNI = strings.TrimSpace(input.DNI)
	existing.Name = strings.TrimSpace(input.Name)
	existing.Phone = input.Phone
	existing.Image = input.Image
	existing.RoleID = input.RoleID
	if err := s.staff.Update(ctx, existing); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.GetStaff(ctx, id)
}

// DeleteStaff removes a staff member.
func (s *StaffService) DeleteStaff(ctx context.Context, id int64) error {
	if err := s.staff.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff", map[string]any{"staff_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetStaff fetches one staff member by id.
func (s *StaffService) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	staff, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// ListStaff returns a filtered staff page with the total count.
func (s *StaffService) ListStaff(ctx context.Context, filter repository.StaffFilter) ([]domain.Staff, int, error) {
	staff, total, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return staff, total, nil
}

func (s *StaffService) validate(ctx context.Context, input StaffInput) error {
	if strings.TrimSpace(input.DNI) == "" || strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("dni and name required", nil)
	}
	if input.RoleID <= 0 {
		return apperrors.NewValidationError("rol_id required", nil)
	}
	if _, err := s.roles.GetByID(ctx, input.RoleID); err != nil {
		return notFoundOrStore(err, "role", map[string]any{"rol_id": input.RoleID})
	}
	return nil
}
