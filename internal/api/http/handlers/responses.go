package handlers

import (
	"time"

	"github.com/spec-kit/guard-duty-service/internal/api/dto"
	"github.com/spec-kit/guard-duty-service/internal/domain"
)

const dateLayout = "2006-01-02"

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func dutyResponse(d *domain.DutyWithRelations) dto.DutyResponse {
	return dto.DutyResponse{
		ID:                 d.ID,
		AssignedDate:       d.AssignedDate.Format(dateLayout),
		AssignedStaffID:    d.AssignedStaffID,
		AssignedStaffName:  d.AssignedStaffName,
		AssignedStaffDNI:   d.AssignedStaffDNI,
		AssignedStaffPhone: d.AssignedStaffPhone,
		ActualStaffID:      d.ActualStaffID,
		ActualStaffName:    d.ActualStaffName,
		LocationID:         d.LocationID,
		LocationName:       d.LocationName,
		RoleID:             d.RoleID,
		RoleName:           d.RoleName,
		Notes:              d.Notes,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func dutyResponses(duties []domain.DutyWithRelations) []dto.DutyResponse {
	items := make([]dto.DutyResponse, 0, len(duties))
	for i := range duties {
		items = append(items, dutyResponse(&duties[i]))
	}
	return items
}

func staffResponse(s *domain.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:               s.ID,
		DNI:              s.DNI,
		Name:             s.Name,
		Phone:            s.Phone,
		Image:            s.Image,
		RoleID:           s.RoleID,
		RoleName:         s.RoleName,
		TotalAssignments: s.TotalAssignments,
		LastGuard:        formatDatePtr(s.LastGuard),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func locationResponse(l *domain.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:               l.ID,
		Name:             l.Name,
		Image:            l.Image,
		TotalAssignments: l.TotalAssignments,
		LastGuard:        formatDatePtr(l.LastGuard),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func roleResponse(r *domain.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func candidateResponse(c *domain.Candidate) dto.CandidateResponse {
	return dto.CandidateResponse{
		ID:               c.ID,
		DNI:              c.DNI,
		Name:             c.Name,
		RoleID:           c.RoleID,
		RoleName:         c.RoleName,
		TotalAssignments: c.TotalAssignments,
		LastGuard:        formatDatePtr(c.LastGuard),
		MonthCount:       c.MonthCount,
	}
}
