package dto

import "time"

// StaffRequest is the create/update payload for a staff member. Aggregate
// columns are never part of it.
type StaffRequest struct {
	DNI    string  `json:"dni"`
	Name   string  `json:"name"`
	Phone  *string `json:"phone"`
	Image  *string `json:"image"`
	RoleID int64   `json:"rol_id"`
}

// StaffResponse is a staff member with their duty aggregates.
type StaffResponse struct {
	ID               int64     `json:"id"`
	DNI              string    `json:"dni"`
	Name             string    `json:"name"`
	Phone            *string   `json:"phone"`
	Image            *string   `json:"image"`
	RoleID           int64     `json:"rol_id"`
	RoleName         string    `json:"rol_name"`
	TotalAssignments int       `json:"total_assignments"`
	LastGuard        *string   `json:"last_guard"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StaffListResponse is one page of staff with the total row count.
type StaffListResponse struct {
	Staff []StaffResponse `json:"staff"`
	Total int             `json:"total"`
}
