package dto

import "time"

// DutyRequest is the create/update payload for a guard duty. Dates travel as
// YYYY-MM-DD strings.
type DutyRequest struct {
	AssignedDate    string  `json:"assigned_date"`
	AssignedStaffID int64   `json:"assigned_staff_id"`
	ActualStaffID   *int64  `json:"actual_staff_id"`
	LocationID      int64   `json:"location_id"`
	RoleID          int64   `json:"rol_id"`
	Notes           *string `json:"notes"`
}

// DutyResponse is a duty with the display fields of its related rows.
type DutyResponse struct {
	ID                 int64     `json:"id"`
	AssignedDate       string    `json:"assigned_date"`
	AssignedStaffID    int64     `json:"assigned_staff_id"`
	AssignedStaffName  string    `json:"assigned_staff_name"`
	AssignedStaffDNI   string    `json:"assigned_staff_dni"`
	AssignedStaffPhone *string   `json:"assigned_staff_phone"`
	ActualStaffID      *int64    `json:"actual_staff_id"`
	ActualStaffName    *string   `json:"actual_staff_name"`
	LocationID         int64     `json:"location_id"`
	LocationName       string    `json:"location_name"`
	RoleID             int64     `json:"rol_id"`
	RoleName           string    `json:"rol_name"`
	Notes              *string   `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DutyHistoryResponse is one page of duty history with the total row count.
type DutyHistoryResponse struct {
	Duties []DutyResponse `json:"duties"`
	Total  int            `json:"total"`
}

// RecountResponse reports how many rows a recount rewrote.
type RecountResponse struct {
	Updated int64 `json:"updated"`
}
