package domain

import "time"

// GuardDuty is one scheduled assignment for a date, staff member, location
// and role. AssignedDate carries day precision only.
type GuardDuty struct {
	ID              int64
	AssignedDate    time.Time
	AssignedStaffID int64
	ActualStaffID   *int64
	LocationID      int64
	RoleID          int64
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DutyWithRelations joins the duty with the display fields of its referenced
// rows, the shape history listings and exports consume.
type DutyWithRelations struct {
	GuardDuty
	AssignedStaffName  string
	AssignedStaffDNI   string
	AssignedStaffPhone *string
	ActualStaffName    *string
	LocationName       string
	RoleName           string
}

// NormalizeDate truncates a timestamp to its UTC calendar day, the canonical
// form for assigned dates and last_guard values.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}
