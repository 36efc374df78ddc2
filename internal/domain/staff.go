package domain

import "time"

// Staff models a guard-duty staff member.
//
// TotalAssignments and LastGuard are denormalized over the guard_duties set:
// TotalAssignments equals the number of duties where the member is the
// assigned staff, LastGuard the maximum assigned date among them (nil when
// none). They are written only by the duty transaction or a recount, never by
// profile edits.
type Staff struct {
	ID               int64
	DNI              string
	Name             string
	Phone            *string
	Image            *string
	RoleID           int64
	RoleName         string
	TotalAssignments int
	LastGuard        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
