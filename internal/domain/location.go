package domain

import "time"

// Location is a guarded site. Its aggregates follow the same invariant as
// Staff, counted over duties at the location.
type Location struct {
	ID               int64
	Name             string
	Image            *string
	TotalAssignments int
	LastGuard        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
