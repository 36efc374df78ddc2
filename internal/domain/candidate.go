package domain

import "time"

// Candidate is the read model produced by the candidate ranking query: a
// staff member free on the target date, with the aggregates the fairness
// ordering uses and the month load computed at read time.
type Candidate struct {
	ID               int64
	DNI              string
	Name             string
	RoleID           int64
	RoleName         string
	TotalAssignments int
	LastGuard        *time.Time
	MonthCount       int
}
