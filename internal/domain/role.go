package domain

import "time"

// Role is a staff rank. Duties record the role they are performed under.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
