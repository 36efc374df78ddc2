package dto

import "time"

// RoleRequest is the create/update payload for a role.
type RoleRequest struct {
	Name string `json:"name"`
}

// RoleResponse is a staff rank.
type RoleResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
