package dto

import "time"

// LocationRequest is the create/update payload for a location.
type LocationRequest struct {
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// LocationResponse is a location with its duty aggregates.
type LocationResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Image            *string   `json:"image"`
	TotalAssignments int       `json:"total_assignments"`
	LastGuard        *string   `json:"last_guard"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LocationListResponse is one page of locations with the total row count.
type LocationListResponse struct {
	Locations []LocationResponse `json:"locations"`
	Total     int                `json:"total"`
}
