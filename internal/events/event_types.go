package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDutyCreated      EventType = "duty_created"
	EventDutyUpdated      EventType = "duty_updated"
	EventDutyDeleted      EventType = "duty_deleted"
	EventRecountCompleted EventType = "recount_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DutyMutationPayload carries the entities touched by a duty mutation so
// subscribers can react without re-reading the store.
type DutyMutationPayload struct {
	DutyID          int64     `json:"duty_id"`
	AssignedDate    time.Time `json:"assigned_date"`
	AssignedStaffID int64     `json:"assigned_staff_id"`
	LocationID      int64     `json:"location_id"`
	// PreviousStaffID/PreviousLocationID are set on updates that moved the
	// duty, since their aggregates changed too.
	PreviousStaffID    *int64 `json:"previous_staff_id,omitempty"`
	PreviousLocationID *int64 `json:"previous_location_id,omitempty"`
}

// RecountCompletedPayload reports a finished aggregate rebuild.
type RecountCompletedPayload struct {
	Scope   string `json:"scope"`
	Updated int64  `json:"updated"`
}
