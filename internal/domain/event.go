package domain

import (
	"context"
	"time"
)

// Event is a scheduled gathering owned by one organizer.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	EventDate   time.Time `json:"event_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title string, description *string, location string, capacity int, eventDate time.Time, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		Capacity:    capacity,
		EventDate:   eventDate,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// DescriptionText returns the description or an empty string.
func (e *Event) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// EventPatch holds optional event fields for an update; nil fields are unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	Capacity    *int
	EventDate   *time.Time
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil && p.Capacity == nil && p.EventDate == nil
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListByOwnerID returns the owner's events ordered by event date ascending.
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	// ListByOwnerBetween returns the owner's events with from <= event_date < to.
	ListByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*Event, error)
	// ListUpcomingByOwner returns up to limit events with event_date >= now.
	ListUpcomingByOwner(ctx context.Context, ownerID string, now time.Time, limit int) ([]*Event, error)
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, error)
}

// EventOverview bundles an event with its participants and derived statistics.
type EventOverview struct {
	Event        *Event         `json:"event"`
	Participants []*Participant `json:"participants"`
	Stats        EventStats     `json:"stats"`
}

// EventService defines the organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, caller Identity, event *Event) error
	ListEvents(ctx context.Context, caller Identity) ([]*Event, error)
	ListUpcoming(ctx context.Context, caller Identity, limit int) ([]*Event, error)
	ListEventsBetween(ctx context.Context, caller Identity, from, to time.Time) ([]*Event, error)
	GetEventOverview(ctx context.Context, caller Identity, eventID string) (*EventOverview, error)
	UpdateEvent(ctx context.Context, caller Identity, eventID string, patch EventPatch) (*Event, error)
}
