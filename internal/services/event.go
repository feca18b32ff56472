package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

const (
	defaultUpcomingLimit = 3
	maxUpcomingLimit     = 50
)

type eventService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	profiles        domain.ProfileService
	contextTimeout  time.Duration
	now             func() time.Time
}

// NewEventService creates an EventService. Creating an event ensures the organizer
// profile exists first.
func NewEventService(eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	profiles domain.ProfileService,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		profiles:        profiles,
		contextTimeout:  timeout,
		now:             time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, caller domain.Identity, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller.Anonymous() {
		return domain.ErrUnauthorized
	}
	event.Title = strings.TrimSpace(event.Title)
	event.Location = strings.TrimSpace(event.Location)
	if event.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if event.Location == "" {
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	}
	if event.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}
	if event.EventDate.IsZero() {
		return fmt.Errorf("%w: event date is required", domain.ErrInvalidInput)
	}

	if _, err := s.profiles.EnsureProfile(ctx, caller); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}

	now := s.now()
	event.CreatedBy = caller.UserID
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) ListEvents(ctx context.Context, caller domain.Identity) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	events, err := s.eventRepo.ListByOwnerID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) ListUpcoming(ctx context.Context, caller domain.Identity, limit int) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	events, err := s.eventRepo.ListUpcomingByOwner(ctx, caller.UserID, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) ListEventsBetween(ctx context.Context, caller domain.Identity, from, to time.Time) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrInvalidInput)
	}
	events, err := s.eventRepo.ListByOwnerBetween(ctx, caller.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events between: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) GetEventOverview(ctx context.Context, caller domain.Identity, eventID string) (*domain.EventOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := ownedEvent(ctx, s.eventRepo, caller, eventID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if participants == nil {
		participants = []*domain.Participant{}
	}
	return &domain.EventOverview{
		Event:        event,
		Participants: participants,
		Stats:        domain.Summarize(event.Capacity, participants),
	}, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, caller domain.Identity, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		patch.Title = &t
	}
	if patch.Location != nil {
		l := strings.TrimSpace(*patch.Location)
		if l == "" {
			return nil, fmt.Errorf("%w: location cannot be empty", domain.ErrInvalidInput)
		}
		patch.Location = &l
	}
	if patch.Capacity != nil && *patch.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}
	if patch.EventDate != nil && patch.EventDate.IsZero() {
		return nil, fmt.Errorf("%w: event date cannot be empty", domain.ErrInvalidInput)
	}

	if _, err := ownedEvent(ctx, s.eventRepo, caller, eventID); err != nil {
		return nil, err
	}
	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}
