package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanager/internal/domain"
)

type checkInService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	notifier        domain.ChangeNotifier
	logger          *slog.Logger
	contextTimeout  time.Duration
}

// NewCheckInService creates a CheckInService.
func NewCheckInService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	notifier domain.ChangeNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CheckInService {
	return &checkInService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
		logger:          nopLogger(logger),
		contextTimeout:  timeout,
	}
}

func (s *checkInService) CheckIn(ctx context.Context, caller domain.Identity, payload string) (*domain.CheckInResult, error) {
	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	token, err := domain.ParseCheckInToken(payload)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, token, func(e *domain.Event) bool { return e.CreatedBy == caller.UserID })
}

func (s *checkInService) SelfCheckIn(ctx context.Context, token string) (*domain.CheckInResult, error) {
	parsed, err := domain.ParseCheckInToken(token)
	if err != nil {
		// A token that cannot be parsed cannot match a participant either.
		return nil, domain.ErrInvalidToken
	}
	return s.checkIn(ctx, parsed, func(*domain.Event) bool { return true })
}

// checkIn applies the check-in rules in order: unknown token, already checked in,
// not accepted, then the transition to checked-in.
func (s *checkInService) checkIn(ctx context.Context, token string, allowed func(*domain.Event) bool) (*domain.CheckInResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := participantByToken(ctx, s.participantRepo, token)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, p.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !allowed(event) {
		return nil, domain.ErrInvalidToken
	}

	name := p.DisplayName()
	switch p.Status {
	case domain.StatusCheckedIn:
		return domain.NewCheckInResult(p, event, fmt.Sprintf("%s is already checked in!", name)), domain.ErrAlreadyCheckedIn
	case domain.StatusAccepted:
	default:
		msg := fmt.Sprintf("Participant must accept invitation before checking in. Current status: %s", p.Status)
		return domain.NewCheckInResult(p, event, msg), domain.ErrNotAccepted
	}

	updated, err := s.participantRepo.UpdateStatus(ctx, p.ID, domain.StatusCheckedIn, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("check in participant: %w", err)
	}
	publish(ctx, s.notifier, s.logger, domain.ParticipantChange{Type: domain.ChangeUpdate, EventID: updated.EventID, Participant: updated})
	s.logger.InfoContext(ctx, "participant checked in", "event_id", updated.EventID, "participant_id", updated.ID)
	return domain.NewCheckInResult(updated, event, fmt.Sprintf("Successfully checked in %s!", name)), nil
}
