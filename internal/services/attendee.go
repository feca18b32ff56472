package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

type attendeeService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	qr              domain.QREncoder
	notifier        domain.ChangeNotifier
	baseURL         string
	logger          *slog.Logger
	contextTimeout  time.Duration
}

// NewAttendeeService creates the AttendeeService used by invitees holding a token.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	qr domain.QREncoder,
	notifier domain.ChangeNotifier,
	baseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		qr:              qr,
		notifier:        notifier,
		baseURL:         baseURL,
		logger:          nopLogger(logger),
		contextTimeout:  timeout,
	}
}

func (s *attendeeService) GetInvitation(ctx context.Context, token string) (*domain.ParticipantWithEvent, error) {
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
	return &domain.ParticipantWithEvent{Participant: p, Event: event}, nil
}

// Respond records the invitee's RSVP. The current status is not checked, so a
// participant may change an earlier answer.
func (s *attendeeService) Respond(ctx context.Context, token string, response domain.Status) (*domain.ParticipantWithEvent, error) {
	if !response.IsRSVP() {
		return nil, fmt.Errorf("%w: response must be %q or %q", domain.ErrInvalidInput, domain.StatusAccepted, domain.StatusDeclined)
	}
	inv, err := s.GetInvitation(ctx, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.participantRepo.UpdateStatus(ctx, inv.Participant.ID, response, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("update participant status: %w", err)
	}
	publish(ctx, s.notifier, s.logger, domain.ParticipantChange{Type: domain.ChangeUpdate, EventID: updated.EventID, Participant: updated})
	return &domain.ParticipantWithEvent{Participant: updated, Event: inv.Event}, nil
}

func (s *attendeeService) QRCode(ctx context.Context, token string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := participantByToken(ctx, s.participantRepo, token)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.PNG(checkInPayload(s.baseURL, p))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// participantByToken resolves an invitation token, mapping every lookup miss to
// ErrInvalidToken.
func participantByToken(ctx context.Context, repo domain.ParticipantRepository, token string) (*domain.Participant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	p, err := repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("get participant by token: %w", err)
	}
	return p, nil
}
