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

type participantService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	tokens          domain.TokenGenerator
	qr              domain.QREncoder
	notifier        domain.ChangeNotifier
	feed            domain.ChangeFeed
	baseURL         string
	logger          *slog.Logger
	contextTimeout  time.Duration
}

// NewParticipantService creates the organizer-facing ParticipantService. baseURL is
// the public origin that invitation links are built on. notifier may be nil.
func NewParticipantService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	tokens domain.TokenGenerator,
	qr domain.QREncoder,
	notifier domain.ChangeNotifier,
	feed domain.ChangeFeed,
	baseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ParticipantService {
	return &participantService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		tokens:          tokens,
		qr:              qr,
		notifier:        notifier,
		feed:            feed,
		baseURL:         baseURL,
		logger:          nopLogger(logger),
		contextTimeout:  timeout,
	}
}

func (s *participantService) AddParticipants(ctx context.Context, caller domain.Identity, eventID string, inputs []domain.ParticipantInput) ([]*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedEvent(ctx, s.eventRepo, caller, eventID); err != nil {
		return nil, hideForeign(err)
	}

	now := time.Now()
	participants := make([]*domain.Participant, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		in = in.Normalize()
		if in.Email == "" {
			continue
		}
		// Repeats within one submission keep the first entry.
		if _, dup := seen[in.Email]; dup {
			continue
		}
		seen[in.Email] = struct{}{}
		token := s.tokens.Generate()
		participants = append(participants, &domain.Participant{
			EventID:         eventID,
			Email:           in.Email,
			Name:            in.Name,
			Status:          domain.StatusPending,
			InvitationToken: token,
			QRCodeData:      domain.InvitationURL(s.baseURL, token),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	if len(participants) == 0 {
		return nil, domain.ErrNoValidParticipants
	}

	if err := s.participantRepo.CreateBatch(ctx, participants); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create participants: %w", err)
	}
	for _, p := range participants {
		publish(ctx, s.notifier, s.logger, domain.ParticipantChange{Type: domain.ChangeInsert, EventID: eventID, Participant: p})
	}
	return participants, nil
}

func (s *participantService) ListParticipants(ctx context.Context, caller domain.Identity, eventID string, filter domain.ParticipantFilter, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	params = params.Normalize()
	if _, err := ownedEvent(ctx, s.eventRepo, caller, eventID); err != nil {
		return nil, 0, hideForeign(err)
	}
	list, total, err := s.participantRepo.ListPage(ctx, eventID, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}
	if list == nil {
		list = []*domain.Participant{}
	}
	return list, total, nil
}

func (s *participantService) SetStatus(ctx context.Context, caller domain.Identity, eventID, participantID string, status domain.Status) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	if _, err := ownedEvent(ctx, s.eventRepo, caller, eventID); err != nil {
		return nil, hideForeign(err)
	}
	if _, err := eventParticipant(ctx, s.participantRepo, eventID, participantID); err != nil {
		return nil, err
	}
	updated, err := s.participantRepo.UpdateStatus(ctx, participantID, status, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update participant status: %w", err)
	}
	publish(ctx, s.notifier, s.logger, domain.ParticipantChange{Type: domain.ChangeUpdate, EventID: eventID, Participant: updated})
	return updated, nil
}

func (s *participantService) DeleteParticipant(ctx context.Context, caller domain.Identity, eventID, participantID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedEvent(ctx, s.eventRepo, caller, eventID); err != nil {
		return hideForeign(err)
	}
	p, err := eventParticipant(ctx, s.participantRepo, eventID, participantID)
	if err != nil {
		return err
	}
	if err := s.participantRepo.Delete(ctx, participantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete participant: %w", err)
	}
	publish(ctx, s.notifier, s.logger, domain.ParticipantChange{Type: domain.ChangeDelete, EventID: eventID, Participant: p})
	return nil
}

func (s *participantService) QRCode(ctx context.Context, caller domain.Identity, eventID, participantID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedEvent(ctx, s.eventRepo, caller, eventID); err != nil {
		return nil, hideForeign(err)
	}
	p, err := eventParticipant(ctx, s.participantRepo, eventID, participantID)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.PNG(checkInPayload(s.baseURL, p))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

func (s *participantService) Subscribe(ctx context.Context, caller domain.Identity, eventID string, onChange func(domain.ParticipantChange)) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.feed == nil {
		return nil, errors.New("participant change feed is not configured")
	}
	if _, err := ownedEvent(ctx, s.eventRepo, caller, eventID); err != nil {
		return nil, hideForeign(err)
	}
	return s.feed.Subscribe(eventID, onChange), nil
}

// checkInPayload returns the stored payload, or rebuilds it from the token for rows
// written before the payload was set.
func checkInPayload(baseURL string, p *domain.Participant) string {
	if p.QRCodeData != "" {
		return p.QRCodeData
	}
	return domain.InvitationURL(baseURL, p.InvitationToken)
}
