package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanager/internal/domain"
)

const (
	// invitationDateLayout renders e.g. "Friday, March 6, 2026 7:30 PM".
	invitationDateLayout  = "Monday, January 2, 2006 3:04 PM"
	fallbackOrganizerName = "Event Organizer"
)

type invitationService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	profileRepo     domain.ProfileRepository
	emailService    domain.EmailService
	notifier        domain.ChangeNotifier
	baseURL         string
	logger          *slog.Logger
	contextTimeout  time.Duration
}

// NewInvitationService creates the bulk InvitationService. A nil emailService means
// no delivery credential is configured and every call fails with ErrMissingAPIKey.
func NewInvitationService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	profileRepo domain.ProfileRepository,
	emailService domain.EmailService,
	notifier domain.ChangeNotifier,
	baseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		profileRepo:     profileRepo,
		emailService:    emailService,
		notifier:        notifier,
		baseURL:         baseURL,
		logger:          nopLogger(logger),
		contextTimeout:  timeout,
	}
}

func (s *invitationService) SendInvitations(ctx context.Context, caller domain.Identity, eventID string, participantIDs []string) (*domain.InvitationReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.emailService == nil {
		return nil, domain.ErrMissingAPIKey
	}
	if eventID == "" || len(participantIDs) == 0 {
		return nil, fmt.Errorf("%w: missing eventId or participantIds", domain.ErrInvalidInput)
	}
	event, err := ownedEvent(ctx, s.eventRepo, caller, eventID)
	if err != nil {
		return nil, hideForeign(err)
	}

	candidates, err := s.participantRepo.ListByIDs(ctx, eventID, participantIDs)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	pending := make([]*domain.Participant, 0, len(candidates))
	for _, p := range candidates {
		if p.Status == domain.StatusPending {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return nil, domain.ErrNoMatchingParticipants
	}

	organizer := s.organizerName(ctx, caller)
	report := &domain.InvitationReport{
		Succeeded: []domain.InvitationSuccess{},
		Failed:    []domain.InvitationFailure{},
	}
	domainFailures := 0
	for _, p := range pending {
		invitationURL := domain.InvitationURL(s.baseURL, p.InvitationToken)
		data := &domain.InvitationEmailData{
			Email:            p.Email,
			ParticipantName:  p.Name,
			OrganizerName:    organizer,
			EventTitle:       event.Title,
			EventDescription: event.DescriptionText(),
			EventLocation:    event.Location,
			EventDate:        event.EventDate.Format(invitationDateLayout),
			InvitationURL:    invitationURL,
		}
		if err := s.emailService.SendInvitation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "invitation delivery failed", "event_id", eventID, "participant_id", p.ID, "email", p.Email, "err", err)
			if domain.IsDomainVerificationFailure(err) {
				domainFailures++
			}
			report.Failed = append(report.Failed, domain.InvitationFailure{ParticipantID: p.ID, Email: p.Email, Error: err.Error()})
			continue
		}

		now := time.Now()
		if err := s.participantRepo.UpdateQRCodeData(ctx, p.ID, invitationURL, now); err != nil {
			s.logger.ErrorContext(ctx, "store check-in payload after send", "participant_id", p.ID, "err", err)
		} else {
			p.QRCodeData = invitationURL
			p.UpdatedAt = now
			publish(ctx, s.notifier, s.logger, domain.ParticipantChange{Type: domain.ChangeUpdate, EventID: eventID, Participant: p})
		}
		report.Succeeded = append(report.Succeeded, domain.InvitationSuccess{ParticipantID: p.ID, Email: p.Email})
	}

	report.DomainVerificationRequired = len(report.Succeeded) == 0 && domainFailures == len(report.Failed)
	return report, nil
}

// organizerName picks the name shown as the inviter: profile name, profile email,
// the caller's email, then a generic label.
func (s *invitationService) organizerName(ctx context.Context, caller domain.Identity) string {
	if s.profileRepo != nil {
		p, err := s.profileRepo.GetByID(ctx, caller.UserID)
		switch {
		case err == nil:
			if name := p.DisplayName(); name != "" {
				return name
			}
		case !errors.Is(err, domain.ErrNotFound):
			s.logger.WarnContext(ctx, "load organizer profile", "user_id", caller.UserID, "err", err)
		}
	}
	if caller.Email != "" {
		return caller.Email
	}
	return fallbackOrganizerName
}
