package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventmanager/internal/domain"
)

// ownedEvent loads the event and checks that caller created it.
// Events owned by someone else are reported as ErrForbidden.
func ownedEvent(ctx context.Context, repo domain.EventRepository, caller domain.Identity, eventID string) (*domain.Event, error) {
	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	if eventID == "" {
		return nil, domain.ErrNotFound
	}
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != caller.UserID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

// eventParticipant loads a participant and checks it belongs to eventID.
func eventParticipant(ctx context.Context, repo domain.ParticipantRepository, eventID, participantID string) (*domain.Participant, error) {
	p, err := repo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if p.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// publish sends a change to the notifier. Failures only get logged; the write
// that produced the change has already happened.
func publish(ctx context.Context, n domain.ChangeNotifier, logger *slog.Logger, change domain.ParticipantChange) {
	if n == nil {
		return
	}
	if err := n.Publish(ctx, change); err != nil && logger != nil {
		logger.WarnContext(ctx, "publish participant change", "type", change.Type, "event_id", change.EventID, "err", err)
	}
}

func nopLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// hideForeign reports events owned by another organizer as missing.
func hideForeign(err error) error {
	if errors.Is(err, domain.ErrForbidden) {
		return domain.ErrNotFound
	}
	return err
}
