package realtime

import (
	"context"
	"errors"

	"eventmanager/internal/domain"
)

// Fanout publishes each change to every notifier in order and joins their errors.
type Fanout []domain.ChangeNotifier

func (f Fanout) Publish(ctx context.Context, change domain.ParticipantChange) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
