package domain

import "context"

// ChangeType is the kind of row change on the participants table.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ParticipantChange is pushed to subscribers of an event's participant list.
type ParticipantChange struct {
	Type        ChangeType   `json:"type"`
	EventID     string       `json:"event_id"`
	Participant *Participant `json:"participant"`
}

// ChangeNotifier publishes participant changes to interested parties.
type ChangeNotifier interface {
	Publish(ctx context.Context, change ParticipantChange) error
}

// ChangeFeed lets callers follow changes of one event's participants.
type ChangeFeed interface {
	// Subscribe calls onChange for every change of the event until the returned
	// function is called.
	Subscribe(eventID string, onChange func(ParticipantChange)) (unsubscribe func())
}
