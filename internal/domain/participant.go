package domain

import (
	"context"
	"strings"
	"time"
)

// Status is the lifecycle state of a participant.
type Status string

// The four participant statuses. No other values are valid.
const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCheckedIn Status = "checked-in"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusAccepted, StatusDeclined, StatusCheckedIn}

// Valid reports whether s is one of the four statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCheckedIn:
		return true
	}
	return false
}

// Terminal reports whether the workflow has no further transition from s.
func (s Status) Terminal() bool {
	return s == StatusDeclined || s == StatusCheckedIn
}

// IsRSVP reports whether s is a value a participant may choose when responding.
func (s Status) IsRSVP() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// Participant is an invitee of an event.
// swagger:model Participant
type Participant struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	Email           string    `json:"email"`
	Name            string    `json:"name,omitempty"`
	Status          Status    `json:"status"`
	InvitationToken string    `json:"invitation_token"`
	QRCodeData      string    `json:"qr_code_data"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DisplayName returns the participant's name, or the email when no name is set.
func (p *Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// ParticipantInput is one invitee entry submitted by an organizer.
type ParticipantInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Normalize trims the entry and lower-cases the email.
func (in ParticipantInput) Normalize() ParticipantInput {
	return ParticipantInput{
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Name:  strings.TrimSpace(in.Name),
	}
}

// ParticipantFilter narrows a participant listing.
type ParticipantFilter struct {
	Status Status
	Search string
}

// ParticipantWithEvent bundles a participant with its parent event.
type ParticipantWithEvent struct {
	Participant *Participant `json:"participant"`
	Event       *Event       `json:"event"`
}

// ParticipantRepository defines storage operations for participants.
type ParticipantRepository interface {
	// CreateBatch inserts all rows in one statement and fills their IDs.
	// Returns ErrAlreadyRegistered on a duplicate (event_id, email).
	CreateBatch(ctx context.Context, participants []*Participant) error
	GetByID(ctx context.Context, id string) (*Participant, error)
	GetByToken(ctx context.Context, token string) (*Participant, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Participant, error)
	ListPage(ctx context.Context, eventID string, filter ParticipantFilter, params PaginationParams) ([]*Participant, int, error)
	ListByIDs(ctx context.Context, eventID string, ids []string) ([]*Participant, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (*Participant, error)
	UpdateQRCodeData(ctx context.Context, id, qrCodeData string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// TokenGenerator mints invitation tokens.
type TokenGenerator interface {
	Generate() string
}

// QREncoder renders a payload as a PNG QR code.
type QREncoder interface {
	PNG(payload string) ([]byte, error)
}

// ParticipantService defines the organizer-facing participant operations.
type ParticipantService interface {
	AddParticipants(ctx context.Context, caller Identity, eventID string, inputs []ParticipantInput) ([]*Participant, error)
	ListParticipants(ctx context.Context, caller Identity, eventID string, filter ParticipantFilter, params PaginationParams) ([]*Participant, int, error)
	SetStatus(ctx context.Context, caller Identity, eventID, participantID string, status Status) (*Participant, error)
	DeleteParticipant(ctx context.Context, caller Identity, eventID, participantID string) error
	QRCode(ctx context.Context, caller Identity, eventID, participantID string) ([]byte, error)
	// Subscribe registers onChange for participant changes of the event and returns
	// a function that cancels the subscription.
	Subscribe(ctx context.Context, caller Identity, eventID string, onChange func(ParticipantChange)) (func(), error)
}

// AttendeeService defines the operations available to an invitee holding a token.
type AttendeeService interface {
	GetInvitation(ctx context.Context, token string) (*ParticipantWithEvent, error)
	Respond(ctx context.Context, token string, response Status) (*ParticipantWithEvent, error)
	QRCode(ctx context.Context, token string) ([]byte, error)
}
