package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// invitationPathPattern finds the token segment of an invitation link, e.g.
// https://host/invitation/<token> or /invitations/<token>/rsvp.
var invitationPathPattern = regexp.MustCompile(`(?i)invitations?/([0-9a-f-]+)`)

// InvitationURL builds the invitation link for a token under baseURL. The same link
// is the participant's check-in payload.
func InvitationURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/invitation/" + token
}

// ParseCheckInToken extracts an invitation token from a scanned or typed payload.
// The payload may be the bare token or any URL containing /invitation/<token>.
// Anything else fails with ErrMalformedToken.
func ParseCheckInToken(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrMalformedToken
	}
	if !strings.Contains(payload, "/") {
		id, err := uuid.Parse(payload)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a token", ErrMalformedToken, payload)
		}
		return id.String(), nil
	}
	m := invitationPathPattern.FindStringSubmatch(payload)
	if m == nil {
		return "", fmt.Errorf("%w: no invitation token in %q", ErrMalformedToken, payload)
	}
	id, err := uuid.Parse(m[1])
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a token", ErrMalformedToken, m[1])
	}
	return id.String(), nil
}

// CheckInEvent is the event detail shown to the operator after a scan.
type CheckInEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	EventDate time.Time `json:"event_date"`
}

// CheckInResult is the participant snapshot produced by a check-in attempt. It is
// also returned alongside ErrAlreadyCheckedIn and ErrNotAccepted.
type CheckInResult struct {
	Participant *Participant  `json:"participant"`
	Event       *CheckInEvent `json:"event"`
	Message     string        `json:"message"`
}

// NewCheckInResult builds a result for p and its event with the given message.
func NewCheckInResult(p *Participant, e *Event, message string) *CheckInResult {
	res := &CheckInResult{Participant: p, Message: message}
	if e != nil {
		res.Event = &CheckInEvent{ID: e.ID, Title: e.Title, Location: e.Location, EventDate: e.EventDate}
	}
	return res
}

// CheckInService validates check-in payloads and records attendance.
type CheckInService interface {
	// CheckIn is the organizer's scanner path. Participants of events the caller
	// does not own are reported as ErrInvalidToken.
	CheckIn(ctx context.Context, caller Identity, payload string) (*CheckInResult, error)
	// SelfCheckIn is the invitee's own path from the invitation page.
	SelfCheckIn(ctx context.Context, token string) (*CheckInResult, error)
}
