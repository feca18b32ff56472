package domain

import "errors"

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicate is returned by repositories on a unique-key violation that has no
	// more specific meaning.
	ErrDuplicate = errors.New("duplicate key")
)

// Participant workflow errors.
var (
	ErrNoValidParticipants    = errors.New("no valid participants")
	ErrAlreadyRegistered      = errors.New("one or more participants are already registered for this event")
	ErrNoMatchingParticipants = errors.New("no pending participants found")
	ErrInvalidToken           = errors.New("invalid invitation token")
	ErrMalformedToken         = errors.New("invalid QR code format")
	ErrAlreadyCheckedIn       = errors.New("participant is already checked in")
	ErrNotAccepted            = errors.New("participant must accept the invitation before checking in")
)

// ErrMissingAPIKey is returned when no email delivery credential is configured.
var ErrMissingAPIKey = errors.New("email service not configured: RESEND_API_KEY is not set")
