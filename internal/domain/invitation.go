package domain

import "context"

// InvitationSuccess records a delivered invitation.
type InvitationSuccess struct {
	ParticipantID string `json:"participantId"`
	Email         string `json:"email"`
}

// InvitationFailure records an invitation that could not be delivered.
type InvitationFailure struct {
	ParticipantID string `json:"participantId"`
	Email         string `json:"email"`
	Error         string `json:"error"`
}

// InvitationReport aggregates the outcome of a bulk send. Succeeded and Failed are
// disjoint and together cover every attempted participant once.
type InvitationReport struct {
	Succeeded []InvitationSuccess
	Failed    []InvitationFailure
	// DomainVerificationRequired is set when every attempt failed because the
	// sending domain is not verified.
	DomainVerificationRequired bool
}

// TotalSent returns the number of delivered invitations.
func (r *InvitationReport) TotalSent() int { return len(r.Succeeded) }

// TotalFailed returns the number of failed invitations.
func (r *InvitationReport) TotalFailed() int { return len(r.Failed) }

// Attempted returns the number of participants a send was attempted for.
func (r *InvitationReport) Attempted() int { return r.TotalSent() + r.TotalFailed() }

// InvitationService sends invitation emails in bulk.
type InvitationService interface {
	SendInvitations(ctx context.Context, caller Identity, eventID string, participantIDs []string) (*InvitationReport, error)
}
