package domain

import (
	"context"
	"time"
)

// Profile is the organizer record backing an authenticated identity.
// swagger:model Profile
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile returns a Profile for the given identity.
func NewProfile(id Identity, now time.Time) *Profile {
	return &Profile{
		ID:        id.UserID,
		Email:     id.Email,
		FullName:  id.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayName returns the name shown to invitees, falling back to the email.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// ProfileRepository defines storage for organizer profiles.
type ProfileRepository interface {
	// Create inserts the profile. Returns ErrDuplicate if one already exists for the ID.
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
}

// ProfileService manages organizer profiles.
type ProfileService interface {
	// EnsureProfile returns the caller's profile, creating it on first use.
	EnsureProfile(ctx context.Context, caller Identity) (*Profile, error)
	GetProfile(ctx context.Context, caller Identity) (*Profile, error)
}
