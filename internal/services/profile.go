package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventmanager/internal/domain"
)

type profileService struct {
	profileRepo    domain.ProfileRepository
	contextTimeout time.Duration
}

// NewProfileService creates a ProfileService backed by the given repository.
func NewProfileService(profileRepo domain.ProfileRepository, timeout time.Duration) domain.ProfileService {
	return &profileService{profileRepo: profileRepo, contextTimeout: timeout}
}

func (s *profileService) EnsureProfile(ctx context.Context, caller domain.Identity) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	existing, err := s.profileRepo.GetByID(ctx, caller.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p := domain.NewProfile(caller, time.Now())
	if err := s.profileRepo.Create(ctx, p); err != nil {
		// A concurrent request created it first.
		if errors.Is(err, domain.ErrDuplicate) {
			return s.profileRepo.GetByID(ctx, caller.UserID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (s *profileService) GetProfile(ctx context.Context, caller domain.Identity) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	p, err := s.profileRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}
