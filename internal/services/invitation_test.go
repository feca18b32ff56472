package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingParticipants() []*domain.Participant {
	return []*domain.Participant{
		testParticipant("p-1", "ev-1", "ann@example.com", domain.StatusPending, "tok-1"),
		testParticipant("p-2", "ev-1", "ben@example.com", domain.StatusPending, "tok-2"),
		testParticipant("p-3", "ev-1", "cat@example.com", domain.StatusPending, "tok-3"),
		testParticipant("p-4", "ev-1", "dan@example.com", domain.StatusAccepted, "tok-4"),
		testParticipant("p-5", "ev-2", "eve@example.com", domain.StatusPending, "tok-5"),
	}
}

func newInvitationService(email domain.EmailService, pr *fakeParticipantRepo, profiles *fakeProfileRepo, n domain.ChangeNotifier) domain.InvitationService {
	er := newFakeEventRepo(testEvent("ev-1", "user-1"), testEvent("ev-2", "user-2"))
	return NewInvitationService(er, pr, profiles, email, n, testBaseURL, nil, 5*time.Second)
}

func TestInvitationService_SendInvitations(t *testing.T) {
	ctx := context.Background()

	t.Run("all delivered", func(t *testing.T) {
		email := newFakeEmailService()
		pr := newFakeParticipantRepo(pendingParticipants()...)
		n := &recordingNotifier{}
		svc := newInvitationService(email, pr, newFakeProfileRepo(&domain.Profile{ID: "user-1", FullName: "Olga"}), n)

		report, err := svc.SendInvitations(ctx, organizer, "ev-1", []string{"p-1", "p-2", "p-3", "p-4", "p-5"})
		require.NoError(t, err)
		assert.Equal(t, 3, report.TotalSent())
		assert.Equal(t, 0, report.TotalFailed())
		assert.False(t, report.DomainVerificationRequired)

		require.Len(t, email.sent, 3)
		first := email.sent[0]
		assert.Equal(t, "ann@example.com", first.Email)
		assert.Equal(t, "Olga", first.OrganizerName)
		assert.Equal(t, "Go Meetup", first.EventTitle)
		assert.Equal(t, "Annual meetup", first.EventDescription)
		assert.Equal(t, "Berlin", first.EventLocation)
		assert.Equal(t, "Friday, March 6, 2026 7:30 PM", first.EventDate)
		assert.Equal(t, testBaseURL+"/invitation/tok-1", first.InvitationURL)

		assert.Equal(t, testBaseURL+"/invitation/tok-1", pr.byID["p-1"].QRCodeData)
		assert.Empty(t, pr.byID["p-4"].QRCodeData, "accepted participants are skipped")
		assert.Len(t, n.types(), 3)
	})

	t.Run("partial failure covers every attempt once", func(t *testing.T) {
		email := newFakeEmailService()
		email.failFor["ben@example.com"] = &domain.DeliveryError{Reason: domain.DeliveryRejected, Err: errors.New("mailbox full")}
		pr := newFakeParticipantRepo(pendingParticipants()...)
		svc := newInvitationService(email, pr, newFakeProfileRepo(), nil)

		report, err := svc.SendInvitations(ctx, organizer, "ev-1", []string{"p-1", "p-2", "p-3"})
		require.NoError(t, err)
		assert.Equal(t, 3, report.TotalSent()+report.TotalFailed())
		assert.Equal(t, 2, report.TotalSent())
		require.Len(t, report.Failed, 1)
		assert.Equal(t, "p-2", report.Failed[0].ParticipantID)
		assert.Equal(t, "ben@example.com", report.Failed[0].Email)
		assert.Contains(t, report.Failed[0].Error, "mailbox full")
		assert.False(t, report.DomainVerificationRequired)

		seen := map[string]int{}
		for _, s := range report.Succeeded {
			seen[s.ParticipantID]++
		}
		for _, f := range report.Failed {
			seen[f.ParticipantID]++
		}
		assert.Equal(t, map[string]int{"p-1": 1, "p-2": 1, "p-3": 1}, seen)
		assert.Empty(t, pr.byID["p-2"].QRCodeData)
	})

	t.Run("domain verification required", func(t *testing.T) {
		email := newFakeEmailService()
		unverified := &domain.DeliveryError{Reason: domain.DeliveryDomainUnverified, Err: errors.New("The example.com domain is not verified")}
		email.failFor["ann@example.com"] = unverified
		email.failFor["ben@example.com"] = unverified
		svc := newInvitationService(email, newFakeParticipantRepo(pendingParticipants()...), newFakeProfileRepo(), nil)

		report, err := svc.SendInvitations(ctx, organizer, "ev-1", []string{"p-1", "p-2"})
		require.NoError(t, err)
		assert.Equal(t, 0, report.TotalSent())
		assert.Equal(t, 2, report.TotalFailed())
		assert.True(t, report.DomainVerificationRequired)
	})

	t.Run("mixed failures are not a domain problem", func(t *testing.T) {
		email := newFakeEmailService()
		email.failFor["ann@example.com"] = &domain.DeliveryError{Reason: domain.DeliveryDomainUnverified, Err: errors.New("not verified")}
		email.failFor["ben@example.com"] = &domain.DeliveryError{Reason: domain.DeliveryInvalidCredential, Err: errors.New("bad key")}
		svc := newInvitationService(email, newFakeParticipantRepo(pendingParticipants()...), newFakeProfileRepo(), nil)

		report, err := svc.SendInvitations(ctx, organizer, "ev-1", []string{"p-1", "p-2"})
		require.NoError(t, err)
		assert.False(t, report.DomainVerificationRequired)
	})

	t.Run("store failure after send still counts", func(t *testing.T) {
		pr := newFakeParticipantRepo(pendingParticipants()...)
		pr.updateQRErr = errors.New("db down")
		svc := newInvitationService(newFakeEmailService(), pr, newFakeProfileRepo(), nil)

		report, err := svc.SendInvitations(ctx, organizer, "ev-1", []string{"p-1"})
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalSent())
	})

	t.Run("zero pending never calls email", func(t *testing.T) {
		email := newFakeEmailService()
		svc := newInvitationService(email, newFakeParticipantRepo(pendingParticipants()...), newFakeProfileRepo(), nil)

		_, err := svc.SendInvitations(ctx, organizer, "ev-1", []string{"p-4", "p-5", "missing"})
		assert.ErrorIs(t, err, domain.ErrNoMatchingParticipants)
		assert.Empty(t, email.sent)
	})

	t.Run("preconditions", func(t *testing.T) {
		pr := newFakeParticipantRepo(pendingParticipants()...)

		_, err := newInvitationService(nil, pr, newFakeProfileRepo(), nil).SendInvitations(ctx, organizer, "ev-1", []string{"p-1"})
		assert.ErrorIs(t, err, domain.ErrMissingAPIKey)

		svc := newInvitationService(newFakeEmailService(), pr, newFakeProfileRepo(), nil)
		_, err = svc.SendInvitations(ctx, organizer, "", []string{"p-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = svc.SendInvitations(ctx, organizer, "ev-1", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = svc.SendInvitations(ctx, organizer, "ev-2", []string{"p-5"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.SendInvitations(ctx, organizer, "ev-missing", []string{"p-1"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationService_OrganizerName(t *testing.T) {
	tests := []struct {
		name     string
		profiles *fakeProfileRepo
		caller   domain.Identity
		want     string
	}{
		{name: "full name", profiles: newFakeProfileRepo(&domain.Profile{ID: "user-1", FullName: "Olga", Email: "p@example.com"}), caller: organizer, want: "Olga"},
		{name: "profile email", profiles: newFakeProfileRepo(&domain.Profile{ID: "user-1", Email: "p@example.com"}), caller: organizer, want: "p@example.com"},
		{name: "caller email", profiles: newFakeProfileRepo(), caller: organizer, want: "org@example.com"},
		{name: "generic", profiles: newFakeProfileRepo(), caller: domain.Identity{UserID: "user-1"}, want: "Event Organizer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := newFakeEmailService()
			svc := newInvitationService(email, newFakeParticipantRepo(pendingParticipants()...), tt.profiles, nil)
			_, err := svc.SendInvitations(context.Background(), tt.caller, "ev-1", []string{"p-1"})
			require.NoError(t, err)
			require.Len(t, email.sent, 1)
			assert.Equal(t, tt.want, email.sent[0].OrganizerName)
		})
	}
}
