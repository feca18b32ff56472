package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendInvitations(t *testing.T, svc *fakeInvitationService, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	ctrl := NewInvitationController(testLogger, svc)
	req := httptest.NewRequest(http.MethodPost, "/api/send-invitations", strings.NewReader(body))
	if authenticated {
		req = withCaller(req)
	}
	rr := httptest.NewRecorder()
	ctrl.SendInvitations(rr, req)
	return rr
}

func TestInvitationController_PartialSuccess(t *testing.T) {
	svc := &fakeInvitationService{report: &domain.InvitationReport{
		Succeeded: []domain.InvitationSuccess{{ParticipantID: "p1", Email: "a@example.com"}},
		Failed:    []domain.InvitationFailure{{ParticipantID: "p2", Email: "b@example.com", Error: "failed to send email: mailbox full"}},
	}}
	rr := sendInvitations(t, svc, `{"eventId":"ev-1","participantIds":["p1","p2"]}`, true)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ev-1", svc.lastEventID)
	assert.Equal(t, []string{"p1", "p2"}, svc.lastIDs)
	assert.Equal(t, organizer.UserID, svc.lastCaller.UserID)

	var resp SendInvitationsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.TotalSent)
	assert.Equal(t, 1, resp.TotalFailed)
	assert.Equal(t, []InvitationResult{{ParticipantID: "p1", Email: "a@example.com", Success: true}}, resp.Results)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "p2", resp.Errors[0].ParticipantID)
	assert.Empty(t, resp.HelpURL)
}

func TestInvitationController_AllFailedStillOK(t *testing.T) {
	svc := &fakeInvitationService{report: &domain.InvitationReport{
		Failed: []domain.InvitationFailure{{ParticipantID: "p1", Email: "a@example.com", Error: "failed to send email: mailbox full"}},
	}}
	rr := sendInvitations(t, svc, `{"eventId":"ev-1","participantIds":["p1"]}`, true)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, []any{}, resp["results"])
	assert.EqualValues(t, 0, resp["totalSent"])
}

func TestInvitationController_DomainVerification(t *testing.T) {
	svc := &fakeInvitationService{report: &domain.InvitationReport{
		Failed: []domain.InvitationFailure{
			{ParticipantID: "p1", Email: "a@example.com", Error: "The example.com domain is not verified"},
			{ParticipantID: "p2", Email: "b@example.com", Error: "The example.com domain is not verified"},
		},
		DomainVerificationRequired: true,
	}}
	rr := sendInvitations(t, svc, `{"eventId":"ev-1","participantIds":["p1","p2"]}`, true)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp SendInvitationsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Email domain verification required", resp.Error)
	assert.Equal(t, DomainVerificationHelpURL, resp.HelpURL)
	assert.NotEmpty(t, resp.Message)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalSent)
	assert.Equal(t, 2, resp.TotalFailed)
}

func TestInvitationController_Errors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		authenticated bool
		svcErr        error
		wantStatus    int
		wantError     string
		wantCode      string
	}{
		{"missing api key", `{"eventId":"ev-1","participantIds":["p1"]}`, true, domain.ErrMissingAPIKey, http.StatusInternalServerError, "Email service not configured. Please add RESEND_API_KEY to your environment variables.", "MISSING_API_KEY"},
		{"missing input", `{}`, true, domain.ErrInvalidInput, http.StatusBadRequest, "Event ID and participant IDs are required", ""},
		{"malformed body", `{"eventId":`, true, domain.ErrInvalidInput, http.StatusBadRequest, "Event ID and participant IDs are required", ""},
		{"anonymous", `{"eventId":"ev-1","participantIds":["p1"]}`, false, domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized", ""},
		{"foreign event", `{"eventId":"ev-1","participantIds":["p1"]}`, true, domain.ErrNotFound, http.StatusNotFound, "Event not found or unauthorized", ""},
		{"nothing pending", `{"eventId":"ev-1","participantIds":["p1"]}`, true, domain.ErrNoMatchingParticipants, http.StatusNotFound, "No pending participants found", ""},
		{"store failure", `{"eventId":"ev-1","participantIds":["p1"]}`, true, errors.New("list participants: timeout"), http.StatusInternalServerError, "Internal server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInvitationService{err: tt.svcErr}
			rr := sendInvitations(t, svc, tt.body, tt.authenticated)

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp InvitationErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Code)
			if !tt.authenticated {
				assert.True(t, svc.lastCaller.Anonymous())
			}
		})
	}
}
