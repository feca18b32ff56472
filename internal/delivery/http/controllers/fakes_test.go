package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var organizer = domain.Identity{UserID: "org-1", Email: "org@example.com", Name: "Olga Organizer"}

// withCaller returns req carrying the organizer identity, as RequireAuth would set it.
func withCaller(req *http.Request) *http.Request {
	return req.WithContext(middleware.SetIdentity(req.Context(), organizer))
}

type envelope[T any] struct {
	Data  T                 `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func sampleEvent() *domain.Event {
	return &domain.Event{
		ID:        "ev-1",
		Title:     "Go Meetup",
		Location:  "Berlin",
		Capacity:  10,
		EventDate: time.Date(2026, 3, 6, 19, 30, 0, 0, time.UTC),
		CreatedBy: organizer.UserID,
	}
}

func sampleParticipant(id string, status domain.Status) *domain.Participant {
	return &domain.Participant{
		ID:              id,
		EventID:         "ev-1",
		Email:           id + "@example.com",
		Name:            "Guest " + id,
		Status:          status,
		InvitationToken: "6f1c2b8e-7d4a-4c59-9b1e-3a2f5d6c7e8f",
	}
}

type fakeProfileService struct {
	profile    *domain.Profile
	err        error
	lastCaller domain.Identity
	ensured    int
}

func (f *fakeProfileService) EnsureProfile(_ context.Context, caller domain.Identity) (*domain.Profile, error) {
	f.lastCaller = caller
	f.ensured++
	return f.profile, f.err
}

func (f *fakeProfileService) GetProfile(_ context.Context, caller domain.Identity) (*domain.Profile, error) {
	f.lastCaller = caller
	return f.profile, f.err
}

type fakeEventService struct {
	err        error
	events     []*domain.Event
	overview   *domain.EventOverview
	updated    *domain.Event
	lastCaller domain.Identity
	lastEvent  *domain.Event
	lastLimit  int
	lastFrom   time.Time
	lastTo     time.Time
	lastID     string
	lastPatch  domain.EventPatch
}

func (f *fakeEventService) CreateEvent(_ context.Context, caller domain.Identity, event *domain.Event) error {
	f.lastCaller, f.lastEvent = caller, event
	if f.err != nil {
		return f.err
	}
	event.ID = "ev-new"
	event.CreatedBy = caller.UserID
	return nil
}

func (f *fakeEventService) ListEvents(_ context.Context, caller domain.Identity) ([]*domain.Event, error) {
	f.lastCaller = caller
	return f.events, f.err
}

func (f *fakeEventService) ListUpcoming(_ context.Context, caller domain.Identity, limit int) ([]*domain.Event, error) {
	f.lastCaller, f.lastLimit = caller, limit
	return f.events, f.err
}

func (f *fakeEventService) ListEventsBetween(_ context.Context, caller domain.Identity, from, to time.Time) ([]*domain.Event, error) {
	f.lastCaller, f.lastFrom, f.lastTo = caller, from, to
	return f.events, f.err
}

func (f *fakeEventService) GetEventOverview(_ context.Context, caller domain.Identity, eventID string) (*domain.EventOverview, error) {
	f.lastCaller, f.lastID = caller, eventID
	return f.overview, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, caller domain.Identity, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastCaller, f.lastID, f.lastPatch = caller, eventID, patch
	return f.updated, f.err
}

type fakeParticipantService struct {
	err          error
	created      []*domain.Participant
	page         []*domain.Participant
	total        int
	updated      *domain.Participant
	png          []byte
	lastEventID  string
	lastID       string
	lastInputs   []domain.ParticipantInput
	lastFilter   domain.ParticipantFilter
	lastParams   domain.PaginationParams
	lastStatus   domain.Status
	deleted      string
	onChange     func(domain.ParticipantChange)
	subscribed   chan struct{}
	unsubscribed chan struct{}
}

func (f *fakeParticipantService) AddParticipants(_ context.Context, _ domain.Identity, eventID string, inputs []domain.ParticipantInput) ([]*domain.Participant, error) {
	f.lastEventID, f.lastInputs = eventID, inputs
	return f.created, f.err
}

func (f *fakeParticipantService) ListParticipants(_ context.Context, _ domain.Identity, eventID string, filter domain.ParticipantFilter, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	f.lastEventID, f.lastFilter, f.lastParams = eventID, filter, params
	return f.page, f.total, f.err
}

func (f *fakeParticipantService) SetStatus(_ context.Context, _ domain.Identity, eventID, participantID string, status domain.Status) (*domain.Participant, error) {
	f.lastEventID, f.lastID, f.lastStatus = eventID, participantID, status
	return f.updated, f.err
}

func (f *fakeParticipantService) DeleteParticipant(_ context.Context, _ domain.Identity, eventID, participantID string) error {
	f.lastEventID = eventID
	if f.err != nil {
		return f.err
	}
	f.deleted = participantID
	return nil
}

func (f *fakeParticipantService) QRCode(_ context.Context, _ domain.Identity, eventID, participantID string) ([]byte, error) {
	f.lastEventID, f.lastID = eventID, participantID
	return f.png, f.err
}

func (f *fakeParticipantService) Subscribe(_ context.Context, _ domain.Identity, eventID string, onChange func(domain.ParticipantChange)) (func(), error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	f.onChange = onChange
	if f.subscribed != nil {
		close(f.subscribed)
	}
	return func() {
		if f.unsubscribed != nil {
			close(f.unsubscribed)
		}
	}, nil
}

type fakeInvitationService struct {
	report      *domain.InvitationReport
	err         error
	lastCaller  domain.Identity
	lastEventID string
	lastIDs     []string
}

func (f *fakeInvitationService) SendInvitations(_ context.Context, caller domain.Identity, eventID string, ids []string) (*domain.InvitationReport, error) {
	f.lastCaller, f.lastEventID, f.lastIDs = caller, eventID, ids
	return f.report, f.err
}

type fakeAttendeeService struct {
	invitation   *domain.ParticipantWithEvent
	png          []byte
	err          error
	lastToken    string
	lastResponse domain.Status
}

func (f *fakeAttendeeService) GetInvitation(_ context.Context, token string) (*domain.ParticipantWithEvent, error) {
	f.lastToken = token
	return f.invitation, f.err
}

func (f *fakeAttendeeService) Respond(_ context.Context, token string, response domain.Status) (*domain.ParticipantWithEvent, error) {
	f.lastToken, f.lastResponse = token, response
	return f.invitation, f.err
}

func (f *fakeAttendeeService) QRCode(_ context.Context, token string) ([]byte, error) {
	f.lastToken = token
	return f.png, f.err
}

type fakeCheckInService struct {
	result      *domain.CheckInResult
	err         error
	lastCaller  domain.Identity
	lastPayload string
	lastToken   string
}

func (f *fakeCheckInService) CheckIn(_ context.Context, caller domain.Identity, payload string) (*domain.CheckInResult, error) {
	f.lastCaller, f.lastPayload = caller, payload
	return f.result, f.err
}

func (f *fakeCheckInService) SelfCheckIn(_ context.Context, token string) (*domain.CheckInResult, error) {
	f.lastToken = token
	return f.result, f.err
}
