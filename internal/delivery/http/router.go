package http

import (
	"log/slog"
	"net/http"

	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Health      *controllers.HealthController
	Profile     *controllers.ProfileController
	Event       *controllers.EventController
	Participant *controllers.ParticipantController
	Stream      *controllers.StreamController
	Invitation  *controllers.InvitationController
	Attendee    *controllers.AttendeeController
	CheckIn     *controllers.CheckInController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	mux.HandleFunc("GET /health", c.Health.Health)

	// Organizer
	mux.HandleFunc("GET /profile", auth(c.Profile.GetProfile))
	mux.HandleFunc("POST /profile", auth(c.Profile.EnsureProfile))

	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/upcoming", auth(c.Event.ListUpcoming))
	mux.HandleFunc("GET /events/calendar", auth(c.Event.Calendar))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.GetEventOverview))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))

	mux.HandleFunc("POST /events/{eventID}/participants", auth(c.Participant.AddParticipants))
	mux.HandleFunc("GET /events/{eventID}/participants", auth(c.Participant.ListParticipants))
	mux.HandleFunc("GET /events/{eventID}/participants/stream", middleware.RequireStreamAuth(verifier, logger)(c.Stream.Stream))
	mux.HandleFunc("PATCH /events/{eventID}/participants/{participantID}/status", auth(c.Participant.SetStatus))
	mux.HandleFunc("DELETE /events/{eventID}/participants/{participantID}", auth(c.Participant.DeleteParticipant))
	mux.HandleFunc("GET /events/{eventID}/participants/{participantID}/qr.png", auth(c.Participant.QRCode))

	mux.HandleFunc("POST /api/send-invitations", middleware.Authenticate(verifier, logger)(c.Invitation.SendInvitations))
	mux.HandleFunc("POST /check-in", auth(c.CheckIn.CheckIn))

	// Invitee, token only
	mux.HandleFunc("GET /invitations/{token}", c.Attendee.GetInvitation)
	mux.HandleFunc("POST /invitations/{token}/rsvp", c.Attendee.Respond)
	mux.HandleFunc("POST /invitations/{token}/check-in", c.Attendee.SelfCheckIn)
	mux.HandleFunc("GET /invitations/{token}/qr.png", c.Attendee.QRCode)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
