package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"
)

// DomainVerificationHelpURL points organizers at the provider's domain settings.
const DomainVerificationHelpURL = "https://resend.com/domains"

// SendInvitationsRequest is the request body for POST /api/send-invitations.
type SendInvitationsRequest struct {
	EventID        string   `json:"eventId"`
	ParticipantIDs []string `json:"participantIds"`
}

// InvitationResult is one delivered invitation in SendInvitationsResponse.
type InvitationResult struct {
	ParticipantID string `json:"participantId"`
	Email         string `json:"email"`
	Success       bool   `json:"success"`
}

// SendInvitationsResponse is the body of POST /api/send-invitations. It is not
// wrapped in the APIResponse envelope.
type SendInvitationsResponse struct {
	Success     bool                       `json:"success"`
	Error       string                     `json:"error,omitempty"`
	Message     string                     `json:"message,omitempty"`
	Results     []InvitationResult         `json:"results"`
	Errors      []domain.InvitationFailure `json:"errors"`
	TotalSent   int                        `json:"totalSent"`
	TotalFailed int                        `json:"totalFailed"`
	HelpURL     string                     `json:"helpUrl,omitempty"`
}

// InvitationErrorResponse is the body of a rejected POST /api/send-invitations.
type InvitationErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// SendInvitations godoc
// @Summary Email invitations to pending participants
// @Description Sends one invitation per pending participant among participantIds, sequentially. Individual failures are reported in errors and do not abort the batch.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendInvitationsRequest true "Event and participants"
// @Success 200 {object} controllers.SendInvitationsResponse
// @Failure 400 {object} controllers.SendInvitationsResponse "missing input, or every send failed domain verification"
// @Failure 401 {object} controllers.InvitationErrorResponse
// @Failure 404 {object} controllers.InvitationErrorResponse
// @Failure 500 {object} controllers.InvitationErrorResponse "code: MISSING_API_KEY when no delivery credential is configured"
// @Router /api/send-invitations [post]
func (c *InvitationController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	// A malformed body is treated as empty so the configuration check still wins.
	var req SendInvitationsRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	caller, _ := middleware.IdentityFromContext(r.Context())
	report, err := c.Service.SendInvitations(r.Context(), caller, req.EventID, req.ParticipantIDs)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	resp := SendInvitationsResponse{
		Success:     report.TotalSent() > 0,
		Results:     make([]InvitationResult, 0, report.TotalSent()),
		Errors:      report.Failed,
		TotalSent:   report.TotalSent(),
		TotalFailed: report.TotalFailed(),
	}
	if resp.Errors == nil {
		resp.Errors = []domain.InvitationFailure{}
	}
	for _, s := range report.Succeeded {
		resp.Results = append(resp.Results, InvitationResult{ParticipantID: s.ParticipantID, Email: s.Email, Success: true})
	}
	if report.DomainVerificationRequired {
		resp.Success = false
		resp.Error = "Email domain verification required"
		resp.Message = "To send emails, please verify your domain in Resend or use 'onboarding@resend.dev' for testing."
		resp.HelpURL = DomainVerificationHelpURL
		helpers.WriteJSON(w, http.StatusBadRequest, resp)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func (c *InvitationController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		helpers.WriteJSON(w, http.StatusInternalServerError, InvitationErrorResponse{
			Error: "Email service not configured. Please add RESEND_API_KEY to your environment variables.",
			Code:  "MISSING_API_KEY",
		})
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSON(w, http.StatusBadRequest, InvitationErrorResponse{Error: "Event ID and participant IDs are required"})
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSON(w, http.StatusUnauthorized, InvitationErrorResponse{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSON(w, http.StatusNotFound, InvitationErrorResponse{Error: "Event not found or unauthorized"})
	case errors.Is(err, domain.ErrNoMatchingParticipants):
		helpers.WriteJSON(w, http.StatusNotFound, InvitationErrorResponse{Error: "No pending participants found"})
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSON(w, http.StatusInternalServerError, InvitationErrorResponse{Error: "Internal server error", Message: err.Error()})
	}
}
