package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

// AddParticipantsRequest is the request body for POST /events/{eventID}/participants.
type AddParticipantsRequest struct {
	Participants []domain.ParticipantInput `json:"participants"`
}

// Validate implements Validator. Blank emails are skipped by the service, so only
// an empty list is rejected here.
func (a AddParticipantsRequest) Validate() []string {
	if len(a.Participants) == 0 {
		return []string{"participants is required"}
	}
	return nil
}

// ParticipantListSuccessResponse is the success response envelope for participant creation.
type ParticipantListSuccessResponse struct {
	Data  []*domain.Participant `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ParticipantSuccessResponse is the success response envelope for a single participant.
type ParticipantSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListParticipantsResponse is the data payload for GET /events/{eventID}/participants.
type ListParticipantsResponse struct {
	Participants []*domain.Participant    `json:"participants"`
	Pagination   helpers.PaginationMeta `json:"pagination"`
}

// SetStatusRequest is the request body for PATCH .../participants/{participantID}/status.
type SetStatusRequest struct {
	Status domain.Status `json:"status"`
}

// Validate implements Validator.
func (s SetStatusRequest) Validate() []string {
	if !s.Status.Valid() {
		return []string{fmt.Sprintf("status must be one of %s", statusList())}
	}
	return nil
}

func statusList() string {
	names := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

type ParticipantController struct {
	Logger  *slog.Logger
	Service domain.ParticipantService
}

func NewParticipantController(logger *slog.Logger, svc domain.ParticipantService) *ParticipantController {
	return &ParticipantController{
		Logger:  logger,
		Service: svc,
	}
}

// AddParticipants godoc
// @Summary Add participants to an event
// @Description Emails are trimmed and lower-cased; entries without an email are skipped. Every participant starts pending with a fresh invitation token.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AddParticipantsRequest true "Participants to add"
// @Success 201 {object} controllers.ParticipantListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_registered"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants [post]
func (c *ParticipantController) AddParticipants(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req AddParticipantsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	created, err := c.Service.AddParticipants(r.Context(), caller, eventID, req.Participants)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListParticipants godoc
// @Summary List an event's participants
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param status query string false "pending, accepted, declined or checked-in"
// @Param search query string false "Case-insensitive match on email or name"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains participants and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants [get]
func (c *ParticipantController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	filter := domain.ParticipantFilter{
		Status: domain.Status(r.URL.Query().Get("status")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, fmt.Sprintf("status must be one of %s", statusList()))
		return
	}
	params := helpers.ParsePagination(r)
	participants, total, err := c.Service.ListParticipants(r.Context(), caller, eventID, filter, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListParticipantsResponse{
		Participants: participants,
		Pagination:   helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// SetStatus godoc
// @Summary Override a participant's status
// @Description Organizer override; any of the four statuses is accepted.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Param body body SetStatusRequest true "New status"
// @Success 200 {object} controllers.ParticipantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants/{participantID}/status [patch]
func (c *ParticipantController) SetStatus(w http.ResponseWriter, r *http.Request) {
	eventID, participantID := r.PathValue("eventID"), r.PathValue("participantID")
	var req SetStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	p, err := c.Service.SetStatus(r.Context(), caller, eventID, participantID, req.Status)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// DeleteParticipant godoc
// @Summary Remove a participant from an event
// @Tags participants
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants/{participantID} [delete]
func (c *ParticipantController) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteParticipant(r.Context(), caller, r.PathValue("eventID"), r.PathValue("participantID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QRCode godoc
// @Summary Participant check-in QR code
// @Description PNG encoding the participant's invitation link.
// @Tags participants
// @Produce png
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Success 200 {file} binary
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants/{participantID}/qr.png [get]
func (c *ParticipantController) QRCode(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	png, err := c.Service.QRCode(r.Context(), caller, r.PathValue("eventID"), r.PathValue("participantID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	writePNG(w, png)
}
