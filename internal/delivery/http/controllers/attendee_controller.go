package controllers

import (
	"log/slog"
	"net/http"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

// RSVPRequest is the request body for POST /invitations/{token}/rsvp.
type RSVPRequest struct {
	Status domain.Status `json:"status"`
}

// Validate implements Validator.
func (r RSVPRequest) Validate() []string {
	if !r.Status.IsRSVP() {
		return []string{"status must be accepted or declined"}
	}
	return nil
}

// InvitationSuccessResponse is the success response envelope for the invitation page endpoints.
type InvitationSuccessResponse struct {
	Data  *domain.ParticipantWithEvent `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// AttendeeController serves the public invitation page. The invitation token is
// the only credential.
type AttendeeController struct {
	Logger   *slog.Logger
	Service  domain.AttendeeService
	CheckIns domain.CheckInService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService, checkIns domain.CheckInService) *AttendeeController {
	return &AttendeeController{
		Logger:   logger,
		Service:  svc,
		CheckIns: checkIns,
	}
}

// GetInvitation godoc
// @Summary Resolve an invitation token
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: invalid_token"
// @Router /invitations/{token} [get]
func (c *AttendeeController) GetInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := c.Service.GetInvitation(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Respond godoc
// @Summary Accept or decline an invitation
// @Tags invitations
// @Accept json
// @Produce json
// @Param token path string true "Invitation token"
// @Param body body RSVPRequest true "accepted or declined"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: invalid_token"
// @Router /invitations/{token}/rsvp [post]
func (c *AttendeeController) Respond(w http.ResponseWriter, r *http.Request) {
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Respond(r.Context(), r.PathValue("token"), req.Status)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// SelfCheckIn godoc
// @Summary Check in from the invitation page
// @Tags check-in
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.CheckInSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: invalid_token"
// @Failure 409 {object} controllers.CheckInSuccessResponse "error.code: already_checked_in"
// @Failure 422 {object} controllers.CheckInSuccessResponse "error.code: not_accepted"
// @Router /invitations/{token}/check-in [post]
func (c *AttendeeController) SelfCheckIn(w http.ResponseWriter, r *http.Request) {
	res, err := c.CheckIns.SelfCheckIn(r.Context(), r.PathValue("token"))
	writeCheckInResult(c.Logger, w, r, res, err)
}

// QRCode godoc
// @Summary QR code for the invitation page
// @Tags invitations
// @Produce png
// @Param token path string true "Invitation token"
// @Success 200 {file} binary
// @Failure 404 {object} helpers.APIResponse "error.code: invalid_token"
// @Router /invitations/{token}/qr.png [get]
func (c *AttendeeController) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := c.Service.QRCode(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	writePNG(w, png)
}
