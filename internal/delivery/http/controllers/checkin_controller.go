package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

// CheckInRequest is the request body for POST /check-in. Payload is the scanned QR
// content or a manually typed token.
type CheckInRequest struct {
	Payload string `json:"payload"`
}

// Validate implements Validator.
func (c CheckInRequest) Validate() []string {
	if strings.TrimSpace(c.Payload) == "" {
		return []string{"payload is required"}
	}
	return nil
}

// CheckInSuccessResponse is the response envelope for check-in endpoints. On 409
// and 422 data still carries the participant snapshot.
type CheckInSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type CheckInController struct {
	Logger  *slog.Logger
	Service domain.CheckInService
}

func NewCheckInController(logger *slog.Logger, svc domain.CheckInService) *CheckInController {
	return &CheckInController{
		Logger:  logger,
		Service: svc,
	}
}

// CheckIn godoc
// @Summary Check in a participant from a scanned code
// @Description Accepts the invitation link encoded in the QR code or the bare token. Only participants of the caller's events can be checked in.
// @Tags check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckInRequest true "Scanned payload"
// @Success 200 {object} controllers.CheckInSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unreadable code)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: invalid_token"
// @Failure 409 {object} controllers.CheckInSuccessResponse "error.code: already_checked_in"
// @Failure 422 {object} controllers.CheckInSuccessResponse "error.code: not_accepted"
// @Router /check-in [post]
func (c *CheckInController) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	res, err := c.Service.CheckIn(r.Context(), caller, req.Payload)
	writeCheckInResult(c.Logger, w, r, res, err)
}

// writeCheckInResult answers a check-in attempt. Rejections that come with a
// snapshot keep it in data.
func writeCheckInResult(logger *slog.Logger, w http.ResponseWriter, r *http.Request, res *domain.CheckInResult, err error) {
	switch {
	case err == nil:
		helpers.WriteJSONSuccess(w, http.StatusOK, res)
	case errors.Is(err, domain.ErrAlreadyCheckedIn) && res != nil:
		helpers.WriteJSONErrorWithData(w, http.StatusConflict, helpers.ErrCodeAlreadyCheckedIn, res.Message, res)
	case errors.Is(err, domain.ErrNotAccepted) && res != nil:
		helpers.WriteJSONErrorWithData(w, http.StatusUnprocessableEntity, helpers.ErrCodeNotAccepted, res.Message, res)
	default:
		writeServiceError(logger, w, r, err)
	}
}
