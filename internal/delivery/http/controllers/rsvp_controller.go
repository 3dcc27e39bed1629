package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"conferencesessions/internal/delivery/http/helpers"
	"conferencesessions/internal/delivery/http/middleware"
	"conferencesessions/internal/domain"
)

// DeleteRSVPResponse is the data of DELETE /api/rsvps/{rsvpID}.
type DeleteRSVPResponse struct {
	Deleted bool `json:"deleted"`
}

// ViewerRSVPResponse is the data of GET /api/sessions/{sessionID}/rsvp. RSVPID is 0 when the
// viewer has not RSVP'd.
type ViewerRSVPResponse struct {
	RSVPID int64 `json:"rsvp_id"`
}

// CheckInRequest is the body of POST /api/rsvps/check-in: the text read from a badge QR code.
type CheckInRequest struct {
	Token string `json:"token"`
}

// Validate implements Validator.
func (c CheckInRequest) Validate() []string {
	if strings.TrimSpace(c.Token) == "" {
		return []string{"token is required"}
	}
	return nil
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary RSVP to a session
// @Description Creates the viewer's RSVP. Returns the existing RSVP when there already is one.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param sessionID path int true "Session ID"
// @Success 201 {object} helpers.APIResponse "data contains the RSVP"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/sessions/{sessionID}/rsvps [post]
func (c *RSVPController) Create(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	rsvp, err := c.Service.Create(r.Context(), userID, sessionID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rsvp)
}

// Viewer godoc
// @Summary The viewer's RSVP for a session
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param sessionID path int true "Session ID"
// @Success 200 {object} helpers.APIResponse "data.rsvp_id is 0 when there is none"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/sessions/{sessionID}/rsvp [get]
func (c *RSVPController) Viewer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id, err := c.Service.ViewerRSVP(r.Context(), userID, sessionID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ViewerRSVPResponse{RSVPID: id})
}

// Delete godoc
// @Summary Cancel an RSVP
// @Description deleted is false when the RSVP did not exist.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param rsvpID path int true "RSVP ID"
// @Success 200 {object} helpers.APIResponse "data.deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/rsvps/{rsvpID} [delete]
func (c *RSVPController) Delete(w http.ResponseWriter, r *http.Request) {
	rsvpID, ok := pathID(w, r, "rsvpID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	deleted, err := c.Service.Delete(r.Context(), userID, rsvpID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteRSVPResponse{Deleted: deleted})
}

// CheckInCode godoc
// @Summary RSVP check-in badge
// @Description PNG QR code to scan at the door. Only the RSVP owner can fetch it.
// @Tags rsvps
// @Produce png
// @Security BearerAuth
// @Param rsvpID path int true "RSVP ID"
// @Success 200 {file} binary
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/rsvps/{rsvpID}/qr [get]
func (c *RSVPController) CheckInCode(w http.ResponseWriter, r *http.Request) {
	rsvpID, ok := pathID(w, r, "rsvpID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	png, err := c.Service.CheckInCode(r.Context(), userID, rsvpID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// CheckIn godoc
// @Summary Check in a scanned badge
// @Description Validates the signed badge token of an RSVP. Only the creator of the session may check attendees in.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckInRequest true "Scanned token"
// @Success 200 {object} helpers.APIResponse "data contains the rsvp"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/rsvps/check-in [post]
func (c *RSVPController) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rsvp, err := c.Service.CheckIn(r.Context(), userID, strings.TrimSpace(req.Token))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}
