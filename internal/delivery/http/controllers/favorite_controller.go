package controllers

import (
	"log/slog"
	"net/http"

	"conferencesessions/internal/delivery/http/helpers"
	"conferencesessions/internal/delivery/http/middleware"
	"conferencesessions/internal/domain"
)

// FavoriteResponse is the data of the favorite toggle endpoints.
type FavoriteResponse struct {
	SessionID int64 `json:"session_id"`
	Favorited bool  `json:"favorited"`
}

type FavoriteController struct {
	Logger  *slog.Logger
	Service domain.FavoriteService
}

func NewFavoriteController(logger *slog.Logger, svc domain.FavoriteService) *FavoriteController {
	return &FavoriteController{Logger: logger, Service: svc}
}

// Add godoc
// @Summary Favorite a session
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param sessionID path int true "Session ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/sessions/{sessionID}/favorite [post]
func (c *FavoriteController) Add(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionID")
	if !ok {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	if err := c.Service.Add(r.Context(), userID, sessionID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FavoriteResponse{SessionID: sessionID, Favorited: true})
}

// Remove godoc
// @Summary Unfavorite a session
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param sessionID path int true "Session ID"
// @Success 200 {object} helpers.APIResponse
// @Router /api/sessions/{sessionID}/favorite [delete]
func (c *FavoriteController) Remove(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionID")
	if !ok {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	if _, err := c.Service.Remove(r.Context(), userID, sessionID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FavoriteResponse{SessionID: sessionID, Favorited: false})
}

// List godoc
// @Summary The viewer's favorite sessions
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains sessions"
// @Router /api/favorites [get]
func (c *FavoriteController) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	sessions, err := c.Service.List(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}
