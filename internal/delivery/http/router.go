package http

import (
	"log/slog"
	"net/http"

	"conferencesessions/internal/delivery/http/controllers"
	"conferencesessions/internal/delivery/http/middleware"
	"conferencesessions/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Sessions  *controllers.SessionController
	RSVPs     *controllers.RSVPController
	Favorites *controllers.FavoriteController
	Events    *controllers.EventController
	Ticketing *controllers.TicketingController
	Auth      *controllers.AuthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	viewer := middleware.OptionalAuth(verifier)

	// Events
	mux.HandleFunc("GET /api/events", c.Events.ListEvents)
	mux.HandleFunc("POST /api/events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /api/events/{eventID}", c.Events.GetEvent)

	// Sessions
	mux.HandleFunc("GET /api/events/{eventID}/sessions", c.Sessions.ListEventSessions)
	mux.HandleFunc("POST /api/events/{eventID}/sessions", auth(c.Sessions.CreateSession))
	mux.HandleFunc("GET /api/events/{eventID}/sessions/draft", auth(c.Sessions.DraftDefaults))
	mux.HandleFunc("GET /api/events/{eventID}/calendar", c.Sessions.Calendar)
	mux.HandleFunc("GET /api/sessions/{sessionID}", viewer(c.Sessions.GetSession))
	mux.HandleFunc("POST /api/createSession", auth(c.Sessions.StoreSession))

	// RSVPs and favorites
	mux.HandleFunc("POST /api/sessions/{sessionID}/rsvps", auth(c.RSVPs.Create))
	mux.HandleFunc("GET /api/sessions/{sessionID}/rsvp", auth(c.RSVPs.Viewer))
	mux.HandleFunc("DELETE /api/rsvps/{rsvpID}", auth(c.RSVPs.Delete))
	mux.HandleFunc("GET /api/rsvps/{rsvpID}/qr", auth(c.RSVPs.CheckInCode))
	mux.HandleFunc("POST /api/rsvps/check-in", auth(c.RSVPs.CheckIn))
	mux.HandleFunc("POST /api/sessions/{sessionID}/favorite", auth(c.Favorites.Add))
	mux.HandleFunc("DELETE /api/sessions/{sessionID}/favorite", auth(c.Favorites.Remove))
	mux.HandleFunc("GET /api/favorites", auth(c.Favorites.List))

	// Ticketing vendor proxy
	mux.HandleFunc("POST /api/pretix-create-event", auth(c.Ticketing.CreateEvent))
	mux.HandleFunc("POST /api/pretix-create-subevent", auth(c.Ticketing.CreateSubEvent))
	mux.HandleFunc("POST /api/pretix-create-quota", auth(c.Ticketing.CreateQuota))

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/passport/requests", c.Auth.RequestProof)
	mux.HandleFunc("POST /auth/passport/login", c.Auth.PassportLogin)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
