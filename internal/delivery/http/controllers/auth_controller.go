package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "conferencesessions/internal/delivery/http/helpers"
	"conferencesessions/internal/domain"
)

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate implements Validator.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// PassportLoginRequest is the request body for POST /auth/passport/login. EncodedPCD is the
// serialized proof the passport popup posted back.
type PassportLoginRequest struct {
	State      string `json:"state"`
	EncodedPCD string `json:"encodedPcd"`
}

// LoginResponse is the response body for both login endpoints.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

type AuthController struct {
	Logger   *slog.Logger
	Service  domain.AuthService
	Passport domain.PassportService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, passport domain.PassportService) *AuthController {
	return &AuthController{
		Logger:   logger,
		Service:  svc,
		Passport: passport,
	}
}

// SignUp godoc
// @Summary Sign up an organizer
// @Description Create an organizer account with email, password, and name. Password is stored hashed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "email already registered")
			return
		}
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a JWT containing user id, email, and roles.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data contains token and token_type"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid credentials")
			return
		}
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

// RequestProof godoc
// @Summary Start a passport login
// @Description Issues a single-use state and the URLs that ask the passport for a signed participant id.
// @Tags auth
// @Produce json
// @Success 201 {object} helpers.APIResponse "data contains state, proof_url, popup_url and expires_at"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/passport/requests [post]
func (c *AuthController) RequestProof(w http.ResponseWriter, r *http.Request) {
	req, err := c.Passport.RequestProof(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, req)
}

// PassportLogin godoc
// @Summary Log in with a passport proof
// @Description Verifies the proof for a pending state. Requests must come from an allowed Origin. Every other failure is a 401 with a generic message.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body PassportLoginRequest true "State and encoded proof"
// @Success 200 {object} helpers.APIResponse "data contains token and user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /auth/passport/login [post]
func (c *AuthController) PassportLogin(w http.ResponseWriter, r *http.Request) {
	var req PassportLoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Passport.Login(r.Context(), r.Header.Get("Origin"), req.State, req.EncodedPCD)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "origin not allowed")
			return
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "passport login failed")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}
