package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"conferencesessions/internal/delivery/http/helpers"
	"conferencesessions/internal/domain"
)

// VendorErrorResponse is the flat error body of the ticketing proxy endpoints.
type VendorErrorResponse struct {
	Message string `json:"message"`
}

var (
	internalServerError = VendorErrorResponse{Message: "Internal server error"}
	invalidRequest      = VendorErrorResponse{Message: "Invalid request"}
)

// CreateSubEventRequest is the body of POST /api/pretix-create-subevent.
type CreateSubEventRequest struct {
	Name      string       `json:"name"`
	StartDate domain.Date  `json:"startDate"`
	EndDate   *domain.Date `json:"endDate"`
	Slug      string       `json:"slug"`
	ItemID    int64        `json:"itemId"`
}

// Validate implements Validator.
func (c CreateSubEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.StartDate.IsZero() {
		errs = append(errs, "startDate is required")
	}
	if c.Slug == "" {
		errs = append(errs, "slug is required")
	}
	return errs
}

// CreateQuotaRequest is the body of POST /api/pretix-create-quota.
type CreateQuotaRequest struct {
	Name         string       `json:"name"`
	TicketAmount TicketAmount `json:"ticketAmount"`
	SubEventID   int64        `json:"subEventId"`
	Slug         string       `json:"slug"`
	ItemID       int64        `json:"itemId"`
}

// TicketingController proxies the ticketing vendor. Vendor error bodies are never passed
// through: every failure is a flat 500.
type TicketingController struct {
	Logger *slog.Logger
	Client domain.TicketingClient
}

func NewTicketingController(logger *slog.Logger, client domain.TicketingClient) *TicketingController {
	return &TicketingController{Logger: logger, Client: client}
}

// CreateEvent godoc
// @Summary Create a ticketing vendor event
// @Description Forwards the body verbatim to the vendor and returns its JSON.
// @Tags ticketing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object "vendor event"
// @Failure 500 {object} controllers.VendorErrorResponse
// @Router /api/pretix-create-event [post]
func (c *TicketingController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, helpers.MaxBodyBytes))
	if err != nil || !json.Valid(body) {
		helpers.WriteJSON(w, http.StatusBadRequest, invalidRequest)
		return
	}
	resp, err := c.Client.CreateEvent(r.Context(), body)
	if err != nil {
		c.vendorFailed(w, r, err)
		return
	}
	writeRaw(w, resp)
}

// CreateSubEvent godoc
// @Summary Create a ticketing vendor sub-event
// @Tags ticketing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSubEventRequest true "Sub-event"
// @Success 200 {object} object "vendor sub-event"
// @Failure 500 {object} controllers.VendorErrorResponse
// @Router /api/pretix-create-subevent [post]
func (c *TicketingController) CreateSubEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateSubEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	end := req.StartDate.Time
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end = req.EndDate.Time
	}
	resp, _, err := c.Client.CreateSubEvent(r.Context(), domain.SubEventRequest{
		Name:      req.Name,
		StartDate: req.StartDate.Time,
		EndDate:   end,
		Slug:      req.Slug,
		ItemID:    req.ItemID,
	})
	if err != nil {
		c.vendorFailed(w, r, err)
		return
	}
	writeRaw(w, resp)
}

// CreateQuota godoc
// @Summary Create a ticketing vendor quota
// @Tags ticketing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateQuotaRequest true "Quota"
// @Success 200 {object} object "vendor quota"
// @Failure 500 {object} controllers.VendorErrorResponse
// @Router /api/pretix-create-quota [post]
func (c *TicketingController) CreateQuota(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotaRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	amount, err := parsePositive(string(req.TicketAmount))
	if err != nil || req.SubEventID <= 0 || req.Slug == "" {
		helpers.WriteJSON(w, http.StatusBadRequest, invalidRequest)
		return
	}
	resp, _, err := c.Client.CreateQuota(r.Context(), domain.QuotaRequest{
		Name:         req.Name,
		TicketAmount: amount,
		SubEventID:   req.SubEventID,
		Slug:         req.Slug,
		ItemID:       req.ItemID,
	})
	if err != nil {
		c.vendorFailed(w, r, err)
		return
	}
	writeRaw(w, resp)
}

func (c *TicketingController) vendorFailed(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "ticketing request failed", "path", r.URL.Path, "err", err)
	helpers.WriteJSON(w, http.StatusInternalServerError, internalServerError)
}

func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
