package pretix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"conferencesessions/internal/domain"
)

const dateTimeLayout = time.RFC3339

// Config holds the vendor API location and credentials.
type Config struct {
	BaseURL   string
	Organizer string
	Token     string
}

type client struct {
	http      *http.Client
	baseURL   string
	organizer string
	token     string
}

// NewClient returns a TicketingClient for the pretix REST API. A nil http client gets a
// 10 second timeout.
func NewClient(cfg Config, httpClient *http.Client) domain.TicketingClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &client{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		organizer: cfg.Organizer,
		token:     cfg.Token,
	}
}

type localizedName struct {
	En string `json:"en"`
}

type subEventPayload struct {
	Name                    localizedName `json:"name"`
	Active                  bool          `json:"active"`
	DateFrom                string        `json:"date_from"`
	DateTo                  string        `json:"date_to"`
	ItemPriceOverrides      []any         `json:"item_price_overrides"`
	VariationPriceOverrides []any         `json:"variation_price_overrides"`
}

type quotaPayload struct {
	Name       string  `json:"name"`
	Size       int     `json:"size"`
	Items      []int64 `json:"items"`
	Variations []int64 `json:"variations"`
	SubEvent   int64   `json:"subevent"`
}

type createdResource struct {
	ID int64 `json:"id"`
}

func (c *client) eventsURL() string {
	return fmt.Sprintf("%s/organizers/%s/events/", c.baseURL, url.PathEscape(c.organizer))
}

func (c *client) eventURL(slug, resource string) string {
	return fmt.Sprintf("%s/organizers/%s/events/%s/%s/", c.baseURL, url.PathEscape(c.organizer), url.PathEscape(slug), resource)
}

// CreateEvent forwards payload verbatim.
func (c *client) CreateEvent(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, c.eventsURL(), payload)
}

func (c *client) CreateSubEvent(ctx context.Context, req domain.SubEventRequest) (json.RawMessage, int64, error) {
	if req.Slug == "" {
		return nil, 0, fmt.Errorf("%w: event slug is required", domain.ErrInvalidInput)
	}
	end := req.EndDate
	if end.IsZero() {
		end = req.StartDate
	}
	body, err := json.Marshal(subEventPayload{
		Name:                    localizedName{En: req.Name},
		Active:                  true,
		DateFrom:                req.StartDate.UTC().Format(dateTimeLayout),
		DateTo:                  end.UTC().Format(dateTimeLayout),
		ItemPriceOverrides:      []any{},
		VariationPriceOverrides: []any{},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode subevent: %w", err)
	}
	return c.create(ctx, c.eventURL(req.Slug, "subevents"), body)
}

func (c *client) CreateQuota(ctx context.Context, req domain.QuotaRequest) (json.RawMessage, int64, error) {
	if req.Slug == "" {
		return nil, 0, fmt.Errorf("%w: event slug is required", domain.ErrInvalidInput)
	}
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("subevent-%d", req.SubEventID)
	}
	body, err := json.Marshal(quotaPayload{
		Name:       name,
		Size:       req.TicketAmount,
		Items:      []int64{req.ItemID},
		Variations: []int64{},
		SubEvent:   req.SubEventID,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode quota: %w", err)
	}
	return c.create(ctx, c.eventURL(req.Slug, "quotas"), body)
}

func (c *client) DeleteSubEvent(ctx context.Context, slug string, subEventID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", c.eventURL(slug, "subevents"), subEventID), nil)
	return err
}

func (c *client) DeleteQuota(ctx context.Context, slug string, quotaID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", c.eventURL(slug, "quotas"), quotaID), nil)
	return err
}

func (c *client) create(ctx context.Context, endpoint string, body []byte) (json.RawMessage, int64, error) {
	raw, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, 0, err
	}
	var created createdResource
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to decode response: %v", domain.ErrTicketing, err)
	}
	if created.ID == 0 {
		return nil, 0, fmt.Errorf("%w: response has no id", domain.ErrTicketing)
	}
	return raw, created.ID, nil
}

// do sends the request and returns the response body. Any non-2xx status is an
// ErrTicketing; vendor error bodies are not included in the error.
func (c *client) do(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/javascript")
	req.Header.Set("Authorization", "Token "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrTicketing, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s %s returned status %d", domain.ErrTicketing, method, endpoint, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrTicketing, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return raw, nil
}
