package passport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"conferencesessions/internal/domain"
)

type participantClient struct {
	client    *http.Client
	serverURL string
}

// NewParticipantFetcher returns a fetcher that calls the passport server.
func NewParticipantFetcher(serverURL string, client *http.Client) domain.ParticipantFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &participantClient{client: client, serverURL: strings.TrimSuffix(serverURL, "/")}
}

func (f *participantClient) FetchParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: participant id is not a uuid", domain.ErrInvalidInput)
	}
	endpoint := fmt.Sprintf("%s/zuzalu/participant/%s", f.serverURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("passport server returned status: %d", resp.StatusCode)
	}

	var p domain.Participant
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode participant: %w", err)
	}
	if p.UUID == "" {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
