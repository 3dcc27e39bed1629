package passport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"conferencesessions/internal/domain"
)

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

type proofVerifier struct {
	client    *http.Client
	verifyURL string
}

// NewProofVerifier returns a verifier that posts serialized proofs to the passport verify
// endpoint. With an empty verifyURL every proof is rejected.
func NewProofVerifier(verifyURL string, client *http.Client) domain.ProofVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &proofVerifier{client: client, verifyURL: verifyURL}
}

func (v *proofVerifier) Verify(ctx context.Context, encoded string) error {
	if v.verifyURL == "" {
		return errors.New("proof verification is not configured")
	}
	if !json.Valid([]byte(encoded)) {
		return fmt.Errorf("%w: proof is not json", domain.ErrProofRejected)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, bytes.NewReader([]byte(encoded)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to verify proof: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("passport verifier returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode verify response: %w", err)
	}
	if !out.Verified {
		if out.Message != "" {
			return fmt.Errorf("%w: %s", domain.ErrProofRejected, out.Message)
		}
		return domain.ErrProofRejected
	}
	return nil
}
