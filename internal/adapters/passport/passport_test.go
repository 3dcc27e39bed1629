package passport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencesessions/internal/domain"
)

const participantUUID = "0b8a7c1e-6a3f-4f5e-9c64-2d0e3b1a9f10"

func encodePCD(t *testing.T, pcdType, commitment, message string) string {
	t.Helper()
	inner, err := json.Marshal(map[string]any{
		"id": "pcd-1",
		"claim": map[string]string{
			"identityCommitment": commitment,
			"signedMessage":      message,
			"nullifierHash":      "42",
		},
		"proof": []string{"1", "2"},
	})
	require.NoError(t, err)
	outer, err := json.Marshal(map[string]string{"type": pcdType, "pcd": string(inner)})
	require.NoError(t, err)
	return string(outer)
}

func TestDecoder_Decode(t *testing.T) {
	d := NewDecoder()

	claim, err := d.Decode(encodePCD(t, domain.SignatureProofType, "12345", participantUUID))
	require.NoError(t, err)
	assert.Equal(t, "12345", claim.IdentityCommitment)
	assert.Equal(t, participantUUID, claim.SignedMessage)

	tests := []struct {
		name    string
		encoded string
	}{
		{"not json", "{"},
		{"wrong type", encodePCD(t, "semaphore-group-pcd", "12345", participantUUID)},
		{"no commitment", encodePCD(t, domain.SignatureProofType, "", participantUUID)},
		{"no message", encodePCD(t, domain.SignatureProofType, "12345", "")},
		{"inner not json", `{"type":"semaphore-signature-pcd","pcd":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Decode(tt.encoded)
			assert.Error(t, err)
		})
	}
}

func TestParticipantFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/zuzalu/participant/"+participantUUID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"uuid":"` + participantUUID + `","commitment":"12345","email":"ada@example.com","name":"Ada","role":"resident"}`))
	}))
	defer srv.Close()

	f := NewParticipantFetcher(srv.URL+"/", srv.Client())

	p, err := f.FetchParticipant(t.Context(), participantUUID)
	require.NoError(t, err)
	assert.Equal(t, "12345", p.Commitment)
	assert.Equal(t, "ada@example.com", p.Email)

	_, err = f.FetchParticipant(t.Context(), "5f0c6f1a-0000-4000-8000-000000000000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.FetchParticipant(t.Context(), "../admin")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProofURLs(t *testing.T) {
	proofURL, popupURL, err := ProofURLs("https://zupass.org/", "https://app.example.com/popup", "state-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(proofURL, "https://zupass.org/#/prove?request="))
	raw, err := url.QueryUnescape(strings.TrimPrefix(proofURL, "https://zupass.org/#/prove?request="))
	require.NoError(t, err)
	var req proveRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, "semaphore-signature-pcd", req.PCDType)
	assert.Equal(t, "https://app.example.com/popup?state=state-1", req.ReturnURL)

	popup, err := url.Parse(popupURL)
	require.NoError(t, err)
	assert.Equal(t, "/popup", popup.Path)
	assert.Equal(t, proofURL, popup.Query().Get("proofUrl"))
}

func TestProofVerifier(t *testing.T) {
	encoded := encodePCD(t, domain.SignatureProofType, "12345", domain.LoginMessage(participantUUID, "state-1"))

	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantReject bool
	}{
		{"verified", http.StatusOK, `{"verified":true}`, false, false},
		{"bogus proof", http.StatusOK, `{"verified":false,"message":"invalid groth16 proof"}`, true, true},
		{"verifier down", http.StatusBadGateway, `upstream`, true, false},
		{"unreadable answer", http.StatusOK, `<html>`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var buf strings.Builder
				_, _ = io.Copy(&buf, r.Body)
				got = buf.String()
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewProofVerifier(srv.URL+"/verify", srv.Client()).Verify(t.Context(), encoded)
			assert.Equal(t, encoded, got, "proof is forwarded verbatim")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantReject, errors.Is(err, domain.ErrProofRejected))
		})
	}
}

func TestProofVerifier_FailsClosed(t *testing.T) {
	encoded := encodePCD(t, domain.SignatureProofType, "12345", participantUUID)

	err := NewProofVerifier("", nil).Verify(t.Context(), encoded)
	assert.EqualError(t, err, "proof verification is not configured")

	err = NewProofVerifier("http://127.0.0.1:1/verify", nil).Verify(t.Context(), "not json")
	assert.True(t, errors.Is(err, domain.ErrProofRejected))
}
