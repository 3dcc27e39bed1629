package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"conferencesessions/internal/domain"
)

const badgeSize = 256

type checkInPayload struct {
	RSVPID    int64  `json:"rsvp"`
	SessionID int64  `json:"session"`
	UserID    string `json:"user"`
}

// CheckInEncoder renders RSVPs as PNG QR codes carrying an HMAC-signed payload.
type CheckInEncoder struct {
	secret []byte
}

// NewCheckInEncoder returns an encoder signing payloads with secret.
func NewCheckInEncoder(secret string) *CheckInEncoder {
	hashed := sha256.Sum256([]byte(secret))
	return &CheckInEncoder{secret: hashed[:]}
}

// Encode returns a PNG of the signed payload.
func (e *CheckInEncoder) Encode(rsvp *domain.RSVP) ([]byte, error) {
	token, err := e.Token(rsvp)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, badgeSize)
}

// Token returns the signed text encoded in the QR code: base64url(payload) "." base64url(mac).
func (e *CheckInEncoder) Token(rsvp *domain.RSVP) (string, error) {
	data, err := json.Marshal(checkInPayload{RSVPID: rsvp.ID, SessionID: rsvp.SessionID, UserID: rsvp.UserID})
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(data)
	return body + "." + base64.RawURLEncoding.EncodeToString(e.sign(body)), nil
}

// Verify checks a token produced by Token and returns the RSVP it names.
func (e *CheckInEncoder) Verify(token string) (*domain.RSVP, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, errors.New("malformed check-in token")
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac, e.sign(body)) {
		return nil, errors.New("invalid check-in signature")
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("decode check-in payload: %w", err)
	}
	var p checkInPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode check-in payload: %w", err)
	}
	return &domain.RSVP{ID: p.RSVPID, SessionID: p.SessionID, UserID: p.UserID}, nil
}

func (e *CheckInEncoder) sign(body string) []byte {
	m := hmac.New(sha256.New, e.secret)
	m.Write([]byte(body))
	return m.Sum(nil)
}
