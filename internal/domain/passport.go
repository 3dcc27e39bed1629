package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// SignatureProofType is the only proof type accepted at login.
const SignatureProofType = "semaphore-signature-pcd"

// ErrProofRejected is returned when the passport verifier says a proof does not hold.
var ErrProofRejected = errors.New("proof rejected")

// LoginMessage is the message a participant signs to answer a proof request.
// Binding the request state into it stops a proof from being replayed against another request.
func LoginMessage(participantUUID, state string) string {
	return participantUUID + ":" + state
}

// ParseLoginMessage splits a signed login message into the participant uuid and request state.
func ParseLoginMessage(msg string) (participantUUID, state string, ok bool) {
	participantUUID, state, ok = strings.Cut(msg, ":")
	if !ok || participantUUID == "" || state == "" {
		return "", "", false
	}
	return participantUUID, state, true
}

// Participant is the record the passport server keeps for a verified attendee.
// swagger:model Participant
type Participant struct {
	UUID       string `json:"uuid"`
	Commitment string `json:"commitment"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Residence  string `json:"residence"`
	OrderID    string `json:"order_id"`
}

// SignatureClaim is what a decoded signature proof asserts.
type SignatureClaim struct {
	IdentityCommitment string
	SignedMessage      string
	NullifierHash      string
}

// ProofRequest is a pending, single-use request for an identity proof.
// swagger:model ProofRequest
type ProofRequest struct {
	State     string    `json:"state"`
	ProofURL  string    `json:"proof_url"`
	PopupURL  string    `json:"popup_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProofDecoder decodes an encoded proof into its claim. Implementations reject proofs of the
// wrong type or with missing claim fields.
type ProofDecoder interface {
	Decode(encoded string) (*SignatureClaim, error)
}

// ProofVerifier checks the zero-knowledge proof carried by an encoded proof.
type ProofVerifier interface {
	Verify(ctx context.Context, encoded string) error
}

// ParticipantFetcher fetches participants from the passport server.
type ParticipantFetcher interface {
	FetchParticipant(ctx context.Context, uuid string) (*Participant, error)
}

// ProofRequestRepository stores hashed request states until they are consumed or expire.
type ProofRequestRepository interface {
	Create(ctx context.Context, stateHash string, expiresAt time.Time) error
	Consume(ctx context.Context, stateHash string) (consumed bool, err error)
}

// PassportService runs the identity-proof login.
type PassportService interface {
	RequestProof(ctx context.Context) (*ProofRequest, error)
	Login(ctx context.Context, origin, state, encodedProof string) (token string, user *User, err error)
}
