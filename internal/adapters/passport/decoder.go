package passport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"conferencesessions/internal/domain"
)

// serializedPCD is the envelope the passport popup posts back.
type serializedPCD struct {
	Type string `json:"type"`
	PCD  string `json:"pcd"`
}

type signaturePCD struct {
	ID    string `json:"id"`
	Claim struct {
		IdentityCommitment string `json:"identityCommitment"`
		SignedMessage      string `json:"signedMessage"`
		NullifierHash      string `json:"nullifierHash"`
	} `json:"claim"`
	Proof json.RawMessage `json:"proof"`
}

type decoder struct{}

// NewDecoder returns a ProofDecoder for serialized semaphore signature proofs. It checks the
// envelope and claim structure. The zero-knowledge proof is checked by the ProofVerifier.
func NewDecoder() domain.ProofDecoder {
	return decoder{}
}

func (decoder) Decode(encoded string) (*domain.SignatureClaim, error) {
	var env serializedPCD
	if err := json.Unmarshal([]byte(encoded), &env); err != nil {
		return nil, fmt.Errorf("decode pcd envelope: %w", err)
	}
	if env.Type != domain.SignatureProofType {
		return nil, fmt.Errorf("unsupported pcd type %q", env.Type)
	}
	var pcd signaturePCD
	if err := json.Unmarshal([]byte(env.PCD), &pcd); err != nil {
		return nil, fmt.Errorf("decode pcd: %w", err)
	}
	claim := &domain.SignatureClaim{
		IdentityCommitment: strings.TrimSpace(pcd.Claim.IdentityCommitment),
		SignedMessage:      strings.TrimSpace(pcd.Claim.SignedMessage),
		NullifierHash:      pcd.Claim.NullifierHash,
	}
	if claim.IdentityCommitment == "" {
		return nil, errors.New("pcd claim has no identity commitment")
	}
	if claim.SignedMessage == "" {
		return nil, errors.New("pcd claim has no signed message")
	}
	if len(pcd.Proof) == 0 {
		return nil, errors.New("pcd has no proof")
	}
	return claim, nil
}
