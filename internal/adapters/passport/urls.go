package passport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

type proveRequest struct {
	Type      string         `json:"type"`
	ReturnURL string         `json:"returnUrl"`
	Args      map[string]any `json:"args"`
	PCDType   string         `json:"pcdType"`
	Options   map[string]any `json:"options"`
}

// ProofURLs builds the passport prove URL for a signed-uuid request and the popup URL that
// opens it. The state travels on the return URL so the popup can hand it back at login, and the
// participant signs it along with their uuid.
func ProofURLs(passportURL, returnURL, state string) (proofURL, popupURL string, err error) {
	ret, err := url.Parse(returnURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid return url: %w", err)
	}
	q := ret.Query()
	q.Set("state", state)
	ret.RawQuery = q.Encode()

	req := proveRequest{
		Type:      "Get",
		ReturnURL: ret.String(),
		PCDType:   "semaphore-signature-pcd",
		Args: map[string]any{
			"identity": map[string]any{
				"argumentType": "PCD",
				"pcdType":      "semaphore-identity-pcd",
				"userProvided": true,
			},
			"signedMessage": map[string]any{
				"argumentType": "String",
				"userProvided": true,
				"description":  "Sign your participant id followed by :" + state,
			},
		},
		Options: map[string]any{
			"title":              "Sign in",
			"description":        "Reveal your participant id to sign in.",
			"genericProveScreen": true,
		},
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return "", "", err
	}
	proofURL = strings.TrimSuffix(passportURL, "/") + "/#/prove?request=" + url.QueryEscape(string(raw))

	popup := *ret
	popup.RawQuery = url.Values{"proofUrl": {proofURL}}.Encode()
	return proofURL, popup.String(), nil
}
