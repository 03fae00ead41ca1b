package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rohits-web03/cloudvault/internal/utils"
)

const stateTTL = 10 * time.Minute

var errInvalidState = errors.New("invalid oauth state")

type oauthState struct {
	Flow    string `json:"flow"`
	Nonce   string `json:"nonce"`
	Expires int64  `json:"exp"`
}

// stateCodec signs the OAuth state so the callback can trust the flow it carries.
type stateCodec struct {
	secret []byte
	now    func() time.Time
}

func newStateCodec(secret string) *stateCodec {
	return &stateCodec{secret: []byte(secret), now: time.Now}
}

// Encode returns payload.signature, both base64url.
func (c *stateCodec) Encode(flow string) (string, error) {
	nonce, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}
	payload, err := json.Marshal(oauthState{
		Flow:    flow,
		Nonce:   nonce,
		Expires: c.now().Add(stateTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + c.sign(encoded), nil
}

func (c *stateCodec) Decode(state string) (string, error) {
	encoded, sig, ok := strings.Cut(state, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(c.sign(encoded))) {
		return "", errInvalidState
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errInvalidState
	}
	var data oauthState
	if err := json.Unmarshal(payload, &data); err != nil {
		return "", errInvalidState
	}
	if c.now().Unix() > data.Expires {
		return "", fmt.Errorf("%w: expired", errInvalidState)
	}
	return data.Flow, nil
}

func (c *stateCodec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
