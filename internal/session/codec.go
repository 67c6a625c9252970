package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// CookieName is the cookie the session bag travels in.
const CookieName = "_storefront"

// Bag holds the per-visitor preference state carried across requests.
// JS is a tri-state: nil means no preference has been recorded, which is
// distinct from an explicit false.
type Bag struct {
	JS *bool `json:"js,omitempty"`
}

// Codec signs and verifies session bags. Tokens have the form
// base64url(json(bag)) + "." + base64url(hmac-sha256(data)).
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	return &Codec{secret: secret}, nil
}

// Decode extracts the session bag from a request. It never fails: a missing,
// malformed, or tampered cookie decodes to an empty bag. The bag carries only
// a UX preference, so failing open loses nothing of value.
func (c *Codec) Decode(r *http.Request) *Bag {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return &Bag{}
	}
	return c.DecodeValue(cookie.Value)
}

// DecodeValue decodes a raw token value, falling back to an empty bag.
func (c *Codec) DecodeValue(token string) *Bag {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return &Bag{}
	}

	encoded := parts[0]
	receivedSig, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		log.Debug().Msg("session token signature is not valid base64")
		return &Bag{}
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	expectedSig := mac.Sum(nil)

	if !hmac.Equal(receivedSig, expectedSig) {
		log.Debug().Msg("session token signature mismatch, discarding bag")
		return &Bag{}
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return &Bag{}
	}

	var bag Bag
	if err := json.Unmarshal(data, &bag); err != nil {
		log.Debug().Msg("session token payload is not valid JSON")
		return &Bag{}
	}

	return &bag
}

// Encode signs the bag into a cookie. The output is deterministic for a
// given bag, so re-issuing an unchanged session is idempotent.
func (c *Codec) Encode(bag *Bag) (*http.Cookie, error) {
	data, err := json.Marshal(bag)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session bag: %w", err)
	}

	encoded := base64.URLEncoding.EncodeToString(data)

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	signature := mac.Sum(nil)

	return &http.Cookie{
		Name:     CookieName,
		Value:    encoded + "." + base64.URLEncoding.EncodeToString(signature),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}
