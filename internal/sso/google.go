// Package sso builds identity provider authorization redirects.
package sso

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// NonceLength is the length of the id_token replay nonce.
	NonceLength = 10
	// DefaultState tags the callback as coming from AI onboarding.
	DefaultState = "tj_api_source=ai_onboarding"

	nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Google builds implicit-flow authorization URLs for Google sign-in.
// The application behind appURL owns the /sso/google callback.
type Google struct {
	oauth oauth2.Config
	state string
	nonce func() (string, error)
}

// NewGoogle returns a builder whose redirect target is appURL/sso/google,
// or appURL/sso/google/configID when configID is set.
func NewGoogle(clientID, appURL, configID string) *Google {
	redirect := strings.TrimRight(appURL, "/") + "/sso/google"
	if configID != "" {
		redirect += "/" + configID
	}
	return &Google{
		oauth: oauth2.Config{
			ClientID:    clientID,
			Endpoint:    endpoints.Google,
			RedirectURL: redirect,
			Scopes:      []string{"email", "profile"},
		},
		state: DefaultState,
		nonce: func() (string, error) { return RandomString(NonceLength) },
	}
}

// AuthURL returns a fresh authorization URL with a new nonce.
func (g *Google) AuthURL() (string, error) {
	nonce, err := g.nonce()
	if err != nil {
		return "", err
	}
	return g.oauth.AuthCodeURL(g.state,
		oauth2.SetAuthURLParam("response_type", "id_token"),
		oauth2.SetAuthURLParam("nonce", nonce),
	), nil
}

// RandomString returns n characters drawn uniformly from [A-Za-z0-9]
// using crypto/rand.
func RandomString(n int) (string, error) {
	limit := big.NewInt(int64(len(nonceAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate nonce: %w", err)
		}
		b.WriteByte(nonceAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
