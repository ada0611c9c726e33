// Package credentials holds the OAuth token set a session acts with.
package credentials

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const redacted = "[redacted]"

// Set is everything needed to act as one Gmail account. It lives only in the
// server-side session that created it.
type Set struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// FromToken captures an exchanged token together with the client it was issued to.
func FromToken(tok *oauth2.Token, cfg *oauth2.Config) Set {
	set := Set{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if cfg != nil {
		set.TokenURI = cfg.Endpoint.TokenURL
		set.ClientID = cfg.ClientID
		set.ClientSecret = cfg.ClientSecret
	}
	return set
}

func (s Set) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

// Token returns the oauth2 view of the set.
func (s Set) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// OAuthConfig rebuilds enough client configuration for the token source to
// refresh an expired access token.
func (s Set) OAuthConfig(authURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: s.TokenURI,
		},
	}
}

// Redacted is safe to show to a browser.
func (s Set) Redacted() map[string]any {
	out := map[string]any{
		"token":         mask(s.AccessToken),
		"refresh_token": mask(s.RefreshToken),
		"token_uri":     s.TokenURI,
		"client_id":     s.ClientID,
		"client_secret": mask(s.ClientSecret),
	}
	if !s.Expiry.IsZero() {
		out["expiry"] = s.Expiry.UTC().Format(time.RFC3339)
	}
	return out
}

// Encode serialises the set for session storage.
func (s Set) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "encoding credentials")
	}
	return string(data), nil
}

func Decode(raw string) (Set, error) {
	var s Set
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Set{}, errors.Wrap(err, "decoding credentials")
	}
	return s, nil
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return redacted
}
