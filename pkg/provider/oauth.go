package provider

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"aaronromeo.com/inboxpilot/pkg/models/credentials"
)

// Scopes cover reading the mailbox and toggling STARRED/SPAM.
var Scopes = []string{
	gmail.GmailModifyScope,
	gmail.GmailReadonlyScope,
}

// NewOAuthConfig builds the client configuration from explicit values.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfigFromJSON reads a Google client-secrets file.
func OAuthConfigFromJSON(data []byte, redirectURL string) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, errors.Wrap(err, "parsing client secrets")
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return cfg, nil
}

type OAuthAuthenticator struct {
	config *oauth2.Config
}

func NewAuthenticator(config *oauth2.Config) *OAuthAuthenticator {
	return &OAuthAuthenticator{config: config}
}

// AuthCodeURL asks for offline access so the callback receives a refresh token.
func (a *OAuthAuthenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (a *OAuthAuthenticator) Exchange(ctx context.Context, code string) (credentials.Set, error) {
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return credentials.Set{}, wrap("exchange code", err)
	}
	return credentials.FromToken(tok, a.config), nil
}

var _ Authenticator = (*OAuthAuthenticator)(nil)
