// Package provider adapts the Gmail API to the handful of mailbox operations
// the handlers need. A Client is scoped to one account and one request.
package provider

import (
	"context"

	"aaronromeo.com/inboxpilot/pkg/models/credentials"
	"aaronromeo.com/inboxpilot/pkg/models/message"
)

// Format selects how much of a message GetMessage retrieves.
type Format string

const (
	FormatMetadata Format = "metadata"
	FormatFull     Format = "full"
)

// Client is the narrow mail surface required by inboxpilot.
type Client interface {
	ListInbox(ctx context.Context, max int) ([]message.ID, error)
	GetMessage(ctx context.Context, id message.ID, format Format) (message.Detail, error)
	SendRaw(ctx context.Context, threadID string, raw []byte) (message.ID, error)
	ModifyLabels(ctx context.Context, id message.ID, add, remove []message.Label) error
}

// Factory builds a Client from a session's credentials. Clients are never
// cached across requests.
type Factory interface {
	Build(ctx context.Context, creds credentials.Set) (Client, error)
}

// Authenticator runs the OAuth2 authorization-code flow.
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (credentials.Set, error)
}
