package base

const (
	ServiceName    = "inboxpilot"
	ServiceVersion = "1.0.0"

	// GmailUser addresses the mailbox of whoever owns the OAuth token.
	GmailUser = "me"

	// DefaultInboxSize matches the page the web client renders.
	DefaultInboxSize = 10
)

// Context locals shared between middleware and handlers.
const (
	LocalCredentials = "credentials"
)
