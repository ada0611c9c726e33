// Package handlers exposes the mailbox over HTTP. Every route except the
// public ones runs behind RequireCredentials, which loads the caller's
// credential set from the session before any handler logic runs.
package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"aaronromeo.com/inboxpilot/pkg/apperr"
	"aaronromeo.com/inboxpilot/pkg/base"
	"aaronromeo.com/inboxpilot/pkg/commands"
	"aaronromeo.com/inboxpilot/pkg/models/credentials"
	"aaronromeo.com/inboxpilot/pkg/models/message"
	"aaronromeo.com/inboxpilot/pkg/provider"
	"aaronromeo.com/inboxpilot/pkg/services"
)

// SessionStore is the part of the session layer the handlers rely on.
type SessionStore interface {
	Store(c *fiber.Ctx, creds credentials.Set) error
	Retrieve(c *fiber.Ctx) (credentials.Set, bool, error)
	Clear(c *fiber.Ctx) error
	SetState(c *fiber.Ctx, state string) error
	TakeState(c *fiber.Ctx) (string, error)
	Snapshot(c *fiber.Ctx) (map[string]any, error)
}

type Handler struct {
	logger     *slog.Logger
	sessions   SessionStore
	auth       provider.Authenticator
	factory    provider.Factory
	mailbox    services.MailboxService
	afterLogin string
	newState   func() string
	star       commands.LabelCommand
	spam       commands.LabelCommand
	unspam     commands.LabelCommand
}

type Option func(*Handler) error

func New(opts ...Option) (*Handler, error) {
	h := Handler{newState: uuid.NewString}
	for _, opt := range opts {
		if err := opt(&h); err != nil {
			return nil, err
		}
	}

	if h.logger == nil {
		return nil, errors.New("requires slogger")
	}
	if h.sessions == nil {
		return nil, errors.New("requires session store")
	}
	if h.auth == nil {
		return nil, errors.New("requires authenticator")
	}
	if h.factory == nil {
		return nil, errors.New("requires client factory")
	}
	if h.mailbox == nil {
		return nil, errors.New("requires mailbox service")
	}

	h.star = commands.NewStarCommand(h.logger)
	h.spam = commands.NewSpamCommand(h.logger)
	h.unspam = commands.NewUnspamCommand(h.logger)
	return &h, nil
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) error {
		h.logger = logger
		return nil
	}
}

func WithSessions(s SessionStore) Option {
	return func(h *Handler) error {
		h.sessions = s
		return nil
	}
}

func WithAuthenticator(a provider.Authenticator) Option {
	return func(h *Handler) error {
		h.auth = a
		return nil
	}
}

func WithFactory(f provider.Factory) Option {
	return func(h *Handler) error {
		h.factory = f
		return nil
	}
}

func WithMailboxService(s services.MailboxService) Option {
	return func(h *Handler) error {
		h.mailbox = s
		return nil
	}
}

// WithPostLoginRedirect makes the OAuth callback redirect the browser to url
// instead of answering with JSON.
func WithPostLoginRedirect(url string) Option {
	return func(h *Handler) error {
		h.afterLogin = url
		return nil
	}
}

// WithStateGenerator replaces the OAuth state source. Tests use it to get
// predictable values.
func WithStateGenerator(fn func() string) Option {
	return func(h *Handler) error {
		if fn == nil {
			return errors.New("state generator must not be nil")
		}
		h.newState = fn
		return nil
	}
}

// Home is a plain-text liveness probe.
func (h *Handler) Home(c *fiber.Ctx) error {
	return c.SendString("Welcome to Email Manager!")
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Session dumps the session for debugging with secrets masked.
func (h *Handler) Session(c *fiber.Ctx) error {
	snap, err := h.sessions.Snapshot(c)
	if err != nil {
		return apperr.Internal("read session", err)
	}
	return c.JSON(snap)
}

func (h *Handler) CheckAuth(c *fiber.Ctx) error {
	_, ok, err := h.sessions.Retrieve(c)
	if err != nil {
		return apperr.Internal("read session", err)
	}
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{"authenticated": true})
}

// Login sends the browser to the consent screen with a fresh state value.
func (h *Handler) Login(c *fiber.Ctx) error {
	state := h.newState()
	if err := h.sessions.SetState(c, state); err != nil {
		return apperr.Internal("store oauth state", err)
	}
	return c.Redirect(h.auth.AuthCodeURL(state), fiber.StatusFound)
}

// Callback completes the authorization-code exchange. The state must match
// the one issued by Login in this session and is consumed either way.
func (h *Handler) Callback(c *fiber.Ctx) error {
	expected, err := h.sessions.TakeState(c)
	if err != nil {
		return apperr.Internal("read oauth state", err)
	}

	if denied := c.Query("error"); denied != "" {
		return apperr.Validation("Authorization denied: " + denied)
	}
	if expected == "" || c.Query("state") != expected {
		return apperr.Validation("Invalid OAuth state")
	}

	code := c.Query("code")
	if code == "" {
		return apperr.Validation("Missing authorization code")
	}

	creds, err := h.auth.Exchange(c.UserContext(), code)
	if err != nil {
		h.logger.ErrorContext(c.UserContext(), "Failed to exchange authorization code",
			slog.String("error", err.Error()))
		return apperr.Provider("exchange code", err)
	}

	if err := h.sessions.Store(c, creds); err != nil {
		return apperr.Internal("store credentials", err)
	}

	h.logger.InfoContext(c.UserContext(), "User logged in")
	if h.afterLogin != "" {
		return c.Redirect(h.afterLogin, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{"message": "Login successful"})
}

// Logout always succeeds, with or without a session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Clear(c); err != nil {
		h.logger.WarnContext(c.UserContext(), "Failed to clear session",
			slog.String("error", err.Error()))
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// RequireCredentials rejects the request with 401 unless the session holds
// a credential set. On success the set is available to the next handler.
func (h *Handler) RequireCredentials(c *fiber.Ctx) error {
	creds, ok, err := h.sessions.Retrieve(c)
	if err != nil {
		return apperr.Internal("read session", err)
	}
	if !ok {
		return apperr.Unauthorized()
	}
	c.Locals(base.LocalCredentials, creds)
	return c.Next()
}

// client builds a provider client for this request only.
func (h *Handler) client(c *fiber.Ctx) (provider.Client, error) {
	creds, ok := c.Locals(base.LocalCredentials).(credentials.Set)
	if !ok {
		return nil, apperr.Unauthorized()
	}
	client, err := h.factory.Build(c.UserContext(), creds)
	if err != nil {
		return nil, apperr.Provider("build client", err)
	}
	return client, nil
}

func (h *Handler) Inbox(c *fiber.Ctx) error {
	client, err := h.client(c)
	if err != nil {
		return err
	}
	summaries, err := h.mailbox.ListInbox(c.UserContext(), client)
	if err != nil {
		return err
	}
	return c.JSON(summaries)
}

func (h *Handler) Email(c *fiber.Ctx) error {
	id := messageID(c)
	if id == "" {
		return apperr.Validation("Invalid message id")
	}
	client, err := h.client(c)
	if err != nil {
		return err
	}
	detail, err := h.mailbox.GetEmail(c.UserContext(), client, id)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

func (h *Handler) Send(c *fiber.Ctx) error {
	var req services.SendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	client, err := h.client(c)
	if err != nil {
		return err
	}
	if _, err := h.mailbox.Send(c.UserContext(), client, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Email sent successfully"})
}

func (h *Handler) Compose(c *fiber.Ctx) error {
	var req services.ComposeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	client, err := h.client(c)
	if err != nil {
		return err
	}
	if _, err := h.mailbox.Compose(c.UserContext(), client, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Email sent successfully"})
}

// Label returns the handler for one label command on /<name>/:id.
func (h *Handler) Label(cmd commands.LabelCommand) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := messageID(c)
		if id == "" {
			return apperr.Validation("Invalid message id")
		}
		client, err := h.client(c)
		if err != nil {
			return err
		}
		if err := h.mailbox.ApplyLabel(c.UserContext(), client, cmd, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": cmd.SuccessMessage()})
	}
}

// NotFound answers any route nothing else matched.
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not Found"})
}

// messageID copies the route id out of the request buffer, which fasthttp
// reuses once the handler returns.
func messageID(c *fiber.Ctx) message.ID {
	return message.ID(utils.CopyString(c.Params("id")))
}
