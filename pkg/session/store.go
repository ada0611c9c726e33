// Package session keeps the per-browser credential set on the server side.
// The browser only ever holds an opaque session id cookie.
package session

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/pkg/errors"

	"aaronromeo.com/inboxpilot/pkg/models/credentials"
)

const (
	keyCredentials = "credentials"
	keyState       = "oauth_state"

	DefaultCookieName = "inboxpilot_session"
	DefaultExpiration = 24 * time.Hour
)

// Config shapes the session cookie.
type Config struct {
	CookieName string
	Expiration time.Duration
	SameSite   string
	Secure     bool
	HTTPOnly   bool
}

// NewStore returns a fiber session store. A nil storage keeps sessions in
// process memory.
func NewStore(cfg Config, storage fiber.Storage) *fibersession.Store {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultExpiration
	}
	if cfg.SameSite == "" {
		cfg.SameSite = fiber.CookieSameSiteLaxMode
	}

	return fibersession.New(fibersession.Config{
		Storage:        storage,
		Expiration:     cfg.Expiration,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieSameSite: cfg.SameSite,
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: cfg.HTTPOnly,
	})
}

// CredentialStore reads and writes the credential set of the session bound
// to a request.
type CredentialStore struct {
	store  *fibersession.Store
	logger *slog.Logger
}

type Option func(*CredentialStore) error

func NewCredentialStore(opts ...Option) (*CredentialStore, error) {
	cs := CredentialStore{}
	for _, opt := range opts {
		if err := opt(&cs); err != nil {
			return nil, err
		}
	}

	if cs.store == nil {
		return nil, errors.New("requires session store")
	}

	if cs.logger == nil {
		return nil, errors.New("requires slogger")
	}

	return &cs, nil
}

func WithStore(store *fibersession.Store) Option {
	return func(cs *CredentialStore) error {
		cs.store = store
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cs *CredentialStore) error {
		cs.logger = logger
		return nil
	}
}

// Store replaces any credential set in the session. The session id is
// rotated so a pre-login cookie never carries credentials.
func (cs *CredentialStore) Store(c *fiber.Ctx, creds credentials.Set) error {
	sess, err := cs.store.Get(c)
	if err != nil {
		return errors.Wrap(err, "loading session")
	}

	encoded, err := creds.Encode()
	if err != nil {
		return err
	}

	if err := sess.Regenerate(); err != nil {
		return errors.Wrap(err, "rotating session id")
	}
	sess.Set(keyCredentials, encoded)

	if err := sess.Save(); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return nil
}

// Retrieve reports false when the session carries no credentials. A value
// that cannot be decoded is treated as absent.
func (cs *CredentialStore) Retrieve(c *fiber.Ctx) (credentials.Set, bool, error) {
	sess, err := cs.store.Get(c)
	if err != nil {
		return credentials.Set{}, false, errors.Wrap(err, "loading session")
	}

	raw, ok := sess.Get(keyCredentials).(string)
	if !ok || raw == "" {
		return credentials.Set{}, false, nil
	}

	creds, err := credentials.Decode(raw)
	if err != nil {
		cs.logger.WarnContext(c.UserContext(), "Discarding unreadable session credentials",
			slog.String("error", err.Error()))
		return credentials.Set{}, false, nil
	}
	if creds.IsZero() {
		return credentials.Set{}, false, nil
	}
	return creds, true, nil
}

// Clear destroys the session. Clearing a session that holds nothing is not
// an error.
func (cs *CredentialStore) Clear(c *fiber.Ctx) error {
	sess, err := cs.store.Get(c)
	if err != nil {
		return errors.Wrap(err, "loading session")
	}
	if sess.Fresh() {
		return nil
	}
	if err := sess.Destroy(); err != nil {
		return errors.Wrap(err, "destroying session")
	}
	return nil
}

// SetState remembers the OAuth state parameter issued at login.
func (cs *CredentialStore) SetState(c *fiber.Ctx, state string) error {
	sess, err := cs.store.Get(c)
	if err != nil {
		return errors.Wrap(err, "loading session")
	}
	sess.Set(keyState, state)
	if err := sess.Save(); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return nil
}

// TakeState returns the pending OAuth state and removes it, so each state
// value is accepted at most once.
func (cs *CredentialStore) TakeState(c *fiber.Ctx) (string, error) {
	sess, err := cs.store.Get(c)
	if err != nil {
		return "", errors.Wrap(err, "loading session")
	}

	state, _ := sess.Get(keyState).(string)
	if state == "" {
		return "", nil
	}

	sess.Delete(keyState)
	if err := sess.Save(); err != nil {
		return "", errors.Wrap(err, "saving session")
	}
	return state, nil
}

// Snapshot lists what the session holds with secrets masked.
func (cs *CredentialStore) Snapshot(c *fiber.Ctx) (map[string]any, error) {
	sess, err := cs.store.Get(c)
	if err != nil {
		return nil, errors.Wrap(err, "loading session")
	}

	out := make(map[string]any)
	for _, key := range sess.Keys() {
		switch key {
		case keyCredentials:
			raw, _ := sess.Get(key).(string)
			creds, err := credentials.Decode(raw)
			if err != nil {
				out[key] = "[unreadable]"
				continue
			}
			out[key] = creds.Redacted()
		case keyState:
			out[key] = "[pending]"
		default:
			out[key] = sess.Get(key)
		}
	}
	return out, nil
}
