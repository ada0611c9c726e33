package session

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aaronromeo.com/inboxpilot/pkg/mock"
	"aaronromeo.com/inboxpilot/pkg/models/credentials"
)

var testCreds = credentials.Set{
	AccessToken:  "access-1",
	RefreshToken: "refresh-1",
	TokenURI:     "https://oauth2.example.com/token",
	ClientID:     "client-1",
	ClientSecret: "secret-1",
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cs, err := NewCredentialStore(
		WithStore(NewStore(Config{}, nil)),
		WithLogger(mock.SetupLogger(t)),
	)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/store", func(c *fiber.Ctx) error {
		return cs.Store(c, testCreds)
	})
	app.Get("/retrieve", func(c *fiber.Ctx) error {
		creds, ok, err := cs.Retrieve(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"ok": ok, "client_id": creds.ClientID})
	})
	app.Get("/clear", func(c *fiber.Ctx) error {
		return cs.Clear(c)
	})
	app.Get("/state/set", func(c *fiber.Ctx) error {
		return cs.SetState(c, "state-1")
	})
	app.Get("/state/take", func(c *fiber.Ctx) error {
		state, err := cs.TakeState(c)
		if err != nil {
			return err
		}
		return c.SendString(state)
	})
	app.Get("/snapshot", func(c *fiber.Ctx) error {
		snap, err := cs.Snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap)
	})
	return app
}

// do issues a request carrying cookie and returns the body along with the
// session cookie the response set, if any.
func do(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) (string, *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, c := range resp.Cookies() {
		if c.Name == DefaultCookieName {
			return string(body), c
		}
	}
	return string(body), nil
}

func TestNewCredentialStore(t *testing.T) {
	_, err := NewCredentialStore(WithLogger(mock.SetupLogger(t)))
	assert.EqualError(t, err, "requires session store")

	_, err = NewCredentialStore(WithStore(NewStore(Config{}, nil)))
	assert.EqualError(t, err, "requires slogger")
}

func TestCredentialStore_StoreRetrieveClear(t *testing.T) {
	app := newTestApp(t)

	body, _ := do(t, app, "/retrieve", nil)
	assert.JSONEq(t, `{"ok":false,"client_id":""}`, body)

	_, cookie := do(t, app, "/store", nil)
	require.NotNil(t, cookie)

	body, _ = do(t, app, "/retrieve", cookie)
	assert.JSONEq(t, `{"ok":true,"client_id":"client-1"}`, body)

	do(t, app, "/clear", cookie)

	body, _ = do(t, app, "/retrieve", cookie)
	assert.JSONEq(t, `{"ok":false,"client_id":""}`, body)
}

func TestCredentialStore_ClearWithoutSession(t *testing.T) {
	app := newTestApp(t)

	do(t, app, "/clear", nil)
	do(t, app, "/clear", nil)
}

func TestCredentialStore_SessionsAreIsolated(t *testing.T) {
	app := newTestApp(t)

	_, first := do(t, app, "/store", nil)
	require.NotNil(t, first)

	body, _ := do(t, app, "/retrieve", &http.Cookie{Name: DefaultCookieName, Value: "someone-else"})
	assert.JSONEq(t, `{"ok":false,"client_id":""}`, body)
}

func TestCredentialStore_StoreRotatesSessionID(t *testing.T) {
	app := newTestApp(t)

	_, before := do(t, app, "/state/set", nil)
	require.NotNil(t, before)

	_, after := do(t, app, "/store", before)
	require.NotNil(t, after)
	assert.NotEqual(t, before.Value, after.Value)

	body, _ := do(t, app, "/retrieve", before)
	assert.JSONEq(t, `{"ok":false,"client_id":""}`, body)
}

func TestCredentialStore_TakeStateOnce(t *testing.T) {
	app := newTestApp(t)

	_, cookie := do(t, app, "/state/set", nil)
	require.NotNil(t, cookie)

	state, _ := do(t, app, "/state/take", cookie)
	assert.Equal(t, "state-1", state)

	state, _ = do(t, app, "/state/take", cookie)
	assert.Empty(t, state)
}

func TestCredentialStore_SnapshotRedactsSecrets(t *testing.T) {
	app := newTestApp(t)

	_, cookie := do(t, app, "/store", nil)
	require.NotNil(t, cookie)

	body, _ := do(t, app, "/snapshot", cookie)

	var snap map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	creds := snap["credentials"]
	require.NotNil(t, creds)
	assert.Equal(t, "[redacted]", creds["token"])
	assert.Equal(t, "[redacted]", creds["refresh_token"])
	assert.Equal(t, "[redacted]", creds["client_secret"])
	assert.Equal(t, "client-1", creds["client_id"])
	assert.NotContains(t, body, "secret-1")
	assert.NotContains(t, body, "access-1")
}

func TestCredentialStore_SnapshotEmpty(t *testing.T) {
	app := newTestApp(t)

	body, _ := do(t, app, "/snapshot", nil)
	assert.JSONEq(t, `{}`, body)
}
