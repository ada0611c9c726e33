package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aaronromeo.com/inboxpilot/internal/config"
	"aaronromeo.com/inboxpilot/pkg/mock"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INBOXPILOT_CONFIG",
		"INBOXPILOT_GOOGLE_CLIENT_ID",
		"INBOXPILOT_GOOGLE_CLIENT_SECRET",
		"INBOXPILOT_GOOGLE_CLIENT_SECRETS_FILE",
		"INBOXPILOT_SESSION_REDIS_URL",
		"INBOXPILOT_AWS_KEY",
		"INBOXPILOT_AWS_SECRET",
		"INBOXPILOT_OTLP_ENDPOINT",
		"INBOXPILOT_OTLP_HEADERS",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(args ...string) (string, error) {
	var output bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&output)
	rootCmd.SetErr(&output)
	err := rootCmd.Execute()
	return output.String(), err
}

func TestCheckPrintsRedactedSummary(t *testing.T) {
	clearEnv(t)
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_SECRET", "super-secret")
	path := writeConfig(t, `
mirror:
  table: "emails_test"
`)

	out, err := run("check", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration OK")
	assert.Contains(t, out, "emails_test")
	assert.NotContains(t, out, "super-secret")
}

func TestCheckRejectsWildcardOrigin(t *testing.T) {
	clearEnv(t)
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_SECRET", "super-secret")
	path := writeConfig(t, `
server:
  allow_origins:
    - "*"
`)

	_, err := run("check", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allow_origins")
}

func TestCheckMissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := run("check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestServeFailsOnInvalidConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "log:\n  level: debug\n")

	_, err := run("serve", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google client")
}

func TestMirrorGetRequiresID(t *testing.T) {
	clearEnv(t)

	_, err := run("mirror", "get", "--config=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestNewServerRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.Google.ClientID = "client-id"
	cfg.Google.ClientSecret = "client-secret"
	cfg.Mirror.Endpoint = "http://127.0.0.1:8000"
	cfg.Mirror.AccessKey = "local"
	cfg.Mirror.SecretKey = "local"

	srv, err := newServer(context.Background(), cfg, mock.SetupLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	tests := []struct {
		path string
		want int
	}{
		{"/", 200},
		{"/healthz", 200},
		{"/check-auth", 401},
		{"/inbox", 401},
		{"/no-such-route", 404},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := srv.app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestOAuthConfigFromSecretsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "web": {
    "client_id": "file-client",
    "client_secret": "file-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost:5000/callback"]
  }
}`), 0o600))

	cfg, err := oauthConfig(config.Google{ClientSecretsFile: path})
	require.NoError(t, err)
	assert.Equal(t, "file-client", cfg.ClientID)
	assert.Equal(t, "http://localhost:5000/callback", cfg.RedirectURL)

	_, err = oauthConfig(config.Google{ClientSecretsFile: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading client secrets")
}

func TestOAuthConfigPrefersExplicitClient(t *testing.T) {
	cfg, err := oauthConfig(config.Google{
		ClientID:          "id",
		ClientSecret:      "secret",
		RedirectURL:       "http://localhost:5000/callback",
		ClientSecretsFile: "/nonexistent.json",
	})
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
}
