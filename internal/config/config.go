package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "INBOXPILOT_CONFIG"

	envListenAddr          = "INBOXPILOT_LISTEN_ADDR"
	envGoogleClientID      = "INBOXPILOT_GOOGLE_CLIENT_ID"
	envGoogleClientSecret  = "INBOXPILOT_GOOGLE_CLIENT_SECRET"
	envGoogleRedirectURL   = "INBOXPILOT_GOOGLE_REDIRECT_URL"
	envGoogleSecretsFile   = "INBOXPILOT_GOOGLE_CLIENT_SECRETS_FILE"
	envSessionRedisURL     = "INBOXPILOT_SESSION_REDIS_URL"
	envSessionSecure       = "INBOXPILOT_SESSION_SECURE"
	envAWSRegion           = "INBOXPILOT_AWS_REGION"
	envAWSKey              = "INBOXPILOT_AWS_KEY"
	envAWSSecret           = "INBOXPILOT_AWS_SECRET"
	envDynamoEndpoint      = "INBOXPILOT_DYNAMODB_ENDPOINT"
	envOTLPEndpoint        = "INBOXPILOT_OTLP_ENDPOINT"
	envOTLPMetricsEndpoint = "INBOXPILOT_OTLP_METRICS_ENDPOINT"
	envOTLPHeaders         = "INBOXPILOT_OTLP_HEADERS"
	envLogLevel            = "INBOXPILOT_LOG_LEVEL"

	maxInboxResults = 500
)

// Config holds everything the server needs. Secrets are only ever read from
// the environment and are never serialised back out.
type Config struct {
	Server    Server    `yaml:"server"`
	Google    Google    `yaml:"google"`
	Session   Session   `yaml:"session"`
	Inbox     Inbox     `yaml:"inbox"`
	Provider  Provider  `yaml:"provider"`
	Mirror    Mirror    `yaml:"mirror"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`
}

type Server struct {
	ListenAddr        string        `yaml:"listen_addr"`
	AllowOrigins      []string      `yaml:"allow_origins"`
	PostLoginRedirect string        `yaml:"post_login_redirect"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Google identifies the OAuth client. Either ClientID and ClientSecret or a
// client-secrets file must be present.
type Google struct {
	ClientID          string `yaml:"client_id"`
	ClientSecret      string `yaml:"-"`
	RedirectURL       string `yaml:"redirect_url"`
	ClientSecretsFile string `yaml:"client_secrets_file"`
}

type Session struct {
	CookieName string        `yaml:"cookie_name"`
	Expiration time.Duration `yaml:"expiration"`
	SameSite   string        `yaml:"same_site"`
	Secure     bool          `yaml:"secure"`
	HTTPOnly   bool          `yaml:"http_only"`
	KeyPrefix  string        `yaml:"key_prefix"`
	RedisURL   string        `yaml:"-"`
}

type Inbox struct {
	MaxResults  int `yaml:"max_results"`
	Concurrency int `yaml:"concurrency"`
}

type Provider struct {
	CallTimeout time.Duration `yaml:"call_timeout"`
	Breaker     Breaker       `yaml:"breaker"`
}

type Breaker struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

// Mirror locates the DynamoDB table. Endpoint is only set for DynamoDB Local.
type Mirror struct {
	Table       string `yaml:"table"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	EnsureTable bool   `yaml:"ensure_table"`
	AccessKey   string `yaml:"-"`
	SecretKey   string `yaml:"-"`
}

type Telemetry struct {
	Endpoint        string            `yaml:"endpoint"`
	MetricsEndpoint string            `yaml:"metrics_endpoint"`
	Insecure        bool              `yaml:"insecure"`
	Stdout          bool              `yaml:"stdout"`
	Headers         map[string]string `yaml:"-"`
}

func (t Telemetry) Enabled() bool {
	return t.Endpoint != "" || t.Stdout
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used for anything a file or the
// environment leaves unset.
func Default() Config {
	return Config{
		Server: Server{
			ListenAddr:      ":5000",
			AllowOrigins:    []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Google: Google{
			RedirectURL: "http://localhost:5000/callback",
		},
		Session: Session{
			CookieName: "inboxpilot_session",
			Expiration: 24 * time.Hour,
			SameSite:   "None",
			Secure:     true,
			HTTPOnly:   true,
			KeyPrefix:  "inboxpilot:session:",
		},
		Inbox: Inbox{
			MaxResults:  10,
			Concurrency: 4,
		},
		Provider: Provider{
			CallTimeout: 15 * time.Second,
			Breaker: Breaker{
				MaxRequests:         3,
				Interval:            60 * time.Second,
				Timeout:             30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		Mirror: Mirror{
			Table:  "emails",
			Region: "us-east-1",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads configuration from a YAML file on top of Default. An empty path
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Resolve loads path and then applies environment overrides.
func Resolve(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any INBOXPILOT_* variables that are set.
func ApplyEnv(cfg *Config) error {
	setString(&cfg.Server.ListenAddr, envListenAddr)
	setString(&cfg.Google.ClientID, envGoogleClientID)
	setString(&cfg.Google.ClientSecret, envGoogleClientSecret)
	setString(&cfg.Google.RedirectURL, envGoogleRedirectURL)
	setString(&cfg.Google.ClientSecretsFile, envGoogleSecretsFile)
	setString(&cfg.Session.RedisURL, envSessionRedisURL)
	setString(&cfg.Mirror.Region, envAWSRegion)
	setString(&cfg.Mirror.AccessKey, envAWSKey)
	setString(&cfg.Mirror.SecretKey, envAWSSecret)
	setString(&cfg.Mirror.Endpoint, envDynamoEndpoint)
	setString(&cfg.Telemetry.Endpoint, envOTLPEndpoint)
	setString(&cfg.Telemetry.MetricsEndpoint, envOTLPMetricsEndpoint)
	setString(&cfg.Log.Level, envLogLevel)

	if raw := strings.TrimSpace(os.Getenv(envSessionSecure)); raw != "" {
		secure, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envSessionSecure, err)
		}
		cfg.Session.Secure = secure
	}

	if raw := strings.TrimSpace(os.Getenv(envOTLPHeaders)); raw != "" {
		headers, err := ParseHeaders(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envOTLPHeaders, err)
		}
		cfg.Telemetry.Headers = headers
	}
	return nil
}

// ParseHeaders reads "k1=v1,k2=v2" as used by OTEL_EXPORTER_OTLP_HEADERS.
func ParseHeaders(raw string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed header %q", pair)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

// Validate reports every problem at once.
func Validate(cfg Config) error {
	var problems []string

	if strings.TrimSpace(cfg.Server.ListenAddr) == "" {
		problems = append(problems, "server.listen_addr must be set")
	}
	for _, origin := range cfg.Server.AllowOrigins {
		if strings.TrimSpace(origin) == "*" {
			problems = append(problems, "server.allow_origins cannot contain * because session cookies are sent with credentials")
		}
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}

	hasClient := cfg.Google.ClientID != "" && cfg.Google.ClientSecret != ""
	if !hasClient && cfg.Google.ClientSecretsFile == "" {
		problems = append(problems, fmt.Sprintf("google client requires %s and %s or %s",
			envGoogleClientID, envGoogleClientSecret, envGoogleSecretsFile))
	}
	if hasClient && cfg.Google.RedirectURL == "" {
		problems = append(problems, "google.redirect_url must be set")
	}

	switch cfg.Session.SameSite {
	case "Lax", "Strict", "None":
	default:
		problems = append(problems, fmt.Sprintf("session.same_site must be Lax, Strict or None, got %q", cfg.Session.SameSite))
	}
	if cfg.Session.Expiration <= 0 {
		problems = append(problems, "session.expiration must be positive")
	}

	if cfg.Inbox.MaxResults < 1 || cfg.Inbox.MaxResults > maxInboxResults {
		problems = append(problems, fmt.Sprintf("inbox.max_results must be between 1 and %d", maxInboxResults))
	}
	if cfg.Inbox.Concurrency < 1 {
		problems = append(problems, "inbox.concurrency must be positive")
	}
	if cfg.Provider.CallTimeout <= 0 {
		problems = append(problems, "provider.call_timeout must be positive")
	}

	if strings.TrimSpace(cfg.Mirror.Table) == "" {
		problems = append(problems, "mirror.table must be set")
	}
	if strings.TrimSpace(cfg.Mirror.Region) == "" {
		problems = append(problems, "mirror.region must be set")
	}
	if (cfg.Mirror.AccessKey == "") != (cfg.Mirror.SecretKey == "") {
		problems = append(problems, fmt.Sprintf("%s and %s must be set together", envAWSKey, envAWSSecret))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration:\n- " + strings.Join(problems, "\n- "))
}

// Summary returns a concise config summary for validation runs.
func Summary(cfg Config) string {
	googleSource := "environment"
	if cfg.Google.ClientSecretsFile != "" && cfg.Google.ClientID == "" {
		googleSource = cfg.Google.ClientSecretsFile
	}
	sessionStore := "memory"
	if cfg.Session.RedisURL != "" {
		sessionStore = "redis"
	}
	telemetry := "disabled"
	if cfg.Telemetry.Enabled() {
		telemetry = "enabled"
	}

	return fmt.Sprintf(
		"Config summary\n"+
			"- listen: %s\n"+
			"- allowed origins: %s\n"+
			"- google client: %s\n"+
			"- redirect url: %s\n"+
			"- sessions: %s\n"+
			"- inbox: %d messages, %d concurrent fetches\n"+
			"- provider timeout: %s\n"+
			"- mirror: table %s in %s%s\n"+
			"- telemetry: %s\n"+
			"- log level: %s",
		cfg.Server.ListenAddr,
		defaultIfEmpty(strings.Join(cfg.Server.AllowOrigins, ", "), "(none)"),
		googleSource,
		defaultIfEmpty(cfg.Google.RedirectURL, "(from client secrets)"),
		sessionStore,
		cfg.Inbox.MaxResults,
		cfg.Inbox.Concurrency,
		cfg.Provider.CallTimeout,
		cfg.Mirror.Table,
		cfg.Mirror.Region,
		endpointNote(cfg.Mirror.Endpoint),
		telemetry,
		cfg.Log.Level,
	)
}

func endpointNote(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	return " via " + endpoint
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
