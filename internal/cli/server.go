package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"

	"aaronromeo.com/inboxpilot/handlers"
	"aaronromeo.com/inboxpilot/internal/config"
	"aaronromeo.com/inboxpilot/pkg/provider"
	"aaronromeo.com/inboxpilot/pkg/repositories"
	"aaronromeo.com/inboxpilot/pkg/services"
	"aaronromeo.com/inboxpilot/pkg/session"
)

// server is the fully wired HTTP application plus whatever it must release
// on shutdown.
type server struct {
	app     *fiber.App
	closers []func() error
}

func (s *server) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, s.closers[i]())
	}
	s.closers = nil
	return err
}

func newServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*server, error) {
	srv := &server{}

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var storage fiber.Storage
	if cfg.Session.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, err
		}
		redisStorage := session.NewRedisStorage(client, cfg.Session.KeyPrefix)
		storage = redisStorage
		srv.closers = append(srv.closers, redisStorage.Close)
		logger.InfoContext(ctx, "Using redis session storage")
	}

	sessions, err := session.NewCredentialStore(
		session.WithStore(session.NewStore(session.Config{
			CookieName: cfg.Session.CookieName,
			Expiration: cfg.Session.Expiration,
			SameSite:   cfg.Session.SameSite,
			Secure:     cfg.Session.Secure,
			HTTPOnly:   cfg.Session.HTTPOnly,
		}, storage)),
		session.WithLogger(logger),
	)
	if err != nil {
		srv.Close()
		return nil, err
	}

	oauthCfg, err := oauthConfig(cfg.Google)
	if err != nil {
		srv.Close()
		return nil, err
	}

	factory, err := provider.NewGmailFactory(
		provider.WithLogger(logger),
		provider.WithCallTimeout(cfg.Provider.CallTimeout),
		provider.WithBreaker(provider.NewBreaker(provider.BreakerSettings{
			MaxRequests:         cfg.Provider.Breaker.MaxRequests,
			Interval:            cfg.Provider.Breaker.Interval,
			Timeout:             cfg.Provider.Breaker.Timeout,
			ConsecutiveFailures: cfg.Provider.Breaker.ConsecutiveFailures,
		}, logger)),
	)
	if err != nil {
		srv.Close()
		return nil, err
	}

	mailbox, err := services.NewMailboxService(
		services.WithLogger(logger),
		services.WithMirror(mirror),
		services.WithMaxResults(cfg.Inbox.MaxResults),
		services.WithConcurrency(cfg.Inbox.Concurrency),
	)
	if err != nil {
		srv.Close()
		return nil, err
	}

	h, err := handlers.New(
		handlers.WithLogger(logger),
		handlers.WithSessions(sessions),
		handlers.WithAuthenticator(provider.NewAuthenticator(oauthCfg)),
		handlers.WithFactory(factory),
		handlers.WithMailboxService(mailbox),
		handlers.WithPostLoginRedirect(cfg.Server.PostLoginRedirect),
	)
	if err != nil {
		srv.Close()
		return nil, err
	}

	srv.app = handlers.NewApp(h, handlers.AppConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		Tracing:      cfg.Telemetry.Enabled(),
		Logger:       logger,
	})
	return srv, nil
}

func newMirror(ctx context.Context, cfg config.Config, logger *slog.Logger) (*repositories.DynamoMetadataRepository, error) {
	db, err := repositories.NewDynamoClient(repositories.DynamoConfig{
		Region:    cfg.Mirror.Region,
		Endpoint:  cfg.Mirror.Endpoint,
		AccessKey: cfg.Mirror.AccessKey,
		SecretKey: cfg.Mirror.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	mirror, err := repositories.NewDynamoMetadataRepository(
		repositories.WithDynamo(db),
		repositories.WithTable(cfg.Mirror.Table),
		repositories.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	if cfg.Mirror.EnsureTable {
		if err := mirror.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}
	return mirror, nil
}

// oauthConfig prefers explicit client credentials and falls back to a Google
// client-secrets file.
func oauthConfig(g config.Google) (*oauth2.Config, error) {
	if g.ClientID != "" && g.ClientSecret != "" {
		return provider.NewOAuthConfig(g.ClientID, g.ClientSecret, g.RedirectURL), nil
	}

	data, err := os.ReadFile(g.ClientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secrets: %w", err)
	}
	return provider.OAuthConfigFromJSON(data, g.RedirectURL)
}
