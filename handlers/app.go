package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"aaronromeo.com/inboxpilot/pkg/base"
	"aaronromeo.com/inboxpilot/pkg/utils"
)

// AppConfig holds the HTTP concerns that sit outside any one handler.
type AppConfig struct {
	AllowOrigins []string
	Tracing      bool
	Logger       *slog.Logger
}

// NewApp wires middleware and every route onto a fresh fiber app.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = h.logger
	}

	app := fiber.New(fiber.Config{
		AppName:               base.ServiceName,
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          utils.NewErrorHandler(logger),
	})

	app.Use(recover.New())
	if cfg.Tracing {
		app.Use(otelfiber.Middleware(otelfiber.WithServerName(base.ServiceName)))
	}
	if len(cfg.AllowOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.AllowOrigins, ","),
			AllowMethods:     "GET,POST,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept",
			AllowCredentials: true,
		}))
	}

	h.Register(app)
	app.Use(h.NotFound)
	return app
}

// Register mounts the routes. Gated routes carry RequireCredentials
// individually so unknown paths still reach NotFound.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/", h.Home)
	r.Get("/healthz", h.Health)
	r.Get("/session", h.Session)
	r.Get("/check-auth", h.CheckAuth)
	r.Get("/login", h.Login)
	r.Get("/callback", h.Callback)
	r.Get("/logout", h.Logout)

	gate := h.RequireCredentials
	r.Get("/inbox", gate, h.Inbox)
	r.Get("/email/:id", gate, h.Email)
	r.Post("/send", gate, h.Send)
	r.Post("/compose", gate, h.Compose)

	for path, handler := range map[string]fiber.Handler{
		"/star/:id":   h.Label(h.star),
		"/spam/:id":   h.Label(h.spam),
		"/unspam/:id": h.Label(h.unspam),
	} {
		r.Get(path, gate, handler)
		r.Post(path, gate, handler)
	}
}
