package routes

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups the shared (non-module) handlers. Uploads is nil when
// media is stored off-box and nothing has to be served from disk.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
	Site    *handlers.SiteHandler
	Logs    *handlers.LogHandler
	Uploads *handlers.UploadHandler
}

// Limits configures the per-IP request limiters. Zero disables a limiter.
// API covers the public routes; authenticated admin routes count against
// Admin instead.
type Limits struct {
	API   int
	Login int
	Admin int
}

var DefaultLimits = Limits{API: 60, Login: 10, Admin: 600}

const adminPrefix = "/api/admin/"

func Setup(app *fiber.App, verifier auth.Verifier, h Handlers, limits Limits, mods []modules.Module) {
	app.Get("/metrics", metrics.Handler())
	if h.Uploads != nil {
		app.Get("/uploads/*", h.Uploads.Serve)
	}

	api := app.Group("/api")

	// General API rate limiter: per IP, sliding window
	if limits.API > 0 {
		api.Use(perIP(limits.API, func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), adminPrefix)
		}))
	}

	api.Get("/health", h.Health.Check)
	api.Get("/site", h.Site.Info)
	api.Get("/services", h.Site.Services)

	// Login sits in front of the admin group so the auth middleware never
	// sees it. Stricter limit against password guessing.
	login := []fiber.Handler{h.Auth.Login}
	if limits.Login > 0 {
		login = append([]fiber.Handler{perIP(limits.Login, nil)}, login...)
	}
	api.Post("/admin/login", login...)

	guard := []fiber.Handler{middleware.AdminRequired(verifier)}
	if limits.Admin > 0 {
		guard = append([]fiber.Handler{perIP(limits.Admin, nil)}, guard...)
	}
	admin := api.Group("/admin", guard...)
	admin.Get("/audit-logs", h.Logs.AuditLogs)
	admin.Get("/system-logs", h.Logs.SystemLogs)

	for _, m := range mods {
		m.RegisterRoutes(api)
		if am, ok := m.(modules.AdminModule); ok {
			am.RegisterAdminRoutes(admin)
		}
	}
}

func perIP(perMinute int, skip func(*fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Next:              skip,
		Max:               perMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
