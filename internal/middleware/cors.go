package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS lets the marketing site and the admin panel call the API from their
// own origins. Admin auth is a bearer header, so cookies are never allowed.
func CORS(cfg *config.Config) fiber.Handler {
	origins := strings.TrimSpace(cfg.CORSOrigins)
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Admin-Token",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "X-Request-ID, Retry-After",
		AllowCredentials: false,
		MaxAge:           600,
	})
}
