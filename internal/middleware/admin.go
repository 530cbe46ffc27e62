package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired rejects the request before any handler runs unless the
// bearer token (or the legacy X-Admin-Token header) passes the verifier.
func AdminRequired(verifier auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		credential := bearerToken(c.Get(fiber.HeaderAuthorization))
		if credential == "" {
			credential = c.Get("X-Admin-Token")
		}
		if credential == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		principal, err := verifier.Verify(c.UserContext(), credential)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		c.SetUserContext(auth.WithPrincipal(c.UserContext(), principal))
		return c.Next()
	}
}

// Principal returns the admin identity stored by AdminRequired.
func Principal(c *fiber.Ctx) (auth.Principal, bool) {
	return auth.PrincipalFrom(c.UserContext())
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
