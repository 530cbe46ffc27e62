package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler exchanges the admin password for a short-lived session token.
type AuthHandler struct {
	password auth.Verifier
	issuer   *auth.JWTIssuer
	audit    *services.AuditService
}

func NewAuthHandler(password auth.Verifier, issuer *auth.JWTIssuer, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{password: password, issuer: issuer, audit: audit}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.issuer == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{
			Error: true, Message: "Session login is not enabled; use the admin token directly",
		})
	}

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}
	if req.Password == "" {
		return apperr.BadRequest(c, "password is required")
	}

	principal, err := h.password.Verify(c.UserContext(), req.Password)
	if err != nil {
		slog.Warn("admin login failed", "ip", c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid credentials",
		})
	}

	token, expiresAt, err := h.issuer.Issue(principal.Subject)
	if err != nil {
		return apperr.Respond(c, err, "admin_login")
	}

	h.audit.Record(c.UserContext(), services.AuditEntry{
		Action:     services.ActionLogin,
		EntityType: "admin",
		Details:    "Admin signed in via " + principal.Method + " credential",
		IP:         c.IP(),
		AuthMethod: principal.Method,
	})
	return c.JSON(dto.LoginResponse{Token: token, ExpiresAt: expiresAt})
}
