// Package modules defines the contract each content area (blog, reviews,
// work photos, contacts, mailing) implements to plug into the router.
package modules

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/captcha"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries the shared services handed to every module at construction.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Site     *site.Registry
	Storage  storage.Storage
	Audit    *services.AuditService
	Notifier *mailer.Notifier
	Sender   mailer.Sender
	Captcha  captcha.Verifier
	Filter   *services.ContentFilter
}

// Module is a content area with its own tables and public routes.
type Module interface {
	// ID names the module in logs.
	ID() string

	// Models returns the GORM model pointers for migration.
	Models() []interface{}

	// RegisterRoutes mounts public routes on the /api group.
	RegisterRoutes(router fiber.Router)
}

// AdminModule adds routes mounted behind the admin auth middleware.
type AdminModule interface {
	Module

	RegisterAdminRoutes(router fiber.Router)
}

// ParamID reads the :id route parameter as a positive integer.
func ParamID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("id", "must be a positive integer")
	}
	return uint(id), nil
}

// VerifyHuman runs the captcha check for a public form. A rejected token is a
// client error; an unreachable verifier is not.
func VerifyHuman(ctx context.Context, v captcha.Verifier, token, ip string) error {
	if err := v.Verify(ctx, token, ip); err != nil {
		if errors.Is(err, captcha.ErrVerificationFailed) {
			return apperr.Invalid("captcha_token", "bot verification failed")
		}
		return err
	}
	return nil
}

// DeleteFile removes a stored upload after its row is gone. A failure leaves
// an orphaned file, which is logged and otherwise ignored.
func DeleteFile(ctx context.Context, s storage.Storage, url string) {
	if url == "" {
		return
	}
	if err := s.Delete(ctx, url); err != nil {
		slog.Warn("failed to delete stored file", "url", url, "error", err)
	}
}
