// Package modulestest wires a module against SQLite, a temp upload root and
// a recording mail sender.
package modulestest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/captcha"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer/mailertest"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
)

const (
	AdminToken    = "test-admin-token"
	OperatorEmail = "owner@example.com"
)

type Env struct {
	Deps    modules.Deps
	Mail    *mailertest.Recorder
	Storage *storage.LocalStorage
}

// New builds dependencies with the given module tables migrated next to the
// audit log.
func New(t *testing.T, modelList ...interface{}) *Env {
	t.Helper()

	db := testutil.NewDB(t, append([]interface{}{&models.AuditLog{}}, modelList...)...)
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	rec := mailertest.NewRecorder()
	registry := site.Default()

	return &Env{
		Deps: modules.Deps{
			DB:       db,
			Config:   &config.Config{NotifyEmail: OperatorEmail},
			Site:     registry,
			Storage:  store,
			Audit:    services.NewAuditService(db),
			Notifier: mailer.NewNotifier(rec, registry, OperatorEmail),
			Sender:   rec,
			Captcha:  captcha.Disabled{},
			Filter:   services.NewContentFilter(),
		},
		Mail:    rec,
		Storage: store,
	}
}

// App mounts m the way the router does: public routes under /api and admin
// routes under /api/admin behind a static token.
func App(m modules.Module) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperr.Respond(c, err, "test")
		},
	})
	api := app.Group("/api")
	if am, ok := m.(modules.AdminModule); ok {
		admin := api.Group("/admin", middleware.AdminRequired(auth.NewStaticTokenVerifier(AdminToken)))
		am.RegisterAdminRoutes(admin)
	}
	m.RegisterRoutes(api)
	return app
}

// Do sends req through app, adding the admin token when admin is set.
func Do(t *testing.T, app *fiber.App, req *http.Request, admin bool) (*http.Response, []byte) {
	t.Helper()
	if admin {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+AdminToken)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

// JSON builds a request with a JSON body.
func JSON(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, stringsReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func stringsReader(s string) io.Reader {
	if s == "" {
		return nil
	}
	return strings.NewReader(s)
}
