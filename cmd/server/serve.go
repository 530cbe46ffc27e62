package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/captcha"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
)

// 5 review images at the 10MB cap plus form fields.
const bodyLimit = 60 * 1024 * 1024

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.Load())
		},
	}
}

func serve(cfg *config.Config) error {
	// Structured logging (JSON to stdout)
	logging.Setup(cfg.LogLevel)

	if cfg.AdminToken == "" && cfg.AdminTokenHash == "" {
		return errors.New("ADMIN_TOKEN or ADMIN_TOKEN_HASH environment variable is required")
	}
	if cfg.RequiresDBPassword() && cfg.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}

	registry, err := loadSite(cfg.SiteConfigPath)
	if err != nil {
		return err
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()

	// System log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, cfg.LogLevel),
		dbLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	store, local, err := newStorage(cfg)
	if err != nil {
		return err
	}

	sender := newSender(cfg)
	operator := cfg.NotifyEmail
	if operator == "" {
		operator = registry.Info().Email
	}

	audit := services.NewAuditService(database.DB)
	deps := modules.Deps{
		DB:       database.DB,
		Config:   cfg,
		Site:     registry,
		Storage:  store,
		Audit:    audit,
		Notifier: mailer.NewNotifier(sender, registry, operator),
		Sender:   sender,
		Captcha:  newCaptcha(cfg),
		Filter:   services.NewContentFilter(),
	}

	mods := buildModules(deps)
	if err := migrate(mods); err != nil {
		return err
	}

	// Admin credentials: the configured secret, plus session tokens when a
	// JWT secret is set.
	password := auth.Chain{}
	if cfg.AdminToken != "" {
		password = append(password, auth.NewStaticTokenVerifier(cfg.AdminToken))
	}
	if cfg.AdminTokenHash != "" {
		password = append(password, auth.NewHashedTokenVerifier(cfg.AdminTokenHash))
	}
	verifier := append(auth.Chain{}, password...)
	var issuer *auth.JWTIssuer
	if cfg.JWTSecret != "" {
		issuer = auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTExpiry)
		verifier = append(verifier, auth.NewJWTVerifier(cfg.JWTSecret))
	}

	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(password, issuer, audit),
		Health: handlers.NewHealthHandler(database.Ping),
		Site:   handlers.NewSiteHandler(registry),
		Logs:   handlers.NewLogHandler(audit),
	}
	if local != nil {
		h.Uploads = handlers.NewUploadHandler(local)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, verifier, h, routes.DefaultLimits, mods)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "modules", len(mods))
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err := <-listenErr:
		slog.Error("server failed to start", "error", err)
		close(cleanupDone)
		dbLogHandler.Stop()
		return err
	}

	close(cleanupDone)
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	slog.Info("server stopped")
	return nil
}

func loadSite(path string) (*site.Registry, error) {
	registry, err := site.LoadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("site config not found, using defaults", "path", path)
		return site.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	slog.Info("site config loaded", "business", registry.BusinessName(), "categories", len(registry.Categories()))
	return registry, nil
}

// newStorage picks Cloudinary when configured. The local store is returned
// separately because only it needs the /uploads route.
func newStorage(cfg *config.Config) (storage.Storage, *storage.LocalStorage, error) {
	if cfg.CloudinaryURL != "" {
		cs, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, "bizsite")
		if err != nil {
			return nil, nil, err
		}
		slog.Info("uploads stored in cloudinary")
		return cs, nil, nil
	}
	local, err := storage.NewLocalStorage(cfg.UploadRoot)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("uploads stored on disk", "root", local.Root)
	return local, local, nil
}

func newSender(cfg *config.Config) mailer.Sender {
	if !cfg.SMTPConfigured() {
		slog.Warn("SMTP not configured, outbound email disabled")
		return mailer.Unconfigured{}
	}
	return mailer.NewSMTPSender(cfg)
}

func newCaptcha(cfg *config.Config) captcha.Verifier {
	if cfg.RecaptchaSecret == "" {
		slog.Warn("RECAPTCHA_SECRET not set, bot verification disabled")
		return captcha.Disabled{}
	}
	return captcha.NewRecaptcha(cfg.RecaptchaSecret, cfg.RecaptchaMinScore)
}
