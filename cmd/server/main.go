package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules/blog"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules/contacts"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules/mailing"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules/reviews"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules/workphotos"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bizsite",
		Short:        "Marketing site API and admin CMS",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real deployments set the environment directly
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "warning: could not read .env: %v\n", err)
			}
		},
	}

	cmd.AddCommand(serveCmd(), migrateCmd())
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logging.Setup(cfg.LogLevel)

			if err := database.Connect(cfg); err != nil {
				return err
			}
			defer database.Close()

			mods := buildModules(modules.Deps{DB: database.DB, Config: cfg, Site: site.Default()})
			return migrate(mods)
		},
	}
}

// migrate creates the shared tables and every module's tables.
func migrate(mods []modules.Module) error {
	if err := database.MigrateShared(database.DB); err != nil {
		return fmt.Errorf("shared migration failed: %w", err)
	}
	for _, m := range mods {
		if err := database.MigrateModels(database.DB, m.Models()); err != nil {
			return fmt.Errorf("migration of %s failed: %w", m.ID(), err)
		}
		slog.Info("module migrated", "module", m.ID(), "models", len(m.Models()))
	}
	return nil
}

// buildModules assembles the content modules in route registration order.
// Mailing broadcasts to the contact list, so it takes the contacts service.
func buildModules(deps modules.Deps) []modules.Module {
	contactsModule := contacts.New(deps)
	return []modules.Module{
		blog.New(deps),
		reviews.New(deps),
		workphotos.New(deps),
		contactsModule,
		mailing.New(deps, contactsModule.Service()),
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
