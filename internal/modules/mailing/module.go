package mailing

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
)

// Module has no tables or public routes; it only adds the admin email
// endpoints.
type Module struct {
	handler *Handler
}

func New(deps modules.Deps, audience RecipientSource) *Module {
	svc := NewMailingService(deps.Sender, deps.Site, deps.Audit, audience)
	return &Module{handler: NewHandler(svc)}
}

func (m *Module) ID() string { return "mailing" }

func (m *Module) Models() []interface{} { return nil }

func (m *Module) RegisterRoutes(fiber.Router) {}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/email/send", m.handler.Send)
	router.Post("/email/broadcast", m.handler.Broadcast)
}
