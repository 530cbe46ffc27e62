package contacts

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	service *ContactService
	handler *Handler
}

func New(deps modules.Deps) *Module {
	svc := NewContactService(deps.DB, deps.Audit)
	return &Module{service: svc, handler: NewHandler(deps, svc)}
}

func (m *Module) ID() string { return "contacts" }

func (m *Module) Models() []interface{} {
	return []interface{}{&Contact{}}
}

// Service exposes the contact list to the mailing module.
func (m *Module) Service() *ContactService { return m.service }

func (m *Module) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", m.handler.Submit)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/contacts", m.handler.List)
	router.Put("/contacts/:id", m.handler.Update)
	router.Post("/contacts/:id/restore", m.handler.Restore)
	router.Delete("/contacts/:id", m.handler.Delete)
}
