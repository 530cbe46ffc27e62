package workphotos

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	handler *Handler
}

func New(deps modules.Deps) *Module {
	photos := NewPhotoService(deps.DB, deps.Audit, deps.Storage)
	return &Module{handler: NewHandler(photos, deps.Storage, photoSchema(deps.Site))}
}

func (m *Module) ID() string { return "work_photos" }

func (m *Module) Models() []interface{} {
	return []interface{}{&Photo{}}
}

func (m *Module) RegisterRoutes(router fiber.Router) {
	router.Get("/work-photos", m.handler.List)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/work-photos", m.handler.List)
	router.Post("/work-photos", m.handler.Create)
	router.Put("/work-photos/:id", m.handler.Update)
	router.Delete("/work-photos/:id", m.handler.Delete)
}
