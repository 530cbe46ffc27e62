package blog

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	handler *Handler
}

func New(deps modules.Deps) *Module {
	posts := NewPostService(deps.DB, deps.Audit, deps.Storage)
	return &Module{handler: NewHandler(posts, deps.Storage)}
}

func (m *Module) ID() string { return "blog" }

func (m *Module) Models() []interface{} {
	return []interface{}{&Post{}}
}

func (m *Module) RegisterRoutes(router fiber.Router) {
	router.Get("/blog", m.handler.ListPublished)
	router.Get("/blog/:slug", m.handler.GetBySlug)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/blog", m.handler.ListAll)
	router.Post("/blog", m.handler.Create)
	router.Put("/blog/:id", m.handler.Update)
	router.Delete("/blog/:id", m.handler.Delete)
}
