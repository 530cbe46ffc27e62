package reviews

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	handler *Handler
}

func New(deps modules.Deps) *Module {
	reviews := NewReviewService(deps.DB, deps.Audit, deps.Storage)
	subs := NewSubmissionService(deps.DB, deps.Audit, deps.Storage)
	return &Module{handler: NewHandler(deps, reviews, subs)}
}

func (m *Module) ID() string { return "reviews" }

func (m *Module) Models() []interface{} {
	return []interface{}{
		&Review{},
		&ReviewImage{},
		&ReviewSubmission{},
		&SubmissionImage{},
	}
}

func (m *Module) RegisterRoutes(router fiber.Router) {
	router.Get("/reviews", m.handler.ListPublished)
	router.Post("/review-submissions", m.handler.Submit)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/reviews", m.handler.ListAll)
	router.Post("/reviews", m.handler.Create)
	router.Put("/reviews/:id", m.handler.Update)
	router.Delete("/reviews/:id", m.handler.Delete)

	router.Get("/review-submissions", m.handler.ListSubmissions)
	router.Put("/review-submissions/:id", m.handler.Moderate)
	router.Delete("/review-submissions/:id", m.handler.DeleteSubmission)
}
