package handlers

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/gofiber/fiber/v2"
)

type SiteHandler struct {
	registry *site.Registry
}

func NewSiteHandler(registry *site.Registry) *SiteHandler {
	return &SiteHandler{registry: registry}
}

func (h *SiteHandler) Info(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(h.registry.Info())
}

func (h *SiteHandler) Services(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(fiber.Map{
		"services":   h.registry.Services(),
		"categories": h.registry.Categories(),
	})
}
