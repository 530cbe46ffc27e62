package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const maxLogPage = 200

type LogHandler struct {
	audit *services.AuditService
}

func NewLogHandler(audit *services.AuditService) *LogHandler {
	return &LogHandler{audit: audit}
}

// AuditLogs serves GET /api/admin/audit-logs.
func (h *LogHandler) AuditLogs(c *fiber.Ctx) error {
	page, limit := dto.PageParams(c.QueryInt("page", 1), c.QueryInt("limit", 50), maxLogPage)
	filter := services.AuditFilter{
		ActionType: c.Query("action_type"),
		EntityType: c.Query("entity_type"),
		EntityID:   uint(max(c.QueryInt("entity_id", 0), 0)),
	}

	logs, total, err := h.audit.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return apperr.Respond(c, err, "list_audit_logs")
	}
	return c.JSON(fiber.Map{
		"logs":       logs,
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// SystemLogs serves GET /api/admin/system-logs.
func (h *LogHandler) SystemLogs(c *fiber.Ctx) error {
	page, limit := dto.PageParams(c.QueryInt("page", 1), c.QueryInt("limit", 50), maxLogPage)
	level := strings.ToUpper(c.Query("level"))

	logs, total, err := h.audit.ListSystemLogs(c.UserContext(), level, page, limit)
	if err != nil {
		return apperr.Respond(c, err, "list_system_logs")
	}
	return c.JSON(fiber.Map{
		"logs":       logs,
		"pagination": dto.NewPagination(page, limit, total),
	})
}
