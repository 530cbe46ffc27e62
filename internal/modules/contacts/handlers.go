package contacts

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	deps     modules.Deps
	contacts *ContactService
}

func NewHandler(deps modules.Deps, contacts *ContactService) *Handler {
	return &Handler{deps: deps, contacts: contacts}
}

// Submit serves the public contact form (JSON or form encoded).
func (h *Handler) Submit(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var in ContactInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}
	if err := modules.VerifyHuman(ctx, h.deps.Captcha, in.CaptchaToken, c.IP()); err != nil {
		metrics.FormSubmissions.WithLabelValues("contact", "bot").Inc()
		return apperr.Respond(c, err, "contact_captcha")
	}
	if err := ValidateInput(&in, h.deps.Site, h.deps.Filter); err != nil {
		metrics.FormSubmissions.WithLabelValues("contact", "invalid").Inc()
		return apperr.Respond(c, err, "contact_submit")
	}

	contact, err := h.contacts.Submit(ctx, in)
	if err != nil {
		return apperr.Respond(c, err, "contact_submit")
	}
	metrics.FormSubmissions.WithLabelValues("contact", "accepted").Inc()

	h.deps.Notifier.ContactReceived(ctx, mailer.ContactNotice{
		Name:       contact.Name,
		Email:      contact.Email,
		Phone:      in.Phone,
		Service:    in.Service,
		Message:    contact.Message,
		ReceivedAt: contact.CreatedAt,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Thanks for reaching out! We'll get back to you soon.",
	})
}

func (h *Handler) List(c *fiber.Ctx) error {
	res, err := h.contacts.List(c.UserContext(), c.Query("status"), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return apperr.Respond(c, err, "list_contacts")
	}
	return c.JSON(res)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "update_contact")
	}
	var req dto.ContactUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}
	contact, err := h.contacts.Update(c.UserContext(), id, req, c.IP())
	if err != nil {
		return apperr.Respond(c, err, "update_contact")
	}
	return c.JSON(contact)
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "restore_contact")
	}
	contact, err := h.contacts.Restore(c.UserContext(), id, c.IP())
	if err != nil {
		return apperr.Respond(c, err, "restore_contact")
	}
	return c.JSON(contact)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "delete_contact")
	}
	permanent := c.QueryBool("permanent")
	if err := h.contacts.Delete(c.UserContext(), id, permanent, c.IP()); err != nil {
		return apperr.Respond(c, err, "delete_contact")
	}
	msg := "Contact moved to trash"
	if permanent {
		msg = "Contact permanently deleted"
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}
