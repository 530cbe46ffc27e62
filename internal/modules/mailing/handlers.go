package mailing

import (
	"os"
	"path/filepath"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const maxInlineImages = 10

type Handler struct {
	mailing *MailingService
}

func NewHandler(mailing *MailingService) *Handler {
	return &Handler{mailing: mailing}
}

// inlineImages writes the posted images to a temporary directory so the
// mailer can embed them. The returned cleanup removes the directory.
func inlineImages(c *fiber.Ctx) ([]mailer.Inline, func(), error) {
	files := modules.FormFiles(c, "images")
	noop := func() {}
	if len(files) == 0 {
		return nil, noop, nil
	}
	if len(files) > maxInlineImages {
		return nil, noop, apperr.Invalid("images", "at most %d inline images", maxInlineImages)
	}
	for _, f := range files {
		if err := storage.ValidateImage("images", f); err != nil {
			return nil, noop, err
		}
	}

	dir, err := os.MkdirTemp("", "bizsite-mail-")
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	inline := make([]mailer.Inline, 0, len(files))
	for _, f := range files {
		name := filepath.Base(f.Filename)
		path := filepath.Join(dir, storage.UniqueName(name))
		if err := c.SaveFile(f, path); err != nil {
			cleanup()
			return nil, noop, err
		}
		inline = append(inline, mailer.Inline{Name: name, Path: path})
	}
	return inline, cleanup, nil
}

func (h *Handler) parse(c *fiber.Ctx) (EmailRequest, []mailer.Inline, func(), error) {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return req, nil, func() {}, apperr.Invalid("", "invalid request body")
	}
	inline, cleanup, err := inlineImages(c)
	return req, inline, cleanup, err
}

func (h *Handler) Send(c *fiber.Ctx) error {
	req, inline, cleanup, err := h.parse(c)
	defer cleanup()
	if err != nil {
		return apperr.Respond(c, err, "send_email")
	}
	if err := h.mailing.Send(c.UserContext(), req, inline, c.IP()); err != nil {
		if IsNotConfigured(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Email is not configured",
			})
		}
		return apperr.Respond(c, err, "send_email")
	}
	return c.JSON(dto.MessageResponse{Message: "Email sent"})
}

func (h *Handler) Broadcast(c *fiber.Ctx) error {
	req, inline, cleanup, err := h.parse(c)
	defer cleanup()
	if err != nil {
		return apperr.Respond(c, err, "broadcast_email")
	}
	result, err := h.mailing.Broadcast(c.UserContext(), req, inline, c.IP())
	if err != nil {
		return apperr.Respond(c, err, "broadcast_email")
	}
	return c.JSON(result)
}
