package handlers

import (
	"errors"
	"os"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const uploadCacheControl = "public, max-age=31536000, immutable"

// UploadHandler serves files written by storage.LocalStorage.
type UploadHandler struct {
	store *storage.LocalStorage
}

func NewUploadHandler(store *storage.LocalStorage) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) Serve(c *fiber.Ctx) error {
	rel := c.Params("*")
	path, err := h.store.Resolve(rel)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "File not found",
		})
	}
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, storage.ContentType(path))
	c.Set(fiber.HeaderCacheControl, uploadCacheControl)
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	return c.SendFile(path)
}
