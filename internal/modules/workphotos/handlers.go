package workphotos

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/patch"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	photos  *PhotoService
	storage storage.Storage
	schema  patch.Schema
}

func NewHandler(photos *PhotoService, store storage.Storage, schema patch.Schema) *Handler {
	return &Handler{photos: photos, storage: store, schema: schema}
}

func (h *Handler) List(c *fiber.Ctx) error {
	photos, err := h.photos.List(c.UserContext(), c.Query("category"))
	if err != nil {
		return apperr.Respond(c, err, "list_work_photos")
	}
	return c.JSON(fiber.Map{"photos": photos})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()

	raw, err := patch.Values(c)
	if err != nil {
		return apperr.Respond(c, err, "create_work_photo")
	}
	if err := patch.Require(raw, "title"); err != nil {
		return apperr.Respond(c, err, "create_work_photo")
	}
	set, err := h.schema.Parse(raw)
	if err != nil {
		return apperr.Respond(c, err, "create_work_photo")
	}
	url, err := modules.SaveImage(ctx, h.storage, storage.FolderWorkPhotos, "image", modules.FormFile(c, "image"), true)
	if err != nil {
		return apperr.Respond(c, err, "create_work_photo_upload")
	}

	photo, err := h.photos.Create(ctx, set, url, c.IP())
	if err != nil {
		modules.DiscardFiles(ctx, h.storage, []string{url})
		return apperr.Respond(c, err, "create_work_photo")
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "update_work_photo")
	}
	raw, err := patch.Values(c)
	if err != nil {
		return apperr.Respond(c, err, "update_work_photo")
	}
	set, err := h.schema.Parse(raw)
	if err != nil {
		return apperr.Respond(c, err, "update_work_photo")
	}
	url, err := modules.SaveImage(ctx, h.storage, storage.FolderWorkPhotos, "image", modules.FormFile(c, "image"), false)
	if err != nil {
		return apperr.Respond(c, err, "update_work_photo_upload")
	}
	if url != "" {
		set["image_url"] = url
	}

	photo, err := h.photos.Update(ctx, id, set, c.IP())
	if err != nil {
		modules.DiscardFiles(ctx, h.storage, []string{url})
		return apperr.Respond(c, err, "update_work_photo")
	}
	return c.JSON(photo)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "delete_work_photo")
	}
	if err := h.photos.Delete(c.UserContext(), id, c.IP()); err != nil {
		return apperr.Respond(c, err, "delete_work_photo")
	}
	return c.JSON(dto.MessageResponse{Message: "Work photo deleted"})
}
