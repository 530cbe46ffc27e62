package blog

import (
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/patch"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	posts   *PostService
	storage storage.Storage
}

func NewHandler(posts *PostService, store storage.Storage) *Handler {
	return &Handler{posts: posts, storage: store}
}

func (h *Handler) ListPublished(c *fiber.Ctx) error {
	posts, err := h.posts.List(c.UserContext(), ListFilter{Status: "published", Category: c.Query("category")})
	if err != nil {
		return apperr.Respond(c, err, "list_blog_posts")
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (h *Handler) GetBySlug(c *fiber.Ctx) error {
	post, err := h.posts.GetPublished(c.UserContext(), c.Params("slug"))
	if err != nil {
		return apperr.Respond(c, err, "get_blog_post")
	}
	return c.JSON(post)
}

func (h *Handler) ListAll(c *fiber.Ctx) error {
	posts, err := h.posts.List(c.UserContext(), ListFilter{Status: c.Query("status"), Category: c.Query("category")})
	if err != nil {
		return apperr.Respond(c, err, "admin_list_blog_posts")
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// parseForm reads the patch fields and stores an uploaded cover, returning
// the new file's URL so the caller can discard it on failure.
func (h *Handler) parseForm(c *fiber.Ctx, required ...string) (patch.Set, string, error) {
	raw, err := patch.Values(c)
	if err != nil {
		return nil, "", err
	}
	if err := patch.Require(raw, required...); err != nil {
		return nil, "", err
	}
	set, err := postSchema.Parse(raw)
	if err != nil {
		return nil, "", err
	}
	cover, err := modules.SaveImage(c.UserContext(), h.storage, storage.FolderBlog, "cover_image", modules.FormFile(c, "cover_image"), false)
	if err != nil {
		return nil, "", err
	}
	if cover != "" {
		set["cover_image_url"] = cover
	}
	return set, cover, nil
}

func (h *Handler) Create(c *fiber.Ctx) error {
	set, cover, err := h.parseForm(c, "title", "content")
	if err != nil {
		return apperr.Respond(c, err, "create_blog_post")
	}
	post, err := h.posts.Create(c.UserContext(), set, c.IP())
	if err != nil {
		modules.DiscardFiles(c.UserContext(), h.storage, []string{cover})
		return apperr.Respond(c, err, "create_blog_post")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "update_blog_post")
	}
	set, cover, err := h.parseForm(c)
	if err != nil {
		return apperr.Respond(c, err, "update_blog_post")
	}
	post, err := h.posts.Update(c.UserContext(), id, set, c.IP())
	if err != nil {
		modules.DiscardFiles(c.UserContext(), h.storage, []string{cover})
		return apperr.Respond(c, err, "update_blog_post")
	}
	return c.JSON(post)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "delete_blog_post")
	}
	if err := h.posts.Delete(c.UserContext(), id, c.IP()); err != nil {
		return apperr.Respond(c, err, "delete_blog_post")
	}
	return c.JSON(dto.MessageResponse{Message: "Blog post deleted"})
}
