package reviews

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/patch"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	deps    modules.Deps
	reviews *ReviewService
	subs    *SubmissionService
}

func NewHandler(deps modules.Deps, reviews *ReviewService, subs *SubmissionService) *Handler {
	return &Handler{deps: deps, reviews: reviews, subs: subs}
}

// ListPublished serves GET /api/reviews[?featured=true].
func (h *Handler) ListPublished(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListPublished(c.UserContext(), c.QueryBool("featured"))
	if err != nil {
		return apperr.Respond(c, err, "list_reviews")
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

// Submit serves the public review form.
func (h *Handler) Submit(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var in SubmissionInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.BadRequest(c, "Invalid form data")
	}
	if err := modules.VerifyHuman(ctx, h.deps.Captcha, in.CaptchaToken, c.IP()); err != nil {
		metrics.FormSubmissions.WithLabelValues("review", "bot").Inc()
		return apperr.Respond(c, err, "review_submission_captcha")
	}
	if err := ValidateInput(&in, h.deps.Site, h.deps.Filter); err != nil {
		metrics.FormSubmissions.WithLabelValues("review", "invalid").Inc()
		return apperr.Respond(c, err, "review_submission")
	}

	files := modules.FormFiles(c, "images")
	if len(files) < MinImages || len(files) > MaxImages {
		metrics.FormSubmissions.WithLabelValues("review", "invalid").Inc()
		return apperr.Respond(c, apperr.Invalid("images", "between %d and %d images are required", MinImages, MaxImages), "review_submission")
	}
	urls, err := modules.SaveImages(ctx, h.deps.Storage, storage.FolderReviews, "images", files)
	if err != nil {
		return apperr.Respond(c, err, "review_submission_upload")
	}

	sub, err := h.subs.Submit(ctx, in, urls)
	if err != nil {
		modules.DiscardFiles(ctx, h.deps.Storage, urls)
		return apperr.Respond(c, err, "review_submission")
	}
	metrics.FormSubmissions.WithLabelValues("review", "accepted").Inc()

	text := ""
	if sub.ReviewText != nil {
		text = *sub.ReviewText
	}
	h.deps.Notifier.ReviewSubmitted(ctx, mailer.ReviewNotice{
		Name:       sub.ReviewerName,
		Email:      sub.ReviewerEmail,
		Rating:     sub.StarRating,
		Category:   sub.ServiceCategory,
		Text:       text,
		ImageCount: len(urls),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      sub.ID,
		"message": "Thank you! Your review has been submitted for approval.",
	})
}

func (h *Handler) ListAll(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListAll(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err, "admin_list_reviews")
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()

	raw, err := patch.Values(c)
	if err != nil {
		return apperr.Respond(c, err, "create_review")
	}
	if err := patch.Require(raw, "reviewer_name", "star_rating"); err != nil {
		return apperr.Respond(c, err, "create_review")
	}
	set, err := reviewSchema.Parse(raw)
	if err != nil {
		return apperr.Respond(c, err, "create_review")
	}

	screenshot, err := modules.SaveImage(ctx, h.deps.Storage, storage.FolderReviews, "screenshot", modules.FormFile(c, "screenshot"), false)
	if err != nil {
		return apperr.Respond(c, err, "create_review_upload")
	}
	images, err := modules.SaveImages(ctx, h.deps.Storage, storage.FolderReviews, "images", modules.FormFiles(c, "images"))
	if err != nil {
		modules.DiscardFiles(ctx, h.deps.Storage, []string{screenshot})
		return apperr.Respond(c, err, "create_review_upload")
	}
	if screenshot == "" && len(images) > 0 {
		screenshot = images[0]
	}

	review, err := h.reviews.Create(ctx, set, screenshot, images, c.IP())
	if err != nil {
		modules.DiscardFiles(ctx, h.deps.Storage, append(images, screenshot))
		return apperr.Respond(c, err, "create_review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "update_review")
	}
	raw, err := patch.Values(c)
	if err != nil {
		return apperr.Respond(c, err, "update_review")
	}
	set, err := reviewSchema.Parse(raw)
	if err != nil {
		return apperr.Respond(c, err, "update_review")
	}

	screenshot, err := modules.SaveImage(ctx, h.deps.Storage, storage.FolderReviews, "screenshot", modules.FormFile(c, "screenshot"), false)
	if err != nil {
		return apperr.Respond(c, err, "update_review_upload")
	}
	if screenshot != "" {
		set["screenshot_url"] = screenshot
	}

	review, err := h.reviews.Update(ctx, id, set, c.IP())
	if err != nil {
		modules.DiscardFiles(ctx, h.deps.Storage, []string{screenshot})
		return apperr.Respond(c, err, "update_review")
	}
	return c.JSON(review)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "delete_review")
	}
	if err := h.reviews.Delete(c.UserContext(), id, c.IP()); err != nil {
		return apperr.Respond(c, err, "delete_review")
	}
	return c.JSON(dto.MessageResponse{Message: "Review deleted"})
}

// ListSubmissions serves GET /api/admin/review-submissions[?status=].
func (h *Handler) ListSubmissions(c *fiber.Ctx) error {
	subs, err := h.subs.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return apperr.Respond(c, err, "list_review_submissions")
	}
	return c.JSON(fiber.Map{"submissions": subs})
}

// Moderate applies approve, reject or undo to one submission.
func (h *Handler) Moderate(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "moderate_review_submission")
	}
	var req dto.SubmissionActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}

	res, err := h.subs.Apply(c.UserContext(), id, req.Action, req.AdminNotes, c.IP())
	if err != nil {
		return apperr.Respond(c, err, "moderate_review_submission")
	}
	slog.Info("review submission moderated", "id", id, "action", req.Action)
	return c.JSON(res)
}

func (h *Handler) DeleteSubmission(c *fiber.Ctx) error {
	id, err := modules.ParamID(c)
	if err != nil {
		return apperr.Respond(c, err, "delete_review_submission")
	}
	if err := h.subs.Delete(c.UserContext(), id, c.IP()); err != nil {
		return apperr.Respond(c, err, "delete_review_submission")
	}
	return c.JSON(dto.MessageResponse{Message: "Review submission deleted"})
}
