package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entitySubmission = "review_submission"

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionUndo    = "undo"

	MinImages = 1
	MaxImages = 5
)

var (
	ErrSubmissionNotFound = apperr.NotFound("review submission")
	ErrInvalidAction      = apperr.Invalid("action", "must be one of approve, reject, undo")
	ErrInvalidStatus      = apperr.Invalid("status", "must be one of pending, approved, rejected")
	ErrAlreadyApproved    = apperr.Conflict("review submission is already approved")
	ErrNotRejected        = apperr.Conflict("only rejected submissions can be restored to pending")
)

// SubmissionService runs the moderation pipeline: public intake, then
// approve (promote into reviews), reject, undo and purge.
type SubmissionService struct {
	db      *gorm.DB
	audit   *services.AuditService
	storage storage.Storage
	now     func() time.Time
}

func NewSubmissionService(db *gorm.DB, audit *services.AuditService, store storage.Storage) *SubmissionService {
	return &SubmissionService{db: db, audit: audit, storage: store, now: time.Now}
}

// ValidateInput checks the form fields and canonicalizes the category.
func ValidateInput(in *SubmissionInput, registry *site.Registry, filter *services.ContentFilter) error {
	in.ReviewerName = strings.TrimSpace(in.ReviewerName)
	in.ReviewerEmail = strings.TrimSpace(in.ReviewerEmail)
	in.ReviewText = strings.TrimSpace(in.ReviewText)
	if err := validation.Struct(in); err != nil {
		return err
	}
	category, ok := registry.Category(in.ServiceCategory)
	if !ok {
		return apperr.Invalid("service_category", "must be one of: %s", strings.Join(registry.Categories(), ", "))
	}
	in.ServiceCategory = category
	if err := filter.Validate("reviewer_name", in.ReviewerName, services.ReviewPolicy); err != nil {
		return err
	}
	return filter.Validate("review_text", in.ReviewText, services.ReviewPolicy)
}

// Submit stores a validated submission as pending with its images in upload
// order.
func (s *SubmissionService) Submit(ctx context.Context, in SubmissionInput, imageURLs []string) (*ReviewSubmission, error) {
	if len(imageURLs) < MinImages || len(imageURLs) > MaxImages {
		return nil, apperr.Invalid("images", "between %d and %d images are required", MinImages, MaxImages)
	}
	sub := &ReviewSubmission{
		ReviewerName:    in.ReviewerName,
		ReviewerEmail:   in.ReviewerEmail,
		StarRating:      in.StarRating,
		ServiceCategory: in.ServiceCategory,
		Status:          StatusPending,
	}
	if in.ReviewText != "" {
		text := in.ReviewText
		sub.ReviewText = &text
	}
	for i, url := range imageURLs {
		sub.Images = append(sub.Images, SubmissionImage{ImageURL: url, DisplayOrder: i})
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create review submission: %w", err)
	}
	return sub, nil
}

func orderedSubmissionImages(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("id ASC")
}

// List returns submissions newest first, each with its ordered images. An
// empty status lists everything.
func (s *SubmissionService) List(ctx context.Context, status string) ([]ReviewSubmission, error) {
	query := s.db.WithContext(ctx).Preload("Images", orderedSubmissionImages)
	if status != "" {
		if !validStatus(status) {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}
	var subs []ReviewSubmission
	if err := query.Order("created_at DESC").Order("id DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list review submissions: %w", err)
	}
	return subs, nil
}

func (s *SubmissionService) Get(ctx context.Context, id uint) (*ReviewSubmission, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *SubmissionService) load(tx *gorm.DB, id uint) (*ReviewSubmission, error) {
	var sub ReviewSubmission
	err := tx.Preload("Images", orderedSubmissionImages).First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review submission: %w", err)
	}
	return &sub, nil
}

// Apply dispatches an admin moderation action.
func (s *SubmissionService) Apply(ctx context.Context, id uint, action string, notes *string, ip string) (*ActionResult, error) {
	var (
		res *ActionResult
		err error
	)
	switch action {
	case ActionApprove:
		res, err = s.Approve(ctx, id, notes, ip)
	case ActionReject:
		res, err = s.Reject(ctx, id, notes, ip)
	case ActionUndo:
		res, err = s.Undo(ctx, id, ip)
	default:
		return nil, ErrInvalidAction
	}
	if err == nil {
		metrics.ModerationActions.WithLabelValues(action).Inc()
	}
	return res, err
}

// Approve promotes the submission into a published Review. The review, its
// image copies, the status change and the audit entry commit together.
func (s *SubmissionService) Approve(ctx context.Context, id uint, notes *string, ip string) (*ActionResult, error) {
	var res ActionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if sub.Status == StatusApproved {
			return ErrAlreadyApproved
		}

		review := &Review{
			ReviewerName: sub.ReviewerName,
			StarRating:   sub.StarRating,
			ReviewText:   sub.ReviewText,
			Tag:          &sub.ServiceCategory,
			IsFeatured:   false,
			IsPublished:  true,
		}
		if len(sub.Images) > 0 {
			first := sub.Images[0].ImageURL
			review.ScreenshotURL = &first
		}
		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		for i, img := range sub.Images {
			copied := ReviewImage{ReviewID: review.ID, ImageURL: img.ImageURL, DisplayOrder: i}
			if err := tx.Create(&copied).Error; err != nil {
				return fmt.Errorf("failed to copy review image: %w", err)
			}
			review.Images = append(review.Images, copied)
		}

		now := s.now()
		// The status guard in WHERE makes a concurrent second approval
		// update nothing and roll back its review.
		changes := map[string]interface{}{
			"status":      StatusApproved,
			"reviewed_at": now,
			"review_id":   review.ID,
		}
		if notes != nil {
			sub.AdminNotes = normalizeNotes(*notes)
			changes["admin_notes"] = notesColumn(sub.AdminNotes)
		}
		result := tx.Model(&ReviewSubmission{}).
			Where("id = ? AND status <> ?", id, StatusApproved).
			Updates(changes)
		if result.Error != nil {
			return fmt.Errorf("failed to update review submission: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyApproved
		}

		if err := s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionApprove,
			EntityType: entitySubmission,
			EntityID:   id,
			Details:    fmt.Sprintf("Approved review from %s as review #%d", sub.ReviewerName, review.ID),
			IP:         ip,
		}); err != nil {
			return err
		}

		sub.Status = StatusApproved
		sub.ReviewedAt = &now
		sub.ReviewID = &review.ID
		res = ActionResult{Submission: sub, Review: review}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Reject marks the submission rejected. Approved submissions cannot be
// rejected because their review is already published.
func (s *SubmissionService) Reject(ctx context.Context, id uint, notes *string, ip string) (*ActionResult, error) {
	return s.transition(ctx, id, ip,
		func(sub *ReviewSubmission) error {
			if sub.Status == StatusApproved {
				return ErrAlreadyApproved
			}
			return nil
		},
		func(now time.Time) map[string]interface{} {
			changes := map[string]interface{}{
				"status":      StatusRejected,
				"reviewed_at": now,
			}
			if notes != nil {
				changes["admin_notes"] = notesColumn(normalizeNotes(*notes))
			}
			return changes
		},
		services.ActionReject, "Rejected review from %s",
	)
}

// Undo returns a rejected submission to pending. Any other status is left
// untouched and reported as ErrNotRejected.
func (s *SubmissionService) Undo(ctx context.Context, id uint, ip string) (*ActionResult, error) {
	return s.transition(ctx, id, ip,
		func(sub *ReviewSubmission) error {
			if sub.Status != StatusRejected {
				return ErrNotRejected
			}
			return nil
		},
		func(time.Time) map[string]interface{} {
			return map[string]interface{}{
				"status":      StatusPending,
				"reviewed_at": nil,
			}
		},
		services.ActionUndo, "Restored review from %s to pending",
	)
}

// normalizeNotes stores blank notes as NULL.
func normalizeNotes(notes string) *string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil
	}
	return &notes
}

func notesColumn(notes *string) interface{} {
	if notes == nil {
		return nil
	}
	return *notes
}

func (s *SubmissionService) transition(
	ctx context.Context,
	id uint,
	ip string,
	guard func(*ReviewSubmission) error,
	changes func(time.Time) map[string]interface{},
	auditAction, detail string,
) (*ActionResult, error) {
	var res ActionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := guard(sub); err != nil {
			return err
		}
		if err := tx.Model(&ReviewSubmission{}).
			Where("id = ? AND status = ?", id, sub.Status).
			Updates(changes(s.now())).Error; err != nil {
			return fmt.Errorf("failed to update review submission: %w", err)
		}
		if err := s.audit.RecordTx(tx, services.AuditEntry{
			Action:     auditAction,
			EntityType: entitySubmission,
			EntityID:   id,
			Details:    fmt.Sprintf(detail, sub.ReviewerName),
			IP:         ip,
		}); err != nil {
			return err
		}
		updated, err := s.load(tx, id)
		if err != nil {
			return err
		}
		res.Submission = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Delete purges the submission and its image rows. Published reviews are not
// touched, and image files still shown by a review are kept.
func (s *SubmissionService) Delete(ctx context.Context, id uint, ip string) error {
	var orphaned []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", id).Delete(&SubmissionImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete submission images: %w", err)
		}
		if err := tx.Delete(&ReviewSubmission{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete review submission: %w", err)
		}
		for _, img := range sub.Images {
			used, err := imageInUse(tx, img.ImageURL)
			if err != nil {
				return err
			}
			if !used {
				orphaned = append(orphaned, img.ImageURL)
			}
		}
		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionDelete,
			EntityType: entitySubmission,
			EntityID:   id,
			Details:    fmt.Sprintf("Deleted %s review submission from %s", sub.Status, sub.ReviewerName),
			IP:         ip,
		})
	})
	if err != nil {
		return err
	}
	for _, url := range orphaned {
		modules.DeleteFile(ctx, s.storage, url)
	}
	return nil
}

// imageInUse reports whether any review or submission row still points at
// url.
func imageInUse(tx *gorm.DB, url string) (bool, error) {
	checks := []struct {
		model  interface{}
		column string
	}{
		{&Review{}, "screenshot_url"},
		{&ReviewImage{}, "image_url"},
		{&SubmissionImage{}, "image_url"},
	}
	for _, c := range checks {
		var n int64
		if err := tx.Model(c.model).Where(c.column+" = ?", url).Count(&n).Error; err != nil {
			return false, fmt.Errorf("failed to check image references: %w", err)
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}
