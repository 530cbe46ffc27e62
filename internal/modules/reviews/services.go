package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/patch"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityReview = "review"

var (
	ErrReviewNotFound = apperr.NotFound("review")
	ErrNoChanges      = apperr.Invalid("", "no fields to update")
)

var ratingMin, ratingMax = patch.IntRange(1, 5)

var reviewSchema = patch.Schema{
	"reviewer_name": {Column: "reviewer_name", Kind: patch.String, MaxLen: 100},
	"star_rating":   {Column: "star_rating", Kind: patch.Int, Min: ratingMin, Max: ratingMax},
	"review_text":   {Column: "review_text", Kind: patch.OptionalString, MaxLen: 2000},
	"tag":           {Column: "tag", Kind: patch.OptionalString, MaxLen: 100},
	"is_featured":   {Column: "is_featured", Kind: patch.Bool},
	"is_published":  {Column: "is_published", Kind: patch.Bool},
	"display_order": {Column: "display_order", Kind: patch.Int},
}

type ReviewService struct {
	db      *gorm.DB
	audit   *services.AuditService
	storage storage.Storage
}

func NewReviewService(db *gorm.DB, audit *services.AuditService, store storage.Storage) *ReviewService {
	return &ReviewService{db: db, audit: audit, storage: store}
}

func orderedReviewImages(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("id ASC")
}

func (s *ReviewService) ordered(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Images", orderedReviewImages).
		Order("display_order ASC").
		Order("created_at DESC").
		Order("id DESC")
}

// ListPublished returns what the public site shows.
func (s *ReviewService) ListPublished(ctx context.Context, featuredOnly bool) ([]Review, error) {
	query := s.ordered(ctx).Where("is_published = ?", true)
	if featuredOnly {
		query = query.Where("is_featured = ?", true)
	}
	var reviews []Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListAll includes unpublished reviews for the dashboard.
func (s *ReviewService) ListAll(ctx context.Context) ([]Review, error) {
	var reviews []Review
	if err := s.ordered(ctx).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) Get(ctx context.Context, id uint) (*Review, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *ReviewService) load(tx *gorm.DB, id uint) (*Review, error) {
	var review Review
	err := tx.Preload("Images", orderedReviewImages).First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &review, nil
}

// Create inserts an admin-authored review. Reviews are published unless the
// form says otherwise.
func (s *ReviewService) Create(ctx context.Context, set patch.Set, screenshotURL string, imageURLs []string, ip string) (*Review, error) {
	review := &Review{
		ReviewerName: set.String("reviewer_name"),
		StarRating:   set.Int("star_rating", 0),
		ReviewText:   set.StringPtr("review_text"),
		Tag:          set.StringPtr("tag"),
		IsFeatured:   set.Bool("is_featured", false),
		IsPublished:  set.Bool("is_published", true),
		DisplayOrder: set.Int("display_order", 0),
	}
	if screenshotURL != "" {
		review.ScreenshotURL = &screenshotURL
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		for i, url := range imageURLs {
			img := ReviewImage{ReviewID: review.ID, ImageURL: url, DisplayOrder: i}
			if err := tx.Create(&img).Error; err != nil {
				return fmt.Errorf("failed to create review image: %w", err)
			}
			review.Images = append(review.Images, img)
		}
		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionCreate,
			EntityType: entityReview,
			EntityID:   review.ID,
			Details:    fmt.Sprintf("Created %d-star review from %s", review.StarRating, review.ReviewerName),
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// Update applies a partial patch. A replaced screenshot file is removed once
// nothing references it.
func (s *ReviewService) Update(ctx context.Context, id uint, set patch.Set, ip string) (*Review, error) {
	if len(set) == 0 {
		return nil, ErrNoChanges
	}
	var (
		updated  *Review
		replaced string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if set.Has("screenshot_url") && current.ScreenshotURL != nil && *current.ScreenshotURL != set.String("screenshot_url") {
			replaced = *current.ScreenshotURL
		}
		if err := tx.Model(&Review{}).Where("id = ?", id).Updates(map[string]interface{}(set)).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		if err := s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionUpdate,
			EntityType: entityReview,
			EntityID:   id,
			Details:    fmt.Sprintf("Updated review from %s (%d fields)", current.ReviewerName, len(set)),
			IP:         ip,
		}); err != nil {
			return err
		}
		if replaced != "" {
			used, err := imageInUse(tx, replaced)
			if err != nil {
				return err
			}
			if used {
				replaced = ""
			}
		}
		updated, err = s.load(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	modules.DeleteFile(ctx, s.storage, replaced)
	return updated, nil
}

// Delete removes the review and its image rows, then any files no other row
// still uses.
func (s *ReviewService) Delete(ctx context.Context, id uint, ip string) error {
	var orphaned []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&ReviewImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete review images: %w", err)
		}
		if err := tx.Delete(&Review{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		candidates := make([]string, 0, len(review.Images)+1)
		if review.ScreenshotURL != nil {
			candidates = append(candidates, *review.ScreenshotURL)
		}
		for _, img := range review.Images {
			candidates = append(candidates, img.ImageURL)
		}
		seen := make(map[string]bool, len(candidates))
		for _, url := range candidates {
			if seen[url] {
				continue
			}
			seen[url] = true
			used, err := imageInUse(tx, url)
			if err != nil {
				return err
			}
			if !used {
				orphaned = append(orphaned, url)
			}
		}

		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionDelete,
			EntityType: entityReview,
			EntityID:   id,
			Details:    fmt.Sprintf("Deleted review from %s", review.ReviewerName),
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
