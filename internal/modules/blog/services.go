package blog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/patch"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"gorm.io/gorm"
)

const entityPost = "blog_post"

var (
	ErrPostNotFound = apperr.NotFound("blog post")
	ErrSlugTaken    = apperr.Conflict("slug is already used by another post")
	ErrInvalidState = apperr.Invalid("status", "must be published or draft")
	ErrNoChanges    = apperr.Invalid("", "no fields to update")
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapse = regexp.MustCompile(`[\s-]+`)
)

// Slugify lowercases s and joins its words with hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func normalizeSlug(s string) (string, error) {
	slug := Slugify(s)
	if slug == "" {
		return "", errors.New("must contain letters or digits")
	}
	return slug, nil
}

var postSchema = patch.Schema{
	"title":           {Column: "title", Kind: patch.String, MaxLen: 200},
	"slug":            {Column: "slug", Kind: patch.String, MaxLen: 220, Normalize: normalizeSlug},
	"excerpt":         {Column: "excerpt", Kind: patch.OptionalString, MaxLen: 500},
	"content":         {Column: "content", Kind: patch.String},
	"category":        {Column: "category", Kind: patch.OptionalString, MaxLen: 100},
	"author":          {Column: "author", Kind: patch.OptionalString, MaxLen: 100},
	"cover_image_url": {Column: "cover_image_url", Kind: patch.OptionalString, MaxLen: 500},
	"is_published":    {Column: "is_published", Kind: patch.Bool},
	"published_at":    {Column: "published_at", Kind: patch.Date},
}

type PostService struct {
	db      *gorm.DB
	audit   *services.AuditService
	storage storage.Storage
	now     func() time.Time
}

func NewPostService(db *gorm.DB, audit *services.AuditService, store storage.Storage) *PostService {
	return &PostService{db: db, audit: audit, storage: store, now: time.Now}
}

func (s *PostService) List(ctx context.Context, f ListFilter) ([]Post, error) {
	query := s.db.WithContext(ctx).Model(&Post{})
	switch f.Status {
	case "":
	case "published":
		query = query.Where("is_published = ?", true)
	case "draft":
		query = query.Where("is_published = ?", false)
	default:
		return nil, ErrInvalidState
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	var posts []Post
	err := query.Order("published_at DESC").Order("created_at DESC").Order("id DESC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	return posts, nil
}

// GetPublished looks a post up by slug; drafts are reported as not found.
func (s *PostService) GetPublished(ctx context.Context, slug string) (*Post, error) {
	var post Post
	err := s.db.WithContext(ctx).Where("slug = ? AND is_published = ?", slug, true).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load blog post: %w", err)
	}
	return &post, nil
}

func (s *PostService) load(tx *gorm.DB, id uint) (*Post, error) {
	var post Post
	err := tx.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load blog post: %w", err)
	}
	return &post, nil
}

func slugInUse(tx *gorm.DB, slug string, exceptID uint) (bool, error) {
	var n int64
	err := tx.Model(&Post{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return n > 0, nil
}

// uniqueSlug appends -2, -3, ... to base until no other post uses it.
func uniqueSlug(tx *gorm.DB, base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		taken, err := slugInUse(tx, slug, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Create inserts a post. Without an explicit slug one is derived from the
// title; publishing without a date stamps today.
func (s *PostService) Create(ctx context.Context, set patch.Set, ip string) (*Post, error) {
	post := &Post{
		Title:         set.String("title"),
		Excerpt:       set.StringPtr("excerpt"),
		Content:       set.String("content"),
		CoverImageURL: set.StringPtr("cover_image_url"),
		Category:      set.StringPtr("category"),
		Author:        set.StringPtr("author"),
		IsPublished:   set.Bool("is_published", false),
		PublishedAt:   set.Time("published_at"),
	}
	if post.IsPublished && post.PublishedAt == nil {
		now := s.now()
		post.PublishedAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if set.Has("slug") {
			taken, err := slugInUse(tx, set.String("slug"), 0)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
			post.Slug = set.String("slug")
		} else {
			base := Slugify(post.Title)
			if base == "" {
				base = "post"
			}
			slug, err := uniqueSlug(tx, base)
			if err != nil {
				return err
			}
			post.Slug = slug
		}
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("failed to create blog post: %w", err)
		}
		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionCreate,
			EntityType: entityPost,
			EntityID:   post.ID,
			Details:    fmt.Sprintf("Created blog post %q", post.Title),
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id uint, set patch.Set, ip string) (*Post, error) {
	if len(set) == 0 {
		return nil, ErrNoChanges
	}
	var (
		updated  *Post
		replaced string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if set.Has("slug") {
			taken, err := slugInUse(tx, set.String("slug"), id)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
		}
		if set.Bool("is_published", false) && !current.IsPublished && !set.Has("published_at") && current.PublishedAt == nil {
			set["published_at"] = s.now()
		}
		if set.Has("cover_image_url") && current.CoverImageURL != nil && *current.CoverImageURL != set.String("cover_image_url") {
			replaced = *current.CoverImageURL
		}

		if err := tx.Model(&Post{}).Where("id = ?", id).Updates(map[string]interface{}(set)).Error; err != nil {
			return fmt.Errorf("failed to update blog post: %w", err)
		}
		if err := s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionUpdate,
			EntityType: entityPost,
			EntityID:   id,
			Details:    fmt.Sprintf("Updated blog post %q", current.Title),
			IP:         ip,
		}); err != nil {
			return err
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

func (s *PostService) Delete(ctx context.Context, id uint, ip string) error {
	var cover string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if post.CoverImageURL != nil {
			cover = *post.CoverImageURL
		}
		if err := tx.Delete(&Post{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete blog post: %w", err)
		}
		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionDelete,
			EntityType: entityPost,
			EntityID:   id,
			Details:    fmt.Sprintf("Deleted blog post %q", post.Title),
			IP:         ip,
		})
	})
	if err != nil {
		return err
	}
	modules.DeleteFile(ctx, s.storage, cover)
	return nil
}
