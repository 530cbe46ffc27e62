package workphotos

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/patch"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"gorm.io/gorm"
)

const entityPhoto = "work_photo"

var (
	ErrPhotoNotFound = apperr.NotFound("work photo")
	ErrNoChanges     = apperr.Invalid("", "no fields to update")
)

func photoSchema(registry *site.Registry) patch.Schema {
	return patch.Schema{
		"title":         {Column: "title", Kind: patch.String, MaxLen: 200},
		"description":   {Column: "description", Kind: patch.OptionalString, MaxLen: 2000},
		"category":      {Column: "category", Kind: patch.OptionalString, MaxLen: 100, Normalize: categoryOf(registry)},
		"display_order": {Column: "display_order", Kind: patch.Int},
		"is_featured":   {Column: "is_featured", Kind: patch.Bool},
		"taken_at":      {Column: "taken_at", Kind: patch.Date},
	}
}

func categoryOf(registry *site.Registry) func(string) (string, error) {
	return func(s string) (string, error) {
		if c, ok := registry.Category(s); ok {
			return c, nil
		}
		return "", errors.New("is not a known service category")
	}
}

type PhotoService struct {
	db      *gorm.DB
	audit   *services.AuditService
	storage storage.Storage
}

func NewPhotoService(db *gorm.DB, audit *services.AuditService, store storage.Storage) *PhotoService {
	return &PhotoService{db: db, audit: audit, storage: store}
}

func (s *PhotoService) List(ctx context.Context, category string) ([]Photo, error) {
	query := s.db.WithContext(ctx).Model(&Photo{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var photos []Photo
	err := query.Order("display_order ASC").Order("created_at DESC").Order("id DESC").Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list work photos: %w", err)
	}
	return photos, nil
}

func (s *PhotoService) load(tx *gorm.DB, id uint) (*Photo, error) {
	var photo Photo
	err := tx.First(&photo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load work photo: %w", err)
	}
	return &photo, nil
}

func (s *PhotoService) Create(ctx context.Context, set patch.Set, imageURL, ip string) (*Photo, error) {
	photo := &Photo{
		Title:        set.String("title"),
		Description:  set.StringPtr("description"),
		Category:     set.StringPtr("category"),
		ImageURL:     imageURL,
		DisplayOrder: set.Int("display_order", 0),
		IsFeatured:   set.Bool("is_featured", false),
		TakenAt:      set.Time("taken_at"),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(photo).Error; err != nil {
			return fmt.Errorf("failed to create work photo: %w", err)
		}
		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionCreate,
			EntityType: entityPhoto,
			EntityID:   photo.ID,
			Details:    fmt.Sprintf("Added work photo %q", photo.Title),
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// Update applies a partial patch. When image_url changes the previous file is
// deleted after commit.
func (s *PhotoService) Update(ctx context.Context, id uint, set patch.Set, ip string) (*Photo, error) {
	if len(set) == 0 {
		return nil, ErrNoChanges
	}
	var (
		updated  *Photo
		replaced string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if url := set.String("image_url"); url != "" && url != current.ImageURL {
			replaced = current.ImageURL
		}
		if err := tx.Model(&Photo{}).Where("id = ?", id).Updates(map[string]interface{}(set)).Error; err != nil {
			return fmt.Errorf("failed to update work photo: %w", err)
		}
		if err := s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionUpdate,
			EntityType: entityPhoto,
			EntityID:   id,
			Details:    fmt.Sprintf("Updated work photo %q", current.Title),
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

func (s *PhotoService) Delete(ctx context.Context, id uint, ip string) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		photo, err := s.load(tx, id)
		if err != nil {
			return err
		}
		image = photo.ImageURL
		if err := tx.Delete(&Photo{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete work photo: %w", err)
		}
		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionDelete,
			EntityType: entityPhoto,
			EntityID:   id,
			Details:    fmt.Sprintf("Deleted work photo %q", photo.Title),
			IP:         ip,
		})
	})
	if err != nil {
		return err
	}
	modules.DeleteFile(ctx, s.storage, image)
	return nil
}
