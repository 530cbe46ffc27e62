package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/validation"
	"gorm.io/gorm"
)

const (
	entityContact = "contact"
	maxPageSize   = 100
)

var (
	ErrContactNotFound = apperr.NotFound("contact")
	ErrInvalidStatus   = apperr.Invalid("status", "must be one of unread, read, deleted, all")
	ErrNotDeleted      = apperr.Conflict("contact is not deleted")
	ErrNoChanges       = apperr.Invalid("", "no fields to update")
)

// ValidateInput trims and checks the form. A service matching a known
// category is canonicalized; anything else is kept as typed.
func ValidateInput(in *ContactInput, registry *site.Registry, filter *services.ContentFilter) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Service = strings.TrimSpace(in.Service)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return err
	}
	if c, ok := registry.Category(in.Service); ok {
		in.Service = c
	}
	return filter.Validate("message", in.Message, services.MessagePolicy)
}

type ContactService struct {
	db    *gorm.DB
	audit *services.AuditService
}

func NewContactService(db *gorm.DB, audit *services.AuditService) *ContactService {
	return &ContactService{db: db, audit: audit}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*Contact, error) {
	contact := &Contact{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   optional(in.Phone),
		Service: optional(in.Service),
		Message: in.Message,
	}
	if err := s.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}
	return contact, nil
}

func (s *ContactService) scoped(ctx context.Context, status string) (*gorm.DB, error) {
	base := s.db.WithContext(ctx).Model(&Contact{})
	switch status {
	case "":
		return base, nil
	case StatusUnread:
		return base.Where("is_read = ?", false), nil
	case StatusRead:
		return base.Where("is_read = ?", true), nil
	case StatusDeleted:
		return base.Unscoped().Where("deleted_at IS NOT NULL"), nil
	case StatusAll:
		return base.Unscoped(), nil
	}
	return nil, ErrInvalidStatus
}

// List pages through contacts newest first. The default view hides deleted
// rows.
func (s *ContactService) List(ctx context.Context, status string, page, limit int) (*ListResponse, error) {
	page, limit = dto.PageParams(page, limit, maxPageSize)

	query, err := s.scoped(ctx, status)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	var contacts []Contact
	err = query.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	var unread int64
	if err := s.db.WithContext(ctx).Model(&Contact{}).Where("is_read = ?", false).Count(&unread).Error; err != nil {
		return nil, fmt.Errorf("failed to count unread contacts: %w", err)
	}

	return &ListResponse{
		Contacts:   contacts,
		Unread:     unread,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

func (s *ContactService) load(tx *gorm.DB, id uint) (*Contact, error) {
	var contact Contact
	err := tx.Unscoped().First(&contact, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return &contact, nil
}

func (s *ContactService) Update(ctx context.Context, id uint, req dto.ContactUpdateRequest, ip string) (*Contact, error) {
	changes := map[string]interface{}{}
	if req.IsRead != nil {
		changes["is_read"] = *req.IsRead
	}
	if req.AdminNotes != nil {
		changes["admin_notes"] = optional(strings.TrimSpace(*req.AdminNotes))
	}
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	var updated *Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Model(&Contact{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update contact: %w", err)
		}
		if err := s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionUpdate,
			EntityType: entityContact,
			EntityID:   id,
			Details:    fmt.Sprintf("Updated contact from %s", current.Name),
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
	return updated, nil
}

// Delete hides the contact, or removes it for good when permanent is set.
func (s *ContactService) Delete(ctx context.Context, id uint, permanent bool, ip string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		action := services.ActionSoftDelete
		q := tx
		if permanent {
			action = services.ActionDelete
			q = tx.Unscoped()
		}
		if err := q.Delete(&Contact{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete contact: %w", err)
		}
		return s.audit.RecordTx(tx, services.AuditEntry{
			Action:     action,
			EntityType: entityContact,
			EntityID:   id,
			Details:    fmt.Sprintf("Deleted contact from %s <%s>", current.Name, current.Email),
			IP:         ip,
		})
	})
}

func (s *ContactService) Restore(ctx context.Context, id uint, ip string) (*Contact, error) {
	var restored *Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if !current.DeletedAt.Valid {
			return ErrNotDeleted
		}
		if err := tx.Unscoped().Model(&Contact{}).Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
			return fmt.Errorf("failed to restore contact: %w", err)
		}
		if err := s.audit.RecordTx(tx, services.AuditEntry{
			Action:     services.ActionRestore,
			EntityType: entityContact,
			EntityID:   id,
			Details:    fmt.Sprintf("Restored contact from %s", current.Name),
			IP:         ip,
		}); err != nil {
			return err
		}
		restored, err = s.load(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// Recipients returns each distinct address of the non-deleted contacts, in
// first-contact order.
func (s *ContactService) Recipients(ctx context.Context) ([]string, error) {
	var emails []string
	err := s.db.WithContext(ctx).Model(&Contact{}).Order("id ASC").Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load contact emails: %w", err)
	}
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(e))
	}
	return out, nil
}
