package contacts

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"gorm.io/gorm"
)

type Contact struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	Email      string         `gorm:"size:254;not null;index" json:"email"`
	Phone      *string        `gorm:"size:30" json:"phone"`
	Service    *string        `gorm:"size:100" json:"service"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	IsRead     bool           `gorm:"not null;index" json:"is_read"`
	AdminNotes *string        `gorm:"type:text" json:"admin_notes"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ContactInput is the public contact form.
type ContactInput struct {
	Name         string `json:"name" form:"name" validate:"required,max=100"`
	Email        string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone        string `json:"phone" form:"phone" validate:"max=30"`
	Service      string `json:"service" form:"service" validate:"max=100"`
	Message      string `json:"message" form:"message" validate:"required,max=5000"`
	CaptchaToken string `json:"captcha_token" form:"captcha_token"`
}

const (
	StatusUnread  = "unread"
	StatusRead    = "read"
	StatusDeleted = "deleted"
	StatusAll     = "all"
)

type ListResponse struct {
	Contacts   []Contact      `json:"contacts"`
	Unread     int64          `json:"unread"`
	Pagination dto.Pagination `json:"pagination"`
}
