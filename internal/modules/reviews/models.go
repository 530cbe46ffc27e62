package reviews

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Review is a published testimonial, created by an admin or promoted from
// an approved submission.
type Review struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	ReviewerName  string        `gorm:"size:100;not null" json:"reviewer_name"`
	StarRating    int           `gorm:"not null" json:"star_rating"`
	ReviewText    *string       `gorm:"type:text" json:"review_text"`
	ScreenshotURL *string       `gorm:"size:500" json:"screenshot_url"`
	Tag           *string       `gorm:"size:100;index" json:"tag"`
	IsFeatured    bool          `gorm:"not null" json:"is_featured"`
	IsPublished   bool          `gorm:"not null;index" json:"is_published"`
	DisplayOrder  int           `gorm:"not null" json:"display_order"`
	Images        []ReviewImage `gorm:"foreignKey:ReviewID" json:"images"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ReviewImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReviewID     uint      `gorm:"not null;index" json:"review_id"`
	ImageURL     string    `gorm:"size:500;not null" json:"image_url"`
	DisplayOrder int       `gorm:"not null" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewSubmission is a visitor-provided review awaiting moderation.
type ReviewSubmission struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	ReviewerName    string            `gorm:"size:100;not null" json:"reviewer_name"`
	ReviewerEmail   string            `gorm:"size:254;not null" json:"reviewer_email"`
	StarRating      int               `gorm:"not null" json:"star_rating"`
	ServiceCategory string            `gorm:"size:100;not null" json:"service_category"`
	ReviewText      *string           `gorm:"type:text" json:"review_text"`
	Status          string            `gorm:"size:20;not null;index" json:"status"`
	AdminNotes      *string           `gorm:"type:text" json:"admin_notes"`
	ReviewedAt      *time.Time        `json:"reviewed_at"`
	ReviewID        *uint             `json:"review_id"`
	Images          []SubmissionImage `gorm:"foreignKey:SubmissionID" json:"images"`
	CreatedAt       time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type SubmissionImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	ImageURL     string    `gorm:"size:500;not null" json:"image_url"`
	DisplayOrder int       `gorm:"not null" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SubmissionImage) TableName() string {
	return "review_submission_images"
}

// SubmissionInput is the public review form.
type SubmissionInput struct {
	ReviewerName    string `form:"reviewer_name" validate:"required,max=100"`
	ReviewerEmail   string `form:"reviewer_email" validate:"required,email,max=254"`
	StarRating      int    `form:"star_rating" validate:"required,min=1,max=5"`
	ServiceCategory string `form:"service_category" validate:"required,max=100"`
	ReviewText      string `form:"review_text" validate:"max=2000"`
	CaptchaToken    string `form:"captcha_token"`
}

// ActionResult is returned by a moderation action.
type ActionResult struct {
	Submission *ReviewSubmission `json:"submission"`
	Review     *Review           `json:"review,omitempty"`
}
