package workphotos

import "time"

// Photo is one image in the public portfolio.
type Photo struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description"`
	Category     *string    `gorm:"size:100;index" json:"category"`
	ImageURL     string     `gorm:"size:500;not null" json:"image_url"`
	DisplayOrder int        `gorm:"not null" json:"display_order"`
	IsFeatured   bool       `gorm:"not null" json:"is_featured"`
	TakenAt      *time.Time `json:"taken_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Photo) TableName() string {
	return "work_photos"
}
