package blog

import "time"

type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Slug          string     `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	Excerpt       *string    `gorm:"size:500" json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	CoverImageURL *string    `gorm:"size:500" json:"cover_image_url"`
	Category      *string    `gorm:"size:100;index" json:"category"`
	Author        *string    `gorm:"size:100" json:"author"`
	IsPublished   bool       `gorm:"not null;index" json:"is_published"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Post) TableName() string {
	return "blog_posts"
}

type ListFilter struct {
	// Status is "published", "draft" or empty for both.
	Status   string
	Category string
}
