package model

import "time"

type Testimonial struct {
	Base
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	Quote      string `gorm:"type:text;not null" json:"quote"`
	University string `gorm:"type:varchar(255)" json:"university"`
	Country    string `gorm:"type:varchar(100)" json:"country"`
	ImageURL   string `gorm:"type:text" json:"image_url"`
	Rating     *int   `json:"rating"`
	IsActive   bool   `gorm:"not null;index" json:"is_active"`
}

type FAQ struct {
	Base
	Question     string `gorm:"type:text;not null" json:"question"`
	Answer       string `gorm:"type:text;not null" json:"answer"`
	Category     string `gorm:"type:varchar(100)" json:"category"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
	IsActive     bool   `gorm:"not null;index" json:"is_active"`
}

// Article is a blog post. Content is markdown; ContentHTML is its sanitized
// rendering.
type Article struct {
	Base
	Slug          string     `gorm:"type:varchar(160);uniqueIndex;not null" json:"slug"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	ContentHTML   string     `gorm:"column:content_html;type:text" json:"content_html"`
	Excerpt       string     `gorm:"type:text" json:"excerpt"`
	CoverImageURL string     `gorm:"type:text" json:"cover_image_url"`
	Author        string     `gorm:"type:varchar(255)" json:"author"`
	IsActive      bool       `gorm:"not null;index" json:"is_active"`
	PublishedAt   *time.Time `json:"published_at"`
}
