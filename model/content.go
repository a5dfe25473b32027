package model

import "time"

// SingletonKey is the fixed primary key of singleton rows.
const SingletonKey = "default"

// ContentBlock holds a piece of page copy addressed by key.
type ContentBlock struct {
	Base
	Key      string `gorm:"type:varchar(120);uniqueIndex;not null" json:"key"`
	Value    string `gorm:"type:text" json:"value"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

// PriceSetting holds the consultancy's service prices.
type PriceSetting struct {
	Base
	ConsultationFee float64 `gorm:"type:decimal(12,2);default:0" json:"consultation_fee"`
	ApplicationFee  float64 `gorm:"type:decimal(12,2);default:0" json:"application_fee"`
	ServiceFee      float64 `gorm:"type:decimal(12,2);default:0" json:"service_fee"`
	Currency        string  `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	Notes           string  `gorm:"type:text" json:"notes"`
}

// SiteSetting configures the public landing page hero.
type SiteSetting struct {
	Key                   string    `gorm:"type:varchar(50);primaryKey" json:"key"`
	HeroTitle             string    `gorm:"type:text" json:"hero_title"`
	HeroSubtitle          string    `gorm:"type:text" json:"hero_subtitle"`
	HeroVideoMP4URL       string    `gorm:"column:hero_video_mp4_url;type:text" json:"hero_video_mp4_url"`
	HeroVideoWebmURL      string    `gorm:"column:hero_video_webm_url;type:text" json:"hero_video_webm_url"`
	HeroVideoPosterURL    string    `gorm:"type:text" json:"hero_video_poster_url"`
	BackgroundThemeID     string    `gorm:"type:varchar(100)" json:"background_theme_id"`
	BackgroundGradientCSS string    `gorm:"column:background_gradient_css;type:text" json:"background_gradient_css"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// SiteStats are the headline numbers shown on the public site.
type SiteStats struct {
	Key                string    `gorm:"type:varchar(50);primaryKey" json:"key"`
	StudentsSent       int       `gorm:"default:0" json:"students_sent"`
	YearsOfPartnership int       `gorm:"default:0" json:"years_of_partnership"`
	Countries          int       `gorm:"default:0" json:"countries"`
	SuccessRate        float64   `gorm:"type:decimal(5,2);default:0" json:"success_rate"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName keeps the plural table name for the stats singleton.
func (SiteStats) TableName() string {
	return "site_stats"
}
