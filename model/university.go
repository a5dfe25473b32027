package model

import (
	"gorm.io/datatypes"
)

// University is a partner institution shown on the public site.
type University struct {
	Base
	Slug          string                      `gorm:"type:varchar(160);uniqueIndex;not null" json:"slug"`
	Name          string                      `gorm:"type:varchar(255);not null" json:"name"`
	Country       string                      `gorm:"type:varchar(100);index" json:"country"`
	City          string                      `gorm:"type:varchar(100);index" json:"city"`
	Overview      string                      `gorm:"type:text" json:"overview"`
	Description   string                      `gorm:"type:text" json:"description"`
	Ranking       *int                        `json:"ranking"`
	TuitionFee    *float64                    `gorm:"type:decimal(12,2)" json:"tuition_fee"`
	Duration      string                      `gorm:"type:varchar(100)" json:"duration"`
	Medium        string                      `gorm:"type:varchar(100)" json:"medium"`
	ImageURL      string                      `gorm:"type:text" json:"image_url"`
	HeroImageURL  string                      `gorm:"type:text" json:"hero_image_url"`
	HeroImagePath string                      `gorm:"type:text" json:"hero_image_path,omitempty"`
	LogoURL       string                      `gorm:"type:text" json:"logo_url"`
	LogoPath      string                      `gorm:"type:text" json:"logo_path,omitempty"`
	GalleryURLs   datatypes.JSONSlice[string] `gorm:"type:json" json:"gallery_urls"`
	GalleryPaths  datatypes.JSONSlice[string] `gorm:"type:json" json:"gallery_paths,omitempty"`
	Accreditation datatypes.JSONSlice[string] `gorm:"type:json" json:"accreditation"`
	IntakeMonths  datatypes.JSONSlice[string] `gorm:"type:json" json:"intake_months"`
	Recognition   datatypes.JSONSlice[string] `gorm:"type:json" json:"recognition"`
	IsActive      bool                        `gorm:"not null;index" json:"is_active"`

	Fees     []Fee     `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"fees,omitempty"`
	Programs []Program `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"programs,omitempty"`
}

// Fee is one academic year of a university's fee schedule.
type Fee struct {
	Base
	UniversityID string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_fees_university_year" json:"university_id"`
	Year         int     `gorm:"not null;uniqueIndex:idx_fees_university_year" json:"year"`
	Tuition      float64 `gorm:"type:decimal(12,2);not null;default:0" json:"tuition"`
	Hostel       float64 `gorm:"type:decimal(12,2);not null;default:0" json:"hostel"`
	Misc         float64 `gorm:"type:decimal(12,2);not null;default:0" json:"misc"`
	Currency     string  `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
}

// Program is a course of study offered by a university.
type Program struct {
	Base
	UniversityID string   `gorm:"type:varchar(36);not null;index" json:"university_id"`
	Name         string   `gorm:"type:varchar(255);not null" json:"name"`
	Duration     string   `gorm:"type:varchar(100)" json:"duration"`
	Fee          *float64 `gorm:"type:decimal(12,2)" json:"fee"`
	Description  string   `gorm:"type:text" json:"description"`
	Eligibility  string   `gorm:"type:text" json:"eligibility"`
	IsActive     bool     `gorm:"not null;index" json:"is_active"`
}
