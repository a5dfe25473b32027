package model

// GalleryImage is a standalone gallery entry, optionally tied to a university.
type GalleryImage struct {
	Base
	URL           string      `gorm:"type:text;not null" json:"url"`
	StorageBucket string      `gorm:"type:varchar(100)" json:"storage_bucket,omitempty"`
	StoragePath   string      `gorm:"type:text" json:"storage_path,omitempty"`
	Title         string      `gorm:"type:varchar(255)" json:"title"`
	UniversityID  *string     `gorm:"type:varchar(36);index" json:"university_id"`
	DisplayOrder  int         `gorm:"default:0" json:"display_order"`
	IsActive      bool        `gorm:"not null;index" json:"is_active"`
	University    *University `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"university,omitempty"`
}
