package model

// ApplicationStatus is the review state of a lead.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewing, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Application is a lead submitted through the public apply or contact form.
type Application struct {
	Base
	Name                    string            `gorm:"type:varchar(255)" json:"name"`
	Email                   string            `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone                   string            `gorm:"type:varchar(30);not null" json:"phone"`
	City                    string            `gorm:"type:varchar(100);not null" json:"city"`
	NEETQualified           bool              `gorm:"column:neet_qualified;default:false" json:"neet_qualified"`
	PreferredUniversitySlug string            `gorm:"type:varchar(160)" json:"preferred_university_slug"`
	PreferredYear           *int              `json:"preferred_year"`
	MarksheetURL            string            `gorm:"type:text" json:"marksheet_url"`
	MarksheetPath           string            `gorm:"type:text" json:"marksheet_path,omitempty"`
	Status                  ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes                   string            `gorm:"type:text" json:"notes"`
	Source                  string            `gorm:"type:varchar(20);default:'apply'" json:"source"`
}
