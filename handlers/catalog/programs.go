package catalog

import (
	"context"
	"errors"

	"github.com/mathwaksu-byte/MathwaV2/handlers/resource"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"gorm.io/gorm"
)

type CreateProgramRequest struct {
	UniversityID string   `json:"university_id" validate:"required"`
	Name         string   `json:"name" validate:"required,max=255"`
	Duration     string   `json:"duration" validate:"max=100"`
	Fee          *float64 `json:"fee" validate:"omitempty,gte=0"`
	Description  string   `json:"description"`
	Eligibility  string   `json:"eligibility"`
	IsActive     *bool    `json:"is_active"`
}

func (r CreateProgramRequest) Apply(p *model.Program) {
	p.UniversityID = r.UniversityID
	p.Name = r.Name
	p.Duration = r.Duration
	p.Fee = r.Fee
	p.Description = r.Description
	p.Eligibility = r.Eligibility
	p.IsActive = r.IsActive == nil || *r.IsActive
}

type UpdateProgramRequest struct {
	UniversityID *string  `json:"university_id" validate:"omitnil,min=1"`
	Name         *string  `json:"name" validate:"omitnil,min=1,max=255"`
	Duration     *string  `json:"duration" validate:"omitempty,max=100"`
	Fee          *float64 `json:"fee" validate:"omitempty,gte=0"`
	Description  *string  `json:"description"`
	Eligibility  *string  `json:"eligibility"`
	IsActive     *bool    `json:"is_active"`
}

func (r UpdateProgramRequest) Apply(p *model.Program) {
	setString(&p.UniversityID, r.UniversityID)
	setString(&p.Name, r.Name)
	setString(&p.Duration, r.Duration)
	if r.Fee != nil {
		p.Fee = r.Fee
	}
	setString(&p.Description, r.Description)
	setString(&p.Eligibility, r.Eligibility)
	setBool(&p.IsActive, r.IsActive)
}

// Programs serves /programs. A program must point at an existing
// university.
func Programs(db *gorm.DB) *resource.Handler[model.Program, CreateProgramRequest, UpdateProgramRequest] {
	return resource.New[model.Program, CreateProgramRequest, UpdateProgramRequest](db, resource.Config[model.Program]{
		Name:         "Program",
		ActiveColumn: "is_active",
		Filters:      map[string]string{"university_id": "university_id"},
		Search:       []string{"name"},
		Order:        "name ASC",
		Prepare: func(ctx context.Context, db *gorm.DB, p *model.Program) error {
			var u model.University
			err := db.Select("id").Where("id = ?", p.UniversityID).First(&u).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return resource.FieldErrors{"university_id": "university does not exist"}
			}
			return err
		},
	})
}
