package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mathwaksu-byte/MathwaV2/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrFeeNotFound = errors.New("fee year not found")

// FeeInput is one row of a submitted fee schedule.
type FeeInput struct {
	Year     int     `json:"year"`
	Tuition  float64 `json:"tuition"`
	Hostel   float64 `json:"hostel"`
	Misc     float64 `json:"misc"`
	Currency string  `json:"currency"`
}

// FeeValidationError lists every offending row, keyed like "fees[2].year".
type FeeValidationError struct {
	Fields map[string]string
}

func (e *FeeValidationError) Error() string {
	return fmt.Sprintf("invalid fee schedule (%d problems)", len(e.Fields))
}

// ValidateFees checks years are positive and unique and amounts are not
// negative. An empty schedule is only valid as a replacement, where it
// clears every year.
func ValidateFees(fees []FeeInput, replace bool) error {
	fields := make(map[string]string)
	if fees == nil || (len(fees) == 0 && !replace) {
		fields["fees"] = "fees must contain at least one year"
	}

	seen := make(map[int]int, len(fees))
	for i, f := range fees {
		key := fmt.Sprintf("fees[%d]", i)
		if f.Year <= 0 {
			fields[key+".year"] = "year must be a positive integer"
		} else if first, dup := seen[f.Year]; dup {
			fields[key+".year"] = fmt.Sprintf("year %d duplicates fees[%d]", f.Year, first)
		} else {
			seen[f.Year] = i
		}
		if f.Tuition < 0 {
			fields[key+".tuition"] = "tuition must not be negative"
		}
		if f.Hostel < 0 {
			fields[key+".hostel"] = "hostel must not be negative"
		}
		if f.Misc < 0 {
			fields[key+".misc"] = "misc must not be negative"
		}
		if c := strings.TrimSpace(f.Currency); c != "" && len(c) != 3 {
			fields[key+".currency"] = "currency must be a 3 letter code"
		}
	}

	if len(fields) > 0 {
		return &FeeValidationError{Fields: fields}
	}
	return nil
}

// FeeService maintains university fee schedules.
type FeeService struct {
	db *gorm.DB
}

func NewFeeService(db *gorm.DB) *FeeService {
	return &FeeService{db: db}
}

// List returns a university's fees ordered by year.
func (s *FeeService) List(ctx context.Context, universityID string) ([]model.Fee, error) {
	fees := []model.Fee{}
	err := s.db.WithContext(ctx).
		Where("university_id = ?", universityID).
		Order("year ASC").
		Find(&fees).Error
	return fees, err
}

// Upsert writes the schedule in a single transaction. With replace set, rows
// for years not in fees are removed first, so the result is exactly the
// submitted set.
func (s *FeeService) Upsert(ctx context.Context, universityID string, fees []FeeInput, replace bool) ([]model.Fee, error) {
	if err := ValidateFees(fees, replace); err != nil {
		return nil, err
	}

	rows := make([]model.Fee, 0, len(fees))
	now := time.Now().UTC()
	for _, f := range fees {
		currency := strings.ToUpper(strings.TrimSpace(f.Currency))
		if currency == "" {
			currency = "INR"
		}
		rows = append(rows, model.Fee{
			Base:         model.Base{CreatedAt: now, UpdatedAt: now},
			UniversityID: universityID,
			Year:         f.Year,
			Tuition:      f.Tuition,
			Hostel:       f.Hostel,
			Misc:         f.Misc,
			Currency:     currency,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := tx.Where("university_id = ?", universityID).Delete(&model.Fee{}).Error; err != nil {
				return fmt.Errorf("clearing fees: %w", err)
			}
		}

		if len(rows) == 0 {
			return nil
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "university_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"tuition", "hostel", "misc", "currency", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("upserting fees: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.List(ctx, universityID)
}

// DeleteYear removes a single year. It returns ErrFeeNotFound when the year
// has no row.
func (s *FeeService) DeleteYear(ctx context.Context, universityID string, year int) error {
	res := s.db.WithContext(ctx).
		Where("university_id = ? AND year = ?", universityID, year).
		Delete(&model.Fee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFeeNotFound
	}
	return nil
}

// DeleteAll clears the schedule and reports how many rows went.
func (s *FeeService) DeleteAll(ctx context.Context, universityID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("university_id = ?", universityID).Delete(&model.Fee{})
	return res.RowsAffected, res.Error
}
