package database

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeder fills an empty database with the admin account and starter content.
// Every step is skipped when its table already has rows.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions. Admin credentials come from ADMIN_EMAIL
// and ADMIN_PASSWORD.
func (s *Seeder) SeedAll() error {
	log.Info("Starting database seeding")

	if err := s.SeedAdminUser(os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := s.SeedSiteSettings(); err != nil {
		return fmt.Errorf("failed to seed site settings: %w", err)
	}
	if err := s.SeedUniversities(); err != nil {
		return fmt.Errorf("failed to seed universities: %w", err)
	}
	if err := s.SeedFAQs(); err != nil {
		return fmt.Errorf("failed to seed faqs: %w", err)
	}

	log.Info("Database seeding completed")
	return nil
}

// SeedAdminUser creates the first admin account. It is a no-op when an admin
// already exists or when no credentials are given.
func (s *Seeder) SeedAdminUser(email, password string) error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Admin user already exists, skipping")
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "System Administrator",
		Role:         model.RoleAdmin,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Infof("Created admin user: %s", admin.Email)
	return nil
}

// SeedSiteSettings creates the singleton settings and stats rows.
func (s *Seeder) SeedSiteSettings() error {
	var settings model.SiteSetting
	err := s.db.First(&settings, "key = ?", model.SingletonKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.SiteSetting{
			Key:          model.SingletonKey,
			HeroTitle:    "Study MBBS Abroad with MATHWA",
			HeroSubtitle: "Guidance from application to admission at recognised medical universities.",
		}
		if err := s.db.Create(&settings).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var stats model.SiteStats
	err = s.db.First(&stats, "key = ?", model.SingletonKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&model.SiteStats{Key: model.SingletonKey}).Error
	}
	return err
}

// SeedUniversities creates a sample university with a six year fee schedule.
func (s *Seeder) SeedUniversities() error {
	var count int64
	if err := s.db.Model(&model.University{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Universities already exist, skipping")
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		university := model.University{
			Slug:          "kyrgyz-state-university",
			Name:          "Kyrgyz State Medical University",
			Country:       "Kyrgyzstan",
			City:          "Bishkek",
			Overview:      "One of the oldest medical universities in Central Asia, teaching in English medium.",
			Duration:      "6 years",
			Medium:        "English",
			Accreditation: datatypes.JSONSlice[string]{"NMC", "WHO"},
			IntakeMonths:  datatypes.JSONSlice[string]{"September"},
			Recognition:   datatypes.JSONSlice[string]{"NMC", "WHO", "FAIMER"},
			IsActive:      true,
		}
		if err := tx.Create(&university).Error; err != nil {
			return err
		}

		fees := make([]model.Fee, 0, 6)
		for year := 1; year <= 6; year++ {
			fees = append(fees, model.Fee{
				UniversityID: university.ID,
				Year:         year,
				Tuition:      350000,
				Currency:     "INR",
			})
		}
		if err := tx.Create(&fees).Error; err != nil {
			return err
		}

		log.Infof("Created sample university: %s", university.Slug)
		return nil
	})
}

func (s *Seeder) SeedFAQs() error {
	var count int64
	if err := s.db.Model(&model.FAQ{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	faqs := []model.FAQ{
		{Question: "Is NEET required to study MBBS abroad?", Answer: "Yes. Indian students must qualify NEET to practise in India after graduating abroad.", Category: "eligibility", DisplayOrder: 1, IsActive: true},
		{Question: "What is the medium of instruction?", Answer: "All partner universities teach the MBBS programme in English.", Category: "academics", DisplayOrder: 2, IsActive: true},
		{Question: "Are the degrees recognised by NMC?", Answer: "We only work with universities listed by the NMC and WHO.", Category: "recognition", DisplayOrder: 3, IsActive: true},
	}
	return s.db.Create(&faqs).Error
}

// RunSeeds runs every seed step against db.
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
