package database_test

import (
	"testing"

	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/database/dbtest"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
)

func TestSeedAdminUser(t *testing.T) {
	db := dbtest.New(t)
	seeder := database.NewSeeder(db)

	if err := seeder.SeedAdminUser("", ""); err != nil {
		t.Fatalf("SeedAdminUser without credentials: %v", err)
	}
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no users without credentials, got %d", count)
	}

	if err := seeder.SeedAdminUser(" Admin@Mathwa.com ", "Admin@123"); err != nil {
		t.Fatalf("SeedAdminUser: %v", err)
	}
	if err := seeder.SeedAdminUser("other@mathwa.com", "Other@123"); err != nil {
		t.Fatalf("SeedAdminUser second run: %v", err)
	}

	var users []model.User
	db.Find(&users)
	if len(users) != 1 {
		t.Fatalf("expected exactly one admin, got %d", len(users))
	}
	if users[0].Email != "admin@mathwa.com" || users[0].Role != model.RoleAdmin {
		t.Errorf("unexpected admin: %+v", users[0])
	}
	if err := auth.VerifyPassword(users[0].PasswordHash, "Admin@123"); err != nil {
		t.Errorf("stored hash does not match: %v", err)
	}
}

func TestSeedUniversitiesIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	seeder := database.NewSeeder(db)

	for i := 0; i < 2; i++ {
		if err := seeder.SeedUniversities(); err != nil {
			t.Fatalf("SeedUniversities run %d: %v", i, err)
		}
	}

	var universities, fees int64
	db.Model(&model.University{}).Count(&universities)
	db.Model(&model.Fee{}).Count(&fees)
	if universities != 1 || fees != 6 {
		t.Fatalf("got %d universities and %d fees, want 1 and 6", universities, fees)
	}
}

func TestSeedSiteSettings(t *testing.T) {
	db := dbtest.New(t)
	seeder := database.NewSeeder(db)

	if err := seeder.SeedSiteSettings(); err != nil {
		t.Fatalf("SeedSiteSettings: %v", err)
	}
	if err := seeder.SeedSiteSettings(); err != nil {
		t.Fatalf("SeedSiteSettings second run: %v", err)
	}

	var settings model.SiteSetting
	if err := db.First(&settings, "key = ?", model.SingletonKey).Error; err != nil {
		t.Fatalf("settings row missing: %v", err)
	}
	var stats model.SiteStats
	if err := db.First(&stats, "key = ?", model.SingletonKey).Error; err != nil {
		t.Fatalf("stats row missing: %v", err)
	}
}
