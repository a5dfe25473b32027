package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mathwaksu-byte/MathwaV2/database/dbtest"
	"github.com/mathwaksu-byte/MathwaV2/model"
)

func TestDashboardStatsMatchFixture(t *testing.T) {
	db := dbtest.New(t)
	now := time.Now().UTC()

	statuses := []model.ApplicationStatus{
		model.ApplicationPending, model.ApplicationPending, model.ApplicationPending,
		model.ApplicationApproved, model.ApplicationApproved,
		model.ApplicationReviewing, model.ApplicationReviewing, model.ApplicationReviewing,
		model.ApplicationRejected, model.ApplicationRejected,
	}
	for i, st := range statuses {
		created := now.Add(-30 * 24 * time.Hour)
		if i < 2 {
			created = now.Add(-time.Duration(i+1) * 24 * time.Hour)
		}
		app := model.Application{
			Base:   model.Base{CreatedAt: created},
			Email:  fmt.Sprintf("s%d@example.com", i),
			Phone:  "9999999999",
			City:   "Delhi",
			Status: st,
		}
		if err := db.Create(&app).Error; err != nil {
			t.Fatalf("create application: %v", err)
		}
	}

	for i := 0; i < 6; i++ {
		u := model.University{Slug: fmt.Sprintf("u-%d", i), Name: "U", IsActive: i < 4}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("create university: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}

	stats, err := NewDashboardService(sqlDB).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	want := DashboardStats{TotalApplications: 10, PendingApplications: 3, ApprovedApplications: 2, TotalUniversities: 4, RecentApplications: 2}
	if stats != want {
		t.Fatalf("Stats = %+v, want %+v", stats, want)
	}
}
