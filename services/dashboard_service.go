package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mathwaksu-byte/MathwaV2/model"
)

// RecentWindow is how far back "recent" applications reach.
const RecentWindow = 7 * 24 * time.Hour

// DashboardStats are the headline counts of the back office.
type DashboardStats struct {
	TotalApplications    int64 `json:"total_applications"`
	PendingApplications  int64 `json:"pending_applications"`
	ApprovedApplications int64 `json:"approved_applications"`
	TotalUniversities    int64 `json:"total_universities"`
	RecentApplications   int64 `json:"recent_applications"`
}

// DashboardService runs the aggregate queries on the direct SQL client.
// Nothing is cached.
type DashboardService struct {
	db  *sql.DB
	now func() time.Time
}

func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// Stats computes each count with its own query.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	since := s.now().UTC().Add(-RecentWindow)

	queries := []struct {
		name string
		dest *int64
		sql  string
		args []interface{}
	}{
		{"total applications", &stats.TotalApplications, `SELECT COUNT(*) FROM applications`, nil},
		{"pending applications", &stats.PendingApplications, `SELECT COUNT(*) FROM applications WHERE status = $1`, []interface{}{string(model.ApplicationPending)}},
		{"approved applications", &stats.ApprovedApplications, `SELECT COUNT(*) FROM applications WHERE status = $1`, []interface{}{string(model.ApplicationApproved)}},
		{"active universities", &stats.TotalUniversities, `SELECT COUNT(*) FROM universities WHERE is_active = $1`, []interface{}{true}},
		{"recent applications", &stats.RecentApplications, `SELECT COUNT(*) FROM applications WHERE created_at >= $1`, []interface{}{since}},
	}

	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql, q.args...).Scan(q.dest); err != nil {
			return DashboardStats{}, fmt.Errorf("counting %s: %w", q.name, err)
		}
	}
	return stats, nil
}
