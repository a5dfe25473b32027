package cron

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mathwaksu-byte/MathwaV2/database/dbtest"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
)

func newManager(t *testing.T) (*CronManager, *storage.LocalProvider) {
	t.Helper()
	provider, err := storage.NewLocalProvider(t.TempDir(), "http://localhost/files")
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}
	return NewCronManager(dbtest.New(t), provider), provider
}

func putMarksheet(t *testing.T, p *storage.LocalProvider, uploaded time.Time) string {
	t.Helper()
	key := fmt.Sprintf("%s/%d-%08x.pdf", storage.FolderMarksheets, uploaded.UnixMilli(), uploaded.UnixNano()&0xffffffff)
	body := []byte("%PDF-1.4")
	if _, err := p.Upload(context.Background(), storage.BucketDocuments, key, bytes.NewReader(body), int64(len(body)), "application/pdf"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return key
}

func TestSweepOrphanMarksheets(t *testing.T) {
	m, provider := newManager(t)
	now := time.Now().UTC()

	orphan := putMarksheet(t, provider, now.Add(-72*time.Hour))
	referenced := putMarksheet(t, provider, now.Add(-73*time.Hour))
	fresh := putMarksheet(t, provider, now.Add(-time.Hour))

	app := model.Application{Email: "a@example.com", Phone: "1", City: "Pune", Status: model.ApplicationPending, MarksheetPath: referenced}
	if err := m.db.Create(&app).Error; err != nil {
		t.Fatalf("create application: %v", err)
	}

	msg, err := m.SweepOrphanMarksheets()
	if err != nil {
		t.Fatalf("SweepOrphanMarksheets: %v", err)
	}
	if msg != "Checked 3 marksheets, removed 1, failed 0" {
		t.Errorf("message = %q", msg)
	}

	keys, err := provider.List(context.Background(), storage.BucketDocuments, storage.FolderMarksheets+"/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	left := map[string]bool{}
	for _, k := range keys {
		left[k] = true
	}
	if left[orphan] || !left[referenced] || !left[fresh] {
		t.Errorf("remaining keys = %v", keys)
	}
}

func TestReportStaleLeads(t *testing.T) {
	m, _ := newManager(t)
	now := time.Now().UTC()

	for i, age := range []time.Duration{100 * time.Hour, 80 * time.Hour, time.Hour} {
		app := model.Application{
			Base:   model.Base{CreatedAt: now.Add(-age)},
			Email:  fmt.Sprintf("lead%d@example.com", i),
			Phone:  "1",
			City:   "Pune",
			Status: model.ApplicationPending,
		}
		if err := m.db.Create(&app).Error; err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	done := model.Application{Base: model.Base{CreatedAt: now.Add(-200 * time.Hour)}, Email: "x@example.com", Phone: "1", City: "Pune", Status: model.ApplicationApproved}
	if err := m.db.Create(&done).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	msg, err := m.ReportStaleLeads()
	if err != nil {
		t.Fatalf("ReportStaleLeads: %v", err)
	}
	if msg != "2 stale pending applications" {
		t.Errorf("message = %q", msg)
	}
}

func TestCleanupTokenBlacklist(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := m.blacklist.RevokeToken(ctx, "expired", "u1", now.Add(-time.Hour), "logout"); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if err := m.blacklist.RevokeToken(ctx, "live", "u1", now.Add(time.Hour), "logout"); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	msg, err := m.CleanupTokenBlacklist()
	if err != nil {
		t.Fatalf("CleanupTokenBlacklist: %v", err)
	}
	if msg != "Removed 1 expired blacklist entries" {
		t.Errorf("message = %q", msg)
	}
	if revoked, _ := m.blacklist.IsTokenRevoked(ctx, "live"); !revoked {
		t.Error("unexpired entry should survive cleanup")
	}
}

func TestExecuteRecordsRun(t *testing.T) {
	m, _ := newManager(t)

	m.execute(job{name: "ok_job", run: func() (string, error) { return "done", nil }})
	m.execute(job{name: "bad_job", run: func() (string, error) { return "", fmt.Errorf("boom") }})

	var logs []model.CronJobLog
	if err := m.db.Order("job_name").Find(&logs).Error; err != nil {
		t.Fatalf("find logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	if logs[0].JobName != "bad_job" || logs[0].Status != model.CronJobFailed || logs[0].ErrorMsg != "boom" {
		t.Errorf("bad_job log = %+v", logs[0])
	}
	if logs[1].Status != model.CronJobCompleted || logs[1].Message != "done" || logs[1].CompletedAt == nil {
		t.Errorf("ok_job log = %+v", logs[1])
	}
}

func TestJobSchedulesParse(t *testing.T) {
	m, _ := newManager(t)
	if err := m.registerJobs(); err != nil {
		t.Fatalf("registerJobs: %v", err)
	}
	if got := len(m.cron.Entries()); got != len(m.jobs()) {
		t.Errorf("registered %d entries, want %d", got, len(m.jobs()))
	}
}
