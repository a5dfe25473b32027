package cron

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager runs the housekeeping jobs and records every run in
// cron_job_logs.
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	blacklist *auth.BlacklistService
	storage   storage.Provider
	now       func() time.Time
}

// NewCronManager creates a manager. provider may be nil, in which case the
// orphaned marksheet sweep is skipped.
func NewCronManager(db *gorm.DB, provider storage.Provider) *CronManager {
	return &CronManager{
		cron:      cron.New(cron.WithSeconds()),
		db:        db,
		blacklist: auth.NewBlacklistService(db),
		storage:   provider,
		now:       time.Now,
	}
}

// Start registers all jobs and starts the scheduler.
func (m *CronManager) Start() error {
	log.Info("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()

	log.Info("Cron jobs started successfully")
	return nil
}

// Stop waits for running jobs to finish.
func (m *CronManager) Stop() {
	log.Info("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("Cron jobs stopped")
}

type job struct {
	name     string
	schedule string
	run      func() (string, error)
}

func (m *CronManager) jobs() []job {
	return []job{
		// hourly
		{name: "cleanup_token_blacklist", schedule: "0 0 * * * *", run: m.CleanupTokenBlacklist},
		// every 6 hours
		{name: "sweep_orphan_marksheets", schedule: "0 15 */6 * * *", run: m.SweepOrphanMarksheets},
		// daily at 02:00
		{name: "cleanup_old_logs", schedule: "0 0 2 * * *", run: m.CleanupOldLogs},
		// daily at 08:00
		{name: "stale_lead_report", schedule: "0 0 8 * * *", run: m.ReportStaleLeads},
	}
}

func (m *CronManager) registerJobs() error {
	for _, j := range m.jobs() {
		j := j
		if _, err := m.cron.AddFunc(j.schedule, func() { m.execute(j) }); err != nil {
			return fmt.Errorf("failed to register %s: %w", j.name, err)
		}
	}
	log.Info("All cron jobs registered successfully")
	return nil
}

// execute runs one job between a start and a completion log entry.
func (m *CronManager) execute(j job) {
	entry := m.logJobStart(j.name)
	message, err := j.run()
	if err != nil {
		m.logJobError(entry, err)
		return
	}
	m.logJobComplete(entry, message)
}

func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	started := m.now().UTC()
	log.Infof("[CRON] Starting job: %s at %s", jobName, started.Format(time.RFC3339))

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronJobRunning,
		StartedAt: started,
	}
	if err := m.db.Create(entry).Error; err != nil {
		log.Warnf("[CRON] Failed to record start of %s: %v", jobName, err)
	}
	return entry
}

func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string) {
	log.Infof("[CRON] Completed job: %s - %s", entry.JobName, message)
	m.finish(entry, map[string]interface{}{
		"status":  model.CronJobCompleted,
		"message": message,
	})
}

func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	log.Errorf("[CRON] Error in job: %s - %v", entry.JobName, err)
	m.finish(entry, map[string]interface{}{
		"status":    model.CronJobFailed,
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == "" {
		return
	}
	completed := m.now().UTC()
	updates["completed_at"] = completed
	updates["duration_ms"] = completed.Sub(entry.StartedAt).Milliseconds()
	if err := m.db.Model(entry).Updates(updates).Error; err != nil {
		log.Warnf("[CRON] Failed to record end of %s: %v", entry.JobName, err)
	}
}
