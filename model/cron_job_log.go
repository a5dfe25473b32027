package model

import "time"

// CronJobStatus is the outcome of one scheduled run.
type CronJobStatus string

const (
	CronJobRunning   CronJobStatus = "running"
	CronJobCompleted CronJobStatus = "completed"
	CronJobFailed    CronJobStatus = "failed"
)

// CronJobLog records one execution of a housekeeping job.
type CronJobLog struct {
	Base
	JobName     string        `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status      CronJobStatus `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt   time.Time     `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
	DurationMS  int64         `gorm:"column:duration_ms" json:"duration_ms"`
	Message     string        `gorm:"type:text" json:"message"`
	ErrorMsg    string        `gorm:"type:text" json:"error_msg"`
}

func (CronJobLog) TableName() string {
	return "cron_job_logs"
}
