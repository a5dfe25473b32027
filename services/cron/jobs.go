package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
)

const (
	// StaleLeadAge is how long a lead may stay pending before it is reported.
	StaleLeadAge = 72 * time.Hour

	// OrphanMarksheetAge is the grace period between a marksheet upload and
	// the application that should reference it.
	OrphanMarksheetAge = 48 * time.Hour

	cronLogRetention  = 30 * 24 * time.Hour
	auditLogRetention = 180 * 24 * time.Hour
)

// CleanupTokenBlacklist drops revoked tokens that have expired anyway.
func (m *CronManager) CleanupTokenBlacklist() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to clean token blacklist: %w", err)
	}
	return fmt.Sprintf("Removed %d expired blacklist entries", n), nil
}

// ReportStaleLeads logs how many applications have waited too long for
// review.
func (m *CronManager) ReportStaleLeads() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := m.now().UTC().Add(-StaleLeadAge)

	var count int64
	err := m.db.WithContext(ctx).Model(&model.Application{}).
		Where("status = ? AND created_at < ?", model.ApplicationPending, cutoff).
		Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("failed to count stale leads: %w", err)
	}

	if count > 0 {
		log.Warnf("[CRON] %d applications pending for more than %s", count, StaleLeadAge)
	}
	return fmt.Sprintf("%d stale pending applications", count), nil
}

// CleanupOldLogs trims job history and the admin audit trail.
func (m *CronManager) CleanupOldLogs() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := m.now().UTC()
	db := m.db.WithContext(ctx)

	jobs := db.Where("started_at < ?", now.Add(-cronLogRetention)).Delete(&model.CronJobLog{})
	if jobs.Error != nil {
		return "", fmt.Errorf("failed to clean cron logs: %w", jobs.Error)
	}
	audits := db.Where("created_at < ?", now.Add(-auditLogRetention)).Delete(&model.AdminAuditLog{})
	if audits.Error != nil {
		return "", fmt.Errorf("failed to clean audit logs: %w", audits.Error)
	}

	return fmt.Sprintf("Removed %d cron logs and %d audit logs", jobs.RowsAffected, audits.RowsAffected), nil
}

// SweepOrphanMarksheets deletes marksheets that no application references
// once the grace period has passed.
func (m *CronManager) SweepOrphanMarksheets() (string, error) {
	if m.storage == nil {
		return "Storage not configured, skipped", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	keys, err := m.storage.List(ctx, storage.BucketDocuments, storage.FolderMarksheets+"/")
	if err != nil {
		return "", fmt.Errorf("failed to list marksheets: %w", err)
	}

	cutoff := m.now().UTC().Add(-OrphanMarksheetAge)
	removed, failed := 0, 0
	for _, key := range keys {
		uploaded, ok := storage.KeyTime(key)
		if !ok || uploaded.After(cutoff) {
			continue
		}

		var refs int64
		err := m.db.WithContext(ctx).Model(&model.Application{}).
			Where("marksheet_path = ? OR marksheet_url = ?", key, m.storage.PublicURL(storage.BucketDocuments, key)).
			Count(&refs).Error
		if err != nil {
			return "", fmt.Errorf("failed to check marksheet references: %w", err)
		}
		if refs > 0 {
			continue
		}

		if err := m.storage.Delete(ctx, storage.BucketDocuments, key); err != nil {
			log.Warnf("[CRON] Failed to delete orphaned marksheet %s: %v", key, err)
			failed++
			continue
		}
		removed++
	}

	return fmt.Sprintf("Checked %d marksheets, removed %d, failed %d", len(keys), removed, failed), nil
}
