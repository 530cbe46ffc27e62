package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/models"
	"gorm.io/gorm"
)

const SystemLogRetention = 30 * 24 * time.Hour

// PurgeSystemLogs deletes system_logs older than the retention window.
func PurgeSystemLogs(db *gorm.DB, retention time.Duration, now time.Time) (int64, error) {
	result := db.Where("timestamp < ?", now.Add(-retention)).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup runs a daily goroutine that purges expired system_logs.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeSystemLogs(db, SystemLogRetention, time.Now())
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
