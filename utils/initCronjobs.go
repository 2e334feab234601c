package utils

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"solarena/models"
)

// CronCleaner sweeps the session table: waiting sessions nobody joined
// get cancelled, and finished rows old enough to be useless get
// purged. Both jobs compete safely with live traffic because they key
// on status.
func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// Cancel waiting sessions idle for over 24 hours.
	c.AddFunc("@hourly", func() {
		result := db.Model(&models.GameSession{}).
			Where("status = ? AND updated_at <= ?", models.StatusWaiting, time.Now().Add(-24*time.Hour)).
			Update("status", models.StatusCancelled)
		if result.Error != nil {
			logger.Error("stale session sweep failed", zap.Error(result.Error))
			return
		}
		if result.RowsAffected > 0 {
			logger.Info("stale waiting sessions cancelled", zap.Int64("count", result.RowsAffected))
		}
	})

	// Purge cancelled and completed sessions older than 48 hours,
	// move logs first.
	c.AddFunc("0 3 * * *", func() {
		cutoff := time.Now().Add(-48 * time.Hour)
		staleIDs := []uint{}
		db.Model(&models.GameSession{}).
			Where("status IN ? AND updated_at <= ?", []string{models.StatusCancelled, models.StatusCompleted}, cutoff).
			Pluck("id", &staleIDs)
		if len(staleIDs) == 0 {
			return
		}

		if err := db.Where("game_session_id IN ?", staleIDs).Delete(&models.MoveRecord{}).Error; err != nil {
			logger.Error("move log purge failed", zap.Error(err))
			return
		}
		result := db.Where("id IN ?", staleIDs).Delete(&models.GameSession{})
		if result.Error != nil {
			logger.Error("session purge failed", zap.Error(result.Error))
		} else {
			logger.Info("old sessions purged", zap.Int64("count", result.RowsAffected))
		}
	})

	c.Start()
}
