package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/db"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// OpenDB connects with cfg and, when migrate is set, applies the schema.
func OpenDB(log *logger.Logger, cfg db.Config, migrate bool) (*gorm.DB, error) {
	theDB, err := db.Open(log, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if migrate {
		log.Info("Migrating schema...", "driver", cfg.Driver)
		if err := db.AutoMigrateAll(theDB); err != nil {
			closeDB(theDB)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return theDB, nil
}

func closeDB(theDB *gorm.DB) {
	if theDB == nil {
		return
	}
	if sqlDB, err := theDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
