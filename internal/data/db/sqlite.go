package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// OpenSQLite opens a single-connection SQLite database. One connection
// serializes write transactions, which stands in for Postgres row locks
// in local runs and tests.
func OpenSQLite(logg *logger.Logger, cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if logg != nil {
		logg.With("service", "SQLiteService").Info("Opened sqlite database")
	}
	return db, nil
}
