package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Config struct {
	Driver       string // "postgres" or "sqlite"
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
	SlowQuery    time.Duration
	LockTimeout  time.Duration // per aggregate transaction, postgres only
}

// ConfigFromEnv reads DB_DRIVER / DATABASE_URL, falling back to the
// POSTGRES_* parts when no URL is set.
func ConfigFromEnv(logg *logger.Logger) Config {
	cfg := Config{
		Driver:       envutil.Logged(logg, "DB_DRIVER", "postgres"),
		DSN:          envutil.String("DATABASE_URL", ""),
		MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns: envutil.Int("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLife:  envutil.Duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		SlowQuery:    envutil.Duration("DB_SLOW_QUERY", time.Second),
		LockTimeout:  envutil.Duration("DB_LOCK_TIMEOUT", 5*time.Second),
	}
	if cfg.DSN == "" && cfg.Driver == "postgres" {
		cfg.DSN = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			envutil.Logged(logg, "POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			envutil.Logged(logg, "POSTGRES_HOST", "localhost"),
			envutil.Logged(logg, "POSTGRES_PORT", "5432"),
			envutil.Logged(logg, "POSTGRES_NAME", "roadmap"),
			envutil.String("POSTGRES_SSLMODE", "disable"),
		)
	}
	if cfg.DSN == "" && cfg.Driver == "sqlite" {
		cfg.DSN = "file:roadmap.db?_foreign_keys=on"
	}
	return cfg
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(logg *logger.Logger, cfg Config) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	db, err := gorm.Open(postgres.Open(cfg.DSN), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := tunePool(db, cfg); err != nil {
		return nil, err
	}
	serviceLog.Info("Connected to Postgres", "max_open_conns", cfg.MaxOpenConns)
	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open dispatches on cfg.Driver.
func Open(logg *logger.Logger, cfg Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case "", "postgres":
		svc, err := NewPostgresService(logg, cfg)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	case "sqlite":
		return OpenSQLite(logg, cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func gormConfig(cfg Config) *gorm.Config {
	slow := cfg.SlowQuery
	if slow <= 0 {
		slow = time.Second
	}
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             slow,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

func tunePool(db *gorm.DB, cfg Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLife)
	}
	return nil
}
