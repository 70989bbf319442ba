package repositories

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"donasi/internal/config"
)

// OpenDB connects to postgres, applies the pool settings and migrates the
// outbox table.
func OpenDB(cfg config.DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	gormLog := log.With().Str("component", "gorm").Logger()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.New(
			&gormLog,
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(&PendingHistory{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate outbox: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("outbox database connected")
	return db, nil
}

// OpenOutbox builds the journal selected by cfg. The returned close func is
// never nil.
func OpenOutbox(cfg config.OutboxConfig, log zerolog.Logger) (HistoryOutbox, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryOutbox(), noop, nil
	case "file":
		return NewFileOutbox(cfg.File), noop, nil
	case "postgres":
		db, err := OpenDB(cfg.DB, log)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, err
		}
		return NewGormOutbox(db), sqlDB.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown outbox backend %q", cfg.Backend)
	}
}
