package db

import (
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/nats-backoffice/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

// Swapped in tests.
var (
	openGorm   = gorm.Open
	retryDelay = 2 * time.Second
)

var (
	kvPasswordRe  = regexp.MustCompile(`(password=)\S+`)
	urlPasswordRe = regexp.MustCompile(`(://[^:/@\s]+:)[^@\s]+@`)
)

// MaskDSN hides the password part of a DSN for logging.
func MaskDSN(dsn string) string {
	dsn = kvPasswordRe.ReplaceAllString(dsn, `${1}***`)
	return urlPasswordRe.ReplaceAllString(dsn, `${1}***@`)
}

// Open connects to the configured store, retrying while the server starts.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, fmt.Errorf("empty DSN for driver %q", cfg.Driver)
	}
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	log.Info("connecting to database", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(dsn)))
	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = openGorm(dialector, gcfg)
		if err == nil {
			err = db.Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		// gorm hands back an open pool even when the first ping fails.
		if db != nil {
			_ = Close(db)
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
