package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/nats-backoffice/internal/config"
	"github.com/diewo77/nats-backoffice/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// AutoMigrate creates or updates the tables of every model.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL applies the embedded SQL migrations with golang-migrate.
// Only postgres is supported on this path.
func MigrateSQL(url string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Migrate picks the SQL migrations when MIGRATIONS=1 on postgres and the
// AutoMigrate path otherwise, then checks the core tables exist.
func Migrate(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if cfg.App.Migrations && cfg.Database.Driver != "sqlite" {
		log.Info("running sql migrations")
		if err := MigrateSQL(cfg.Database.MigrateURL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		log.Info("running automigrate")
		if err := AutoMigrate(db); err != nil {
			return err
		}
	}
	for _, table := range []string{"users", "leads", "lead_activities", "lead_notes", "portfolio"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
