package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/nats-backoffice/auth"
	"github.com/diewo77/nats-backoffice/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func operatorCtx() context.Context {
	return auth.WithSession(context.Background(), auth.Session{UserID: "op-1", Email: "op@nats.test", Role: models.RoleStaff})
}

// queryCounter counts statements reaching the store.
func queryCounter(t *testing.T, db *gorm.DB) *int {
	t.Helper()
	n := 0
	count := func(*gorm.DB) { n++ }
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:count_query", count))
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:count_create", count))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:count_update", count))
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:count_delete", count))
	return &n
}

func at(minutes int) time.Time {
	return time.Date(2024, 1, 1, 12, minutes, 0, 0, time.UTC)
}
