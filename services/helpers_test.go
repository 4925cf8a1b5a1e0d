package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"linear-gamification/database"
	"linear-gamification/models"
	"linear-gamification/services"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a migrated and seeded SQLite database in a temp dir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "gamification.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, services.SeedCatalog(db, services.DefaultCatalog()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newPostgresTestDB resets the schema in the database named by TEST_POSTGRES_URL.
// Tests using it skip when the variable is unset.
func newPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	db, err := database.Open(database.DriverPostgres, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(
		&models.UserAchievement{},
		&models.ProcessedTask{},
		&models.Employee{},
		&models.Achievement{},
		&models.Level{},
		&models.CompletionCounter{},
	))
	require.NoError(t, database.Migrate(db))
	require.NoError(t, services.SeedCatalog(db, services.DefaultCatalog()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// recordingNotifier keeps every message and optionally fails delivery.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func (n *recordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = nil
}

var errSlackDown = errors.New("slack is down")

// fixedClock returns a Now func pinned to t, adjustable through the returned pointer.
func fixedClock(t time.Time) (*time.Time, func() time.Time) {
	now := t
	return &now, func() time.Time { return now }
}
