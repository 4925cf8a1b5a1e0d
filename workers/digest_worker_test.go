package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"linear-gamification/database"
	"linear-gamification/models"
	"linear-gamification/services"
	"linear-gamification/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.objects[key] = body
	s.types[key] = contentType
	return nil
}

type captureNotifier struct {
	messages []string
	err      error
}

func (n *captureNotifier) Notify(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	return n.err
}

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "digest.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, db.Create(&[]models.Employee{
		{ID: "Alice", Name: "Alice", XP: 700, Level: 2},
		{ID: "Bob", Name: "Bob", XP: 90, Level: 1},
	}).Error)
	require.NoError(t, db.Create(&[]models.ProcessedTask{
		{ID: "T1", Assignee: "Alice", CompletedAt: "2026-09-29", XPReward: 600},
		{ID: "T2", Assignee: "Alice", CompletedAt: "2026-10-03", XPReward: 100},
		{ID: "T3", Assignee: "Bob", CompletedAt: "2026-10-05", XPReward: 90},
	}).Error)
	return db
}

func newWorker(t *testing.T, store workers.SnapshotStore) (*workers.DigestWorker, *captureNotifier) {
	notifier := &captureNotifier{}
	w := workers.NewDigestWorker(services.NewLeaderboardService(seededDB(t)), notifier, store, 5)
	w.Now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return w, notifier
}

func TestDigestWorker_PostsAndArchives(t *testing.T) {
	store := newMemoryStore()
	w, notifier := newWorker(t, store)

	require.NoError(t, w.Run(context.Background()))

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, ":calendar: *Top XP earners for October 2026* :calendar:\n*1. Alice* — 100 XP\n*2. Bob* — 90 XP", notifier.messages[0])

	require.Len(t, store.objects, 1)
	for key, body := range store.objects {
		assert.True(t, strings.HasPrefix(key, "snapshots/2026-10-18-"), key)
		assert.Equal(t, "application/json", store.types[key])

		var snap workers.Snapshot
		require.NoError(t, json.Unmarshal(body, &snap))
		require.Len(t, snap.Leaderboard, 2)
		assert.Equal(t, "Alice", snap.Leaderboard[0].ID)
		assert.Len(t, snap.Monthly, 2)
	}
}

func TestDigestWorker_WithoutStore(t *testing.T) {
	w, notifier := newWorker(t, nil)

	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, notifier.messages, 1)
}

func TestDigestWorker_NotifyFailureStillArchives(t *testing.T) {
	store := newMemoryStore()
	w, notifier := newWorker(t, store)
	notifier.err = errors.New("slack is down")

	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, store.objects, 1)
}

func TestDigestWorker_StoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("bucket missing")
	w, _ := newWorker(t, store)

	assert.Error(t, w.Run(context.Background()))
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	a, b := workers.SnapshotKey(at), workers.SnapshotKey(at)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".json"))
}

func TestStartDigestScheduler_RejectsBadCron(t *testing.T) {
	w, _ := newWorker(t, nil)
	_, err := workers.StartDigestScheduler(context.Background(), "not a cron", w)
	assert.Error(t, err)
}

func TestStartDigestScheduler_StopsWithContext(t *testing.T) {
	w, _ := newWorker(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	sched, err := workers.StartDigestScheduler(ctx, "0 9 1 * *", w)
	require.NoError(t, err)
	require.Len(t, sched.Jobs(), 1)
	cancel()
}
