package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"linear-gamification/models"
	"linear-gamification/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// SnapshotStore persists leaderboard snapshots (R2 in production).
type SnapshotStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Snapshot is the archived JSON document.
type Snapshot struct {
	TakenAt     time.Time            `json:"taken_at"`
	Leaderboard []models.Employee    `json:"leaderboard"`
	Monthly     []services.MonthlyXP `json:"monthly"`
}

// DigestWorker posts the monthly top earners and archives a leaderboard snapshot.
type DigestWorker struct {
	Leaderboard *services.LeaderboardService
	Notifier    services.Notifier
	Store       SnapshotStore // optional
	Size        int
	Now         func() time.Time
}

func NewDigestWorker(leaderboard *services.LeaderboardService, notifier services.Notifier, store SnapshotStore, size int) *DigestWorker {
	return &DigestWorker{
		Leaderboard: leaderboard,
		Notifier:    notifier,
		Store:       store,
		Size:        size,
		Now:         time.Now,
	}
}

// Run performs one digest. The snapshot is still archived when the chat post fails.
func (w *DigestWorker) Run(ctx context.Context) error {
	now := w.Now().UTC()

	monthly, err := w.Leaderboard.TopMonthly(ctx, now, w.Size)
	if err != nil {
		return err
	}
	if err := w.Notifier.Notify(ctx, services.MonthlyDigestMessage(monthly, now)); err != nil {
		log.Printf("❌ [Digest] Failed to post monthly digest: %v", err)
	}

	if w.Store == nil {
		return nil
	}
	top, err := w.Leaderboard.TopByXP(ctx, w.Size)
	if err != nil {
		return err
	}
	body, err := json.Marshal(Snapshot{TakenAt: now, Leaderboard: top, Monthly: monthly})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	key := SnapshotKey(now)
	if err := w.Store.Put(ctx, key, body, "application/json"); err != nil {
		return err
	}
	log.Printf("✅ [Digest] Archived leaderboard snapshot %s", key)
	return nil
}

// SnapshotKey names the object for a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	return fmt.Sprintf("snapshots/%s-%s.json", t.UTC().Format(models.CompletionDateLayout), uuid.NewString())
}

// StartDigestScheduler runs the worker on a cron schedule until ctx is done.
func StartDigestScheduler(ctx context.Context, schedule string, w *DigestWorker) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(func() {
			if err := w.Run(ctx); err != nil {
				log.Printf("[Digest] Run failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule digest %q: %w", schedule, err)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[Digest] Scheduler shutdown: %v", err)
		}
	}()
	return sched, nil
}
