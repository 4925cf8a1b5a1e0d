package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"linear-gamification/metrics"
	"linear-gamification/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnknownAssignee is credited when a completion arrives without an assignee.
const UnknownAssignee = "Unknown"

// CompletionStatus is the outcome of one ProcessCompletion call.
type CompletionStatus string

const (
	StatusProcessed CompletionStatus = "processed"
	StatusDuplicate CompletionStatus = "duplicate"
)

// errAlreadyProcessed rolls the transaction back when the task insert hits the primary key.
var errAlreadyProcessed = errors.New("task already processed")

// CompletionResult reports what a completion changed.
type CompletionResult struct {
	Status          CompletionStatus     `json:"status"`
	TaskID          string               `json:"task_id"`
	Assignee        string               `json:"assignee,omitempty"`
	XPAwarded       int64                `json:"xp_awarded"`
	CTOSpecial      bool                 `json:"cto_special"`
	Progress        LevelProgress        `json:"progress"`
	LeveledUp       bool                 `json:"leveled_up"`
	Streaks         Streaks              `json:"streaks"`
	Unlocked        []models.Achievement `json:"unlocked,omitempty"`
	CompletionCount int64                `json:"completion_count"`
}

// CompletionService turns completion events into XP, levels, streaks and achievements.
type CompletionService struct {
	DB           *gorm.DB
	Achievements *AchievementService
	Leaderboard  *LeaderboardService
	Notifier     Notifier
	Metrics      *metrics.Manager
	Workweek     Workweek

	// SummaryEvery sends the leaderboard summary every N credited completions.
	SummaryEvery int64
	SummarySize  int
	// NotifyTimeout bounds each notification delivery.
	NotifyTimeout time.Duration

	Now func() time.Time
}

func NewCompletionService(db *gorm.DB, notifier Notifier, workweek Workweek) *CompletionService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &CompletionService{
		DB:            db,
		Achievements:  NewAchievementService(db),
		Leaderboard:   NewLeaderboardService(db),
		Notifier:      notifier,
		Workweek:      workweek,
		SummaryEvery:  10,
		SummarySize:   3,
		NotifyTimeout: 5 * time.Second,
		Now:           time.Now,
	}
}

// AlreadyProcessed reports whether taskID has a ProcessedTask row. It is a fast path only;
// the primary key on processed_tasks is what actually rejects concurrent duplicates.
func (s *CompletionService) AlreadyProcessed(ctx context.Context, taskID string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.ProcessedTask{}).
		Where("id = ?", taskID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check processed task %s: %w", taskID, err)
	}
	return count > 0, nil
}

// ProcessCompletion credits one completion. All writes share one transaction, so a failure
// leaves the task unprocessed and a redelivery can retry it. Notifications go out after commit
// and never fail the call.
func (s *CompletionService) ProcessCompletion(ctx context.Context, ev models.CompletionEvent) (*CompletionResult, error) {
	if ev.TaskID == "" {
		return nil, ErrMissingTaskID
	}
	started := time.Now()
	defer func() { s.Metrics.ObserveProcessing(time.Since(started).Seconds()) }()

	already, err := s.AlreadyProcessed(ctx, ev.TaskID)
	if err != nil {
		return nil, err
	}
	if already {
		return &CompletionResult{Status: StatusDuplicate, TaskID: ev.TaskID}, nil
	}

	now := s.Now().UTC()
	assignee := ev.AssigneeName
	if assignee == "" {
		assignee = UnknownAssignee
	}
	reward, ctoSpecial := CalculateXPReward(ev.Estimate, ev.Priority, ev.Title)
	if reward < 0 {
		// Negative estimates are taken verbatim but XP never goes down.
		reward = 0
	}

	result := &CompletionResult{
		Status:     StatusProcessed,
		TaskID:     ev.TaskID,
		Assignee:   assignee,
		XPAwarded:  reward,
		CTOSpecial: ctoSpecial,
	}
	var outbox []string

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ProcessedTask{
			ID:          ev.TaskID,
			Title:       ev.Title,
			Assignee:    assignee,
			CompletedAt: now.Format(models.CompletionDateLayout),
			XPReward:    reward,
		})
		if insert.Error != nil {
			return fmt.Errorf("insert processed task: %w", insert.Error)
		}
		if insert.RowsAffected == 0 {
			return errAlreadyProcessed
		}

		levels, err := LoadLevelTable(tx)
		if err != nil {
			return err
		}
		emp, err := lockEmployee(tx, assignee)
		if err != nil {
			return err
		}
		oldLevel := emp.Level

		emp.XP += reward
		progress := levels.ForXP(emp.XP)
		emp.Level = progress.Level
		result.Progress = progress
		if progress.Level > oldLevel {
			result.LeveledUp = true
			emp.LastLevelUpAt = &now
		}

		streaks, err := s.Workweek.ComputeStreaks(tx, assignee, now)
		if err != nil {
			return err
		}
		emp.CurrentStreak = streaks.Current
		emp.MaxStreak = streaks.Max
		result.Streaks = streaks

		if err := tx.Save(emp).Error; err != nil {
			return fmt.Errorf("update employee %s: %w", assignee, err)
		}

		var tasksCompleted int64
		if err := tx.Model(&models.ProcessedTask{}).
			Where("assignee = ?", assignee).
			Count(&tasksCompleted).Error; err != nil {
			return fmt.Errorf("count tasks for %s: %w", assignee, err)
		}

		unlocked, err := s.Achievements.AwardAchievements(tx, assignee, AchievementState{
			TasksCompleted: tasksCompleted,
			Level:          emp.Level,
			CurrentStreak:  streaks.Current,
			CTOSpecial:     ctoSpecial,
		})
		if err != nil {
			return err
		}
		result.Unlocked = unlocked
		for _, ach := range unlocked {
			outbox = append(outbox, AchievementMessage(assignee, ach))
		}

		count, err := incrementCompletions(tx)
		if err != nil {
			return err
		}
		result.CompletionCount = count
		return nil
	})
	if errors.Is(err, errAlreadyProcessed) {
		return &CompletionResult{Status: StatusDuplicate, TaskID: ev.TaskID}, nil
	}
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordXP(reward)
	for _, ach := range result.Unlocked {
		s.Metrics.RecordUnlock(ach.ID)
	}
	log.Printf("🎮 XP Awarded: %s → XP=%d, Lvl=%d, Streak=%d/%d (task: %s)",
		assignee, result.Progress.XP, result.Progress.Level, result.Streaks.Current, result.Streaks.Max, ev.TaskID)

	outbox = append(outbox, CompletionMessage(assignee, ev.Title, reward, result.Progress, result.LeveledUp))
	if s.SummaryEvery > 0 && result.CompletionCount%s.SummaryEvery == 0 {
		top, err := s.Leaderboard.TopByXP(ctx, s.SummarySize)
		if err != nil {
			log.Printf("❌ [NOTIFY] Failed to load leaderboard summary: %v", err)
		} else {
			outbox = append(outbox, LeaderboardSummaryMessage(top, s.SummarySize))
		}
	}
	s.deliver(ctx, outbox)

	return result, nil
}

// lockEmployee makes sure the assignee row exists, then loads it for update. Creating the
// row first gives concurrent first completions a row to lock, so neither overwrites the other.
func lockEmployee(tx *gorm.DB, assignee string) (*models.Employee, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Employee{
		ID:    assignee,
		Name:  assignee,
		Level: 1,
	}).Error; err != nil {
		return nil, fmt.Errorf("create employee %s: %w", assignee, err)
	}

	var emp models.Employee
	res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", assignee).
		Limit(1).
		Find(&emp)
	if res.Error != nil {
		return nil, fmt.Errorf("load employee %s: %w", assignee, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("load employee %s: row missing after insert", assignee)
	}
	return &emp, nil
}

func incrementCompletions(tx *gorm.DB) (int64, error) {
	res := tx.Model(&models.CompletionCounter{}).
		Where("id = ?", models.GlobalCounterID).
		UpdateColumn("count", gorm.Expr("count + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("increment completions: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := tx.Create(&models.CompletionCounter{ID: models.GlobalCounterID, Count: 1}).Error; err != nil {
			return 0, fmt.Errorf("create completions counter: %w", err)
		}
		return 1, nil
	}
	var counter models.CompletionCounter
	if err := tx.First(&counter, "id = ?", models.GlobalCounterID).Error; err != nil {
		return 0, fmt.Errorf("read completions: %w", err)
	}
	return counter.Count, nil
}

// deliver sends messages in order; failures are logged and counted only.
func (s *CompletionService) deliver(ctx context.Context, messages []string) {
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	for _, text := range messages {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		err := s.Notifier.Notify(nctx, text)
		cancel()
		s.Metrics.RecordNotification(err)
		if err != nil {
			log.Printf("❌ [NOTIFY] Delivery failed: %v", err)
		}
	}
}
