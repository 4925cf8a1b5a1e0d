package services

import (
	"fmt"
	"log"

	"linear-gamification/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementState is what the rules see after XP, level and streaks are updated.
type AchievementState struct {
	TasksCompleted int64
	Level          int
	CurrentStreak  int
	CTOSpecial     bool
}

// Rule decides whether an achievement qualifies for the acting assignee.
type Rule interface {
	Qualifies(state AchievementState) bool
}

type tasksRule struct{ target int64 }

func (r tasksRule) Qualifies(s AchievementState) bool { return s.TasksCompleted >= r.target }

type levelRule struct{ target int64 }

func (r levelRule) Qualifies(s AchievementState) bool { return int64(s.Level) >= r.target }

type streakRule struct{ target int64 }

func (r streakRule) Qualifies(s AchievementState) bool { return int64(s.CurrentStreak) >= r.target }

type ctoSpecialRule struct{}

func (ctoSpecialRule) Qualifies(s AchievementState) bool { return s.CTOSpecial }

// unsupportedRule covers configured types with no evaluation logic, such as
// XP-within-timeframe achievements. It never qualifies.
type unsupportedRule struct {
	Type   models.AchievementType
	Reason string
}

func (unsupportedRule) Qualifies(AchievementState) bool { return false }

// RuleFor maps an Achievement to its rule. Timeframe-based types need timeframe_days.
func RuleFor(a models.Achievement) Rule {
	hasTimeframe := a.TimeframeDays != nil && *a.TimeframeDays > 0
	switch a.Type {
	case models.AchievementTypeTasks:
		return tasksRule{target: a.Target}
	case models.AchievementTypeLevel:
		return levelRule{target: a.Target}
	case models.AchievementTypeStreak:
		if !hasTimeframe {
			return unsupportedRule{Type: a.Type, Reason: "streak achievements need timeframe_days"}
		}
		return streakRule{target: a.Target}
	case models.AchievementTypeXP:
		// TODO: evaluate once XP earned within timeframe_days is summed from processed_tasks.
		return unsupportedRule{Type: a.Type, Reason: "xp-within-timeframe achievements are not evaluated yet"}
	case models.AchievementTypeCTOSpecial:
		return ctoSpecialRule{}
	default:
		return unsupportedRule{Type: a.Type, Reason: "unknown achievement type"}
	}
}

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// AwardAchievements checks every configured achievement for one user and records the
// newly qualifying ones. Pass the surrounding transaction as tx; nil uses s.DB.
func (s *AchievementService) AwardAchievements(tx *gorm.DB, userID string, state AchievementState) ([]models.Achievement, error) {
	if tx == nil {
		tx = s.DB
	}

	var all []models.Achievement
	if err := tx.Order("id ASC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	var unlockedIDs []string
	if err := tx.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &unlockedIDs).Error; err != nil {
		return nil, fmt.Errorf("load unlocked achievements for %s: %w", userID, err)
	}
	unlocked := make(map[string]bool, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = true
	}

	var awarded []models.Achievement
	for _, ach := range all {
		if unlocked[ach.ID] {
			continue
		}
		if !RuleFor(ach).Qualifies(state) {
			continue
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: ach.ID,
		})
		if res.Error != nil {
			return nil, fmt.Errorf("unlock %s for %s: %w", ach.ID, userID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue // unlocked concurrently
		}
		awarded = append(awarded, ach)
		log.Printf("🎖️ Achievement unlocked: %s → %s", ach.Name, userID)
	}
	return awarded, nil
}
