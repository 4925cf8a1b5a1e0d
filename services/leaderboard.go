package services

import (
	"context"
	"fmt"
	"time"

	"linear-gamification/models"

	"gorm.io/gorm"
)

// MonthlyXP is one row of the top-monthly-earners projection.
type MonthlyXP struct {
	Name     string `json:"name"`
	XPEarned int64  `json:"xp_earned"`
}

// AchievementWithUsers is an achievement plus the ids of users who unlocked it.
type AchievementWithUsers struct {
	models.Achievement
	Users []string `json:"users"`
}

// LeaderboardService serves read-only projections for the dashboard and the notifier.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// TopByXP returns the top-N employees by lifetime XP.
func (s *LeaderboardService) TopByXP(ctx context.Context, limit int) ([]models.Employee, error) {
	var rows []models.Employee
	err := s.DB.WithContext(ctx).
		Order("xp DESC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// FirstOfMonth returns the YYYY-MM-DD date of the first day of now's UTC month.
func FirstOfMonth(now time.Time) string {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format(models.CompletionDateLayout)
}

// TopMonthly returns the top-N employees by XP earned since the first of the current month.
func (s *LeaderboardService) TopMonthly(ctx context.Context, now time.Time, limit int) ([]MonthlyXP, error) {
	var rows []MonthlyXP
	if err := s.DB.WithContext(ctx).Raw(`
		SELECT e.name AS name, SUM(pt.xp_reward) AS xp_earned
		FROM processed_tasks pt
		INNER JOIN employees e ON pt.assignee = e.id
		WHERE pt.completed_at >= ?
		GROUP BY e.name
		ORDER BY xp_earned DESC, e.name ASC
		LIMIT ?
	`, FirstOfMonth(now), limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query monthly xp: %w", err)
	}
	return rows, nil
}

// AchievementsWithUsers lists every achievement with the users who unlocked it.
func (s *LeaderboardService) AchievementsWithUsers(ctx context.Context) ([]AchievementWithUsers, error) {
	db := s.DB.WithContext(ctx)

	var achievements []models.Achievement
	if err := db.Order("id ASC").Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	var unlocks []models.UserAchievement
	if err := db.Order("unlocked_at ASC").Order("user_id ASC").Find(&unlocks).Error; err != nil {
		return nil, fmt.Errorf("load unlocks: %w", err)
	}
	byAchievement := make(map[string][]string, len(achievements))
	for _, u := range unlocks {
		byAchievement[u.AchievementID] = append(byAchievement[u.AchievementID], u.UserID)
	}

	out := make([]AchievementWithUsers, 0, len(achievements))
	for _, a := range achievements {
		users := byAchievement[a.ID]
		if users == nil {
			users = []string{}
		}
		out = append(out, AchievementWithUsers{Achievement: a, Users: users})
	}
	return out, nil
}

// Levels returns the level table in ascending order.
func (s *LeaderboardService) Levels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := s.DB.WithContext(ctx).Order("level ASC").Find(&levels).Error
	return levels, err
}

// LevelTable returns the seeded level table used to place XP on levels.
func (s *LeaderboardService) LevelTable(ctx context.Context) (LevelTable, error) {
	return LoadLevelTable(s.DB.WithContext(ctx))
}

// FindEmployee looks an employee up by id, falling back to a case-insensitive match.
func (s *LeaderboardService) FindEmployee(ctx context.Context, id string) (*models.Employee, error) {
	db := s.DB.WithContext(ctx)
	var emp models.Employee
	err := db.Where("id = ?", id).First(&emp).Error
	if err == gorm.ErrRecordNotFound {
		err = db.Where("LOWER(id) = LOWER(?)", id).First(&emp).Error
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}
