package models

import (
	"time"
)

// AchievementType selects the qualification rule evaluated for an Achievement.
type AchievementType string

const (
	AchievementTypeTasks      AchievementType = "tasks"
	AchievementTypeLevel      AchievementType = "level"
	AchievementTypeXP         AchievementType = "xp"
	AchievementTypeStreak     AchievementType = "streak"
	AchievementTypeCTOSpecial AchievementType = "cto_special"
)

// Achievement: static config (seeded from defaults or the catalog file)
type Achievement struct {
	ID            string          `gorm:"primaryKey;type:varchar(128)" json:"id" yaml:"id"`
	Name          string          `gorm:"not null" json:"name" yaml:"name"`
	Description   string          `json:"description" yaml:"description"`
	Icon          string          `gorm:"type:varchar(32)" json:"icon" yaml:"icon"`
	Type          AchievementType `gorm:"type:varchar(32);not null" json:"type" yaml:"type"`
	Target        int64           `gorm:"not null;default:0" json:"target" yaml:"target"`
	TimeframeDays *int            `json:"timeframe_days" yaml:"timeframe_days"`
}

// UserAchievement: unlocked instance, unique per (user, achievement) and never removed
type UserAchievement struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string    `gorm:"not null;uniqueIndex:ux_user_achievement,priority:1" json:"user_id"`
	AchievementID string    `gorm:"not null;uniqueIndex:ux_user_achievement,priority:2;index" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

func intPtr(v int) *int { return &v }

// DefaultAchievements is the catalog seeded when no catalog file is configured.
var DefaultAchievements = []Achievement{
	{
		ID:          "first-blood",
		Name:        "First Blood",
		Description: "Closed your first task",
		Icon:        "🩸",
		Type:        AchievementTypeTasks,
		Target:      1,
	},
	{
		ID:          "ticket-shredder",
		Name:        "Ticket Shredder",
		Description: "Closed 50 tasks",
		Icon:        "🗂️",
		Type:        AchievementTypeTasks,
		Target:      50,
	},
	{
		ID:          "packet-ninja",
		Name:        "Packet Ninja",
		Description: "Reached level 6",
		Icon:        "🥷",
		Type:        AchievementTypeLevel,
		Target:      6,
	},
	{
		ID:            "on-fire",
		Name:          "On Fire",
		Description:   "Five workdays in a row with a completed task",
		Icon:          "🔥",
		Type:          AchievementTypeStreak,
		Target:        5,
		TimeframeDays: intPtr(5),
	},
	{
		ID:            "xp-sprinter",
		Name:          "XP Sprinter",
		Description:   "Earned 1000 XP within a week",
		Icon:          "⚡",
		Type:          AchievementTypeXP,
		Target:        1000,
		TimeframeDays: intPtr(7),
	},
	{
		ID:          "cto-favourite",
		Name:        "CTO's Favourite",
		Description: "Completed a CTO Special Task",
		Icon:        "👑",
		Type:        AchievementTypeCTOSpecial,
		Target:      1,
	},
}
