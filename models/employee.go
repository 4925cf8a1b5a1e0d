package models

import (
	"time"
)

// Employee tracks gamified progression for each assignee (denormalized for the dashboard).
// The ID is the assignee's display name as reported by the tracker.
type Employee struct {
	ID   string `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Name string `gorm:"not null" json:"name"`

	// Core progression
	XP    int64 `json:"xp" gorm:"not null;default:0;index"`
	Level int   `json:"level" gorm:"not null;default:1"`

	// Workday streaks, recomputed from processed_tasks on every completion
	CurrentStreak int `json:"current_streak" gorm:"not null;default:0"`
	MaxStreak     int `json:"max_streak" gorm:"not null;default:0"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
