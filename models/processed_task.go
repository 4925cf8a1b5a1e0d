package models

import "time"

// CompletionDateLayout is the UTC calendar-day format stored in ProcessedTask.CompletedAt.
const CompletionDateLayout = "2006-01-02"

// ProcessedTask is the audit log of credited completions and the dedup key for webhook
// redeliveries. Rows are inserted once and never updated.
type ProcessedTask struct {
	ID          string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Title       string    `json:"title"`
	Assignee    string    `gorm:"index" json:"assignee"`
	CompletedAt string    `gorm:"type:varchar(10);index" json:"completed_at"` // YYYY-MM-DD, UTC
	XPReward    int64     `gorm:"column:xp_reward;not null" json:"xp_reward"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
