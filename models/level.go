package models

// Level is one row of the level table served to the dashboard.
// XPRequired is the XP cost of this level alone, not the cumulative total.
type Level struct {
	Level      int    `gorm:"primaryKey;autoIncrement:false" json:"level" yaml:"level"`
	Name       string `gorm:"not null" json:"name" yaml:"name"`
	XPRequired int64  `gorm:"column:xp_required;not null" json:"xp_required" yaml:"xp_required"`
}

// CompletionCounter is the single-row global count of credited completions.
type CompletionCounter struct {
	ID    int   `gorm:"primaryKey;autoIncrement:false"`
	Count int64 `gorm:"not null;default:0"`
}

// TableName implements the GORM tabler interface.
func (CompletionCounter) TableName() string { return "completions" }

// GlobalCounterID is the primary key of the only CompletionCounter row.
const GlobalCounterID = 1
