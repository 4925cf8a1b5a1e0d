package services

import (
	"math"
	"strings"

	"linear-gamification/models"
)

// DefaultEstimate is the base XP for tasks without an estimate.
const DefaultEstimate = 50

// CTOSpecialPrefix marks titles that earn double XP and the cto_special achievement.
const CTOSpecialPrefix = "CTO Special Task - "

// BaseXPPerLevel scales the level cost curve: cost(n) = round(BaseXPPerLevel * n^1.5)
const BaseXPPerLevel = 500

// PriorityMultipliers are keyed by lower-cased priority label.
var PriorityMultipliers = map[string]float64{
	"urgent":      2.5,
	"high":        2.0,
	"medium":      1.5,
	"low":         1.0,
	"no priority": 1.0,
}

// PriorityMultiplier returns the XP multiplier for a label; unknown labels earn 1.0.
func PriorityMultiplier(priority string) float64 {
	if m, ok := PriorityMultipliers[strings.ToLower(strings.TrimSpace(priority))]; ok {
		return m
	}
	return 1
}

// CalculateXPReward converts a completion into XP. The estimate is used verbatim when present.
// math.Round rounds half away from zero, so the result is reproducible for the same inputs.
func CalculateXPReward(estimate *float64, priority, title string) (xp int64, ctoSpecial bool) {
	base := float64(DefaultEstimate)
	if estimate != nil {
		base = *estimate
	}
	xp = int64(math.Round(base * PriorityMultiplier(priority)))
	if strings.HasPrefix(title, CTOSpecialPrefix) {
		xp *= 2
		ctoSpecial = true
	}
	return xp, ctoSpecial
}

// XPForLevel returns the XP cost of the given level alone.
// e.g., XPForLevel(1) = 500 is what it takes to go from L1 → L2
func XPForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Round(float64(BaseXPPerLevel) * math.Pow(float64(level), 1.5)))
}

// LevelProgress describes where a total XP value sits on the level curve.
type LevelProgress struct {
	XP           int64  `json:"xp"`
	Level        int    `json:"level"`
	Name         string `json:"level_name"`
	LevelStartXP int64  `json:"level_start_xp"` // cumulative cost of levels below Level
	NextLevelXP  int64  `json:"next_level_xp"`  // cumulative XP at which Level+1 starts
	XPToNext     int64  `json:"xp_to_next"`
}

// LevelTable is the configured level table. Levels it does not list fall back to the
// built-in curve and names, so the zero value is the built-in table.
type LevelTable struct {
	costs map[int]int64
	names map[int]string
}

// NewLevelTable indexes configured levels. Non-positive costs and empty names are ignored.
func NewLevelTable(levels []models.Level) LevelTable {
	t := LevelTable{
		costs: make(map[int]int64, len(levels)),
		names: make(map[int]string, len(levels)),
	}
	for _, l := range levels {
		if l.XPRequired > 0 {
			t.costs[l.Level] = l.XPRequired
		}
		if l.Name != "" {
			t.names[l.Level] = l.Name
		}
	}
	return t
}

// Cost returns the XP cost of the given level alone.
func (t LevelTable) Cost(level int) int64 {
	if level < 1 {
		level = 1
	}
	if c, ok := t.costs[level]; ok {
		return c
	}
	return XPForLevel(level)
}

// Name returns the display name for a level.
func (t LevelTable) Name(level int) string {
	if name, ok := t.names[level]; ok {
		return name
	}
	return LevelName(level)
}

// ForXP walks the cumulative cost table from level 1.
func (t LevelTable) ForXP(xp int64) LevelProgress {
	level := 1
	var sum int64
	// Level-up logic: accumulate until the next level's cost no longer fits
	for xp >= sum+t.Cost(level) {
		sum += t.Cost(level)
		level++
	}
	next := sum + t.Cost(level)
	return LevelProgress{
		XP:           xp,
		Level:        level,
		Name:         t.Name(level),
		LevelStartXP: sum,
		NextLevelXP:  next,
		XPToNext:     next - xp,
	}
}

// LevelForXP places xp on the built-in curve.
func LevelForXP(xp int64) LevelProgress {
	return LevelTable{}.ForXP(xp)
}

var levelNames = map[int]string{
	1:  "Script Kiddie",
	2:  "Log Goblin",
	3:  "Payload Pixie",
	4:  "Crypto Cat",
	5:  "Firewall Ferret",
	6:  "Packet Ninja",
	7:  "Exploit Unicorn",
	8:  "Kernel Kraken",
	9:  "Zero-Day Dragon",
	10: "Root Overlord",
}

// MaxNamedLevel is the first level named "God Mode"; every level above shares the name.
const MaxNamedLevel = 11

// LevelName returns the built-in display name for a level.
func LevelName(level int) string {
	if level >= MaxNamedLevel {
		return "God Mode"
	}
	if name, ok := levelNames[level]; ok {
		return name
	}
	return "Boot-Sector Gremlin"
}
