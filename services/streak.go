package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"linear-gamification/models"

	"gorm.io/gorm"
)

// DefaultRestDays are the weekdays that never break a streak.
var DefaultRestDays = []time.Weekday{time.Friday, time.Saturday}

// Workweek knows which UTC weekdays are rest days.
type Workweek struct {
	rest [7]bool
}

// NewWorkweek builds a Workweek with the given rest days.
func NewWorkweek(restDays ...time.Weekday) Workweek {
	var w Workweek
	for _, d := range restDays {
		w.rest[d] = true
	}
	return w
}

// ParseWeekdays turns names like "friday" or "Sat" into weekdays.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if name == full || name == full[:3] {
				out = append(out, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown weekday %q", raw)
		}
	}
	return out, nil
}

// IsWorkday reports whether the UTC weekday of t is not a rest day.
func (w Workweek) IsWorkday(t time.Time) bool {
	return !w.rest[t.UTC().Weekday()]
}

// HasWorkdays reports whether at least one weekday is a workday.
func (w Workweek) HasWorkdays() bool {
	for _, r := range w.rest {
		if !r {
			return true
		}
	}
	return false
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CurrentStreak walks backward from today counting days with a completion.
// A workday without a completion ends the walk; rest days without one are skipped.
func (w Workweek) CurrentStreak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	set := make(map[time.Time]struct{}, len(dates))
	earliest := utcDay(dates[0])
	for _, d := range dates {
		day := utcDay(d)
		set[day] = struct{}{}
		if day.Before(earliest) {
			earliest = day
		}
	}

	streak := 0
	for day := utcDay(today); ; day = day.AddDate(0, 0, -1) {
		if _, ok := set[day]; ok {
			streak++
			continue
		}
		if w.IsWorkday(day) || day.Before(earliest) {
			break
		}
	}
	return streak
}

// MaxStreak returns the longest run of completion days where each day follows
// the previous one once rest days in between are skipped.
func (w Workweek) MaxStreak(dates []time.Time) int {
	days := distinctDays(dates)
	if len(days) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		next := days[i-1].AddDate(0, 0, 1)
		for !w.IsWorkday(next) && next.Before(days[i]) {
			next = next.AddDate(0, 0, 1)
		}
		if next.Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func distinctDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := utcDay(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// ParseCompletionDates parses YYYY-MM-DD values as UTC days.
func ParseCompletionDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		d, err := time.Parse(models.CompletionDateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("invalid completion date %q: %w", v, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// Streaks holds both streak values for one assignee.
type Streaks struct {
	Current int `json:"current_streak"`
	Max     int `json:"max_streak"`
}

// ComputeStreaks recomputes both streaks from the assignee's full completion history.
func (w Workweek) ComputeStreaks(db *gorm.DB, assignee string, today time.Time) (Streaks, error) {
	var values []string
	if err := db.Model(&models.ProcessedTask{}).
		Where("assignee = ? AND completed_at IS NOT NULL", assignee).
		Pluck("completed_at", &values).Error; err != nil {
		return Streaks{}, fmt.Errorf("load completion dates for %s: %w", assignee, err)
	}
	dates, err := ParseCompletionDates(values)
	if err != nil {
		return Streaks{}, err
	}
	return Streaks{
		Current: w.CurrentStreak(dates, today),
		Max:     w.MaxStreak(dates),
	}, nil
}

// RecomputeAllStreaks rebuilds both streak columns for every employee and returns how many changed.
func RecomputeAllStreaks(ctx context.Context, db *gorm.DB, w Workweek, today time.Time) (int, error) {
	var employees []models.Employee
	if err := db.WithContext(ctx).Order("id ASC").Find(&employees).Error; err != nil {
		return 0, fmt.Errorf("load employees: %w", err)
	}

	changed := 0
	for _, emp := range employees {
		streaks, err := w.ComputeStreaks(db.WithContext(ctx), emp.ID, today)
		if err != nil {
			return changed, err
		}
		if streaks.Current == emp.CurrentStreak && streaks.Max == emp.MaxStreak {
			continue
		}
		if err := db.WithContext(ctx).Model(&models.Employee{}).
			Where("id = ?", emp.ID).
			Updates(map[string]interface{}{
				"current_streak": streaks.Current,
				"max_streak":     streaks.Max,
			}).Error; err != nil {
			return changed, fmt.Errorf("update streaks for %s: %w", emp.ID, err)
		}
		changed++
	}
	return changed, nil
}
