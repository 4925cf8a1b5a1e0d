package services

import (
	"strings"
	"time"

	"linear-gamification/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// CompletionMessage announces a credited completion with the assignee's new level.
func CompletionMessage(assignee, title string, xpAwarded int64, p LevelProgress, leveledUp bool) string {
	name := p.Name
	if name == "" {
		name = LevelName(p.Level)
	}
	var b strings.Builder
	if leveledUp {
		b.WriteString(printer.Sprintf("⬆️ *%s* reached level %d (%s)!\n", assignee, p.Level, name))
	}
	b.WriteString(printer.Sprintf(
		"🎉 %s completed \"%s\" and earned %d XP! Now level %d (%s). Current XP: %d/%d (%d XP to next level.)",
		assignee, title, xpAwarded, p.Level, name, p.XP, p.NextLevelXP, p.XPToNext,
	))
	return b.String()
}

// AchievementMessage announces a newly unlocked achievement.
func AchievementMessage(user string, a models.Achievement) string {
	return printer.Sprintf("%s *%s*, congratulations! You've unlocked the *%s* achievement! 🎉", a.Icon, user, a.Name)
}

// LeaderboardSummaryMessage renders the periodic top-N summary. The header names the
// configured size even when fewer employees exist.
func LeaderboardSummaryMessage(rows []models.Employee, size int) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, printer.Sprintf(":trophy: *Leaderboard (Top %d)* :trophy:", size))
	for i, row := range rows {
		lines = append(lines, printer.Sprintf("*%d. %s* — %d XP (Level %d)", i+1, row.Name, row.XP, row.Level))
	}
	return strings.Join(lines, "\n")
}

// MonthlyDigestMessage renders the scheduled top-earners digest for the month containing now.
func MonthlyDigestMessage(rows []MonthlyXP, now time.Time) string {
	header := printer.Sprintf(":calendar: *Top XP earners for %s* :calendar:", now.UTC().Format("January 2006"))
	if len(rows) == 0 {
		return header + "\nNo XP earned yet this month."
	}
	lines := []string{header}
	for i, row := range rows {
		lines = append(lines, printer.Sprintf("*%d. %s* — %d XP", i+1, row.Name, row.XPEarned))
	}
	return strings.Join(lines, "\n")
}
