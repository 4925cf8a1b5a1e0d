package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"linear-gamification/models"
	"linear-gamification/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCatalogFile(t *testing.T) {
	path := writeCatalog(t, `
achievements:
  - name: "Night Owl Deluxe"
    description: "Closed ten tasks"
    icon: "🦉"
    type: tasks
    target: 10
  - id: weekly-grind
    name: "Weekly Grind"
    type: streak
    target: 7
    timeframe_days: 7
`)

	cat, err := services.LoadCatalogFile(path)
	require.NoError(t, err)

	require.Len(t, cat.Achievements, 2)
	assert.Equal(t, "night-owl-deluxe", cat.Achievements[0].ID)
	assert.Equal(t, models.AchievementTypeTasks, cat.Achievements[0].Type)
	assert.Equal(t, int64(10), cat.Achievements[0].Target)
	require.NotNil(t, cat.Achievements[1].TimeframeDays)
	assert.Equal(t, 7, *cat.Achievements[1].TimeframeDays)

	assert.Equal(t, services.DefaultLevels(), cat.Levels, "levels fall back to the defaults")
}

func TestLoadCatalogFile_FillsLevelGaps(t *testing.T) {
	path := writeCatalog(t, `
levels:
  - level: 1
  - level: 2
    name: "Intern"
    xp_required: 42
`)

	cat, err := services.LoadCatalogFile(path)
	require.NoError(t, err)

	assert.Len(t, cat.Achievements, len(models.DefaultAchievements))
	assert.Equal(t, []models.Level{
		{Level: 1, Name: "Script Kiddie", XPRequired: 500},
		{Level: 2, Name: "Intern", XPRequired: 42},
	}, cat.Levels)
}

func TestLoadCatalogFile_Errors(t *testing.T) {
	cases := map[string]string{
		"duplicate id": "achievements:\n  - {id: a, name: A, type: tasks}\n  - {id: a, name: B, type: tasks}\n",
		"missing name": "achievements:\n  - {id: a, type: tasks}\n",
		"bad level":    "levels:\n  - {level: 0, name: Zero}\n",
		"invalid yaml": "achievements: [",
		"negative xp":  "levels:\n  - {level: 1, xp_required: -5}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := services.LoadCatalogFile(writeCatalog(t, body))
			assert.Error(t, err)
		})
	}

	_, err := services.LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedCatalog_UpdatesExistingRows(t *testing.T) {
	db := newTestDB(t)

	cat := services.DefaultCatalog()
	cat.Achievements[0].Name = "First Ticket"
	require.NoError(t, services.SeedCatalog(db, cat))

	var ach models.Achievement
	require.NoError(t, db.First(&ach, "id = ?", cat.Achievements[0].ID).Error)
	assert.Equal(t, "First Ticket", ach.Name)

	var count int64
	require.NoError(t, db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(len(cat.Achievements)), count)
}
