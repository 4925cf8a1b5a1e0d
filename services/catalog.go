package services

import (
	"fmt"
	"log"
	"os"

	"linear-gamification/models"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog is the configured achievement and level tables.
type Catalog struct {
	Achievements []models.Achievement `yaml:"achievements"`
	Levels       []models.Level       `yaml:"levels"`
}

// DefaultLevels builds the level table from the cost curve and built-in names.
func DefaultLevels() []models.Level {
	levels := make([]models.Level, 0, MaxNamedLevel)
	for lvl := 1; lvl <= MaxNamedLevel; lvl++ {
		levels = append(levels, models.Level{
			Level:      lvl,
			Name:       LevelName(lvl),
			XPRequired: XPForLevel(lvl),
		})
	}
	return levels
}

// DefaultCatalog returns the built-in achievements and levels.
func DefaultCatalog() Catalog {
	achievements := make([]models.Achievement, len(models.DefaultAchievements))
	copy(achievements, models.DefaultAchievements)
	return Catalog{Achievements: achievements, Levels: DefaultLevels()}
}

// LoadCatalogFile reads a YAML catalog. Sections left out fall back to the defaults,
// achievements without an id get one derived from their name, and levels without
// xp_required get the curve's cost.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	def := DefaultCatalog()
	if len(cat.Achievements) == 0 {
		cat.Achievements = def.Achievements
	}
	if len(cat.Levels) == 0 {
		cat.Levels = def.Levels
	}

	seen := make(map[string]bool, len(cat.Achievements))
	for i := range cat.Achievements {
		a := &cat.Achievements[i]
		if a.Name == "" {
			return Catalog{}, fmt.Errorf("catalog %s: achievement %d has no name", path, i+1)
		}
		if a.ID == "" {
			a.ID = slug.Make(a.Name)
		}
		if seen[a.ID] {
			return Catalog{}, fmt.Errorf("catalog %s: duplicate achievement id %q", path, a.ID)
		}
		seen[a.ID] = true
	}
	for i := range cat.Levels {
		l := &cat.Levels[i]
		if l.Level < 1 {
			return Catalog{}, fmt.Errorf("catalog %s: level numbers start at 1", path)
		}
		if l.XPRequired < 0 {
			return Catalog{}, fmt.Errorf("catalog %s: level %d has negative xp_required", path, l.Level)
		}
		if l.Name == "" {
			l.Name = LevelName(l.Level)
		}
		if l.XPRequired == 0 {
			l.XPRequired = XPForLevel(l.Level)
		}
	}
	return cat, nil
}

// SeedCatalog upserts achievements and levels so catalog edits reach existing databases.
// Unlocks for achievements dropped from the catalog are kept.
func SeedCatalog(db *gorm.DB, cat Catalog) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if len(cat.Achievements) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "type", "target", "timeframe_days"}),
			}).Create(&cat.Achievements).Error; err != nil {
				return fmt.Errorf("seed achievements: %w", err)
			}
		}
		if len(cat.Levels) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "level"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "xp_required"}),
			}).Create(&cat.Levels).Error; err != nil {
				return fmt.Errorf("seed levels: %w", err)
			}
		}
		log.Printf("✅ Catalog seeded: %d achievements, %d levels", len(cat.Achievements), len(cat.Levels))
		return nil
	})
}

// LoadLevelTable reads the seeded levels table for the calculator.
func LoadLevelTable(db *gorm.DB) (LevelTable, error) {
	var levels []models.Level
	if err := db.Order("level ASC").Find(&levels).Error; err != nil {
		return LevelTable{}, fmt.Errorf("load levels: %w", err)
	}
	return NewLevelTable(levels), nil
}
