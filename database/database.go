// Package database opens the gorm connection and applies the schema.
package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"linear-gamification/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects with the named driver. SQLite is meant for local runs and tests.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite only supports one writer at a time
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// newLogger logs slow queries and real errors. A missing row is an expected lookup result.
func newLogger(out io.Writer) logger.Interface {
	return logger.New(log.New(out, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate creates or updates every table and ensures the completions counter row exists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.ProcessedTask{},
		&models.Employee{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Level{},
		&models.CompletionCounter{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CompletionCounter{ID: models.GlobalCounterID}).Error; err != nil {
		return fmt.Errorf("failed to create completions counter: %w", err)
	}
	return nil
}
