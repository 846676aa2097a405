package database

import (
	"fmt"

	"exam-portal/internal/domain/exams"
	"exam-portal/internal/domain/plans"
	"exam-portal/internal/domain/practice"
	"exam-portal/internal/domain/students"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate auto-migrates every domain model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// identity
		&students.Student{},
		&students.Link{},

		// billing
		&plans.Plan{},
		&students.Subscription{},

		// market
		&exams.Evaluation{},
		&exams.Question{},
		&exams.Purchase{},

		// practice
		&practice.Attempt{},
		&practice.Failed{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
