package database

import (
	"fmt"

	"onboarding-app/internal/domain/onboarding"
	"onboarding-app/internal/domain/payments"
	"onboarding-app/internal/domain/plans"
	"onboarding-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and migrates all domain models.
// The returned handle is constructed once in main and passed to every
// component that needs it.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate is separate from Connect so tests can run it against sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&plans.Plan{},

		&onboarding.Session{},
		&onboarding.RecoveryEmailLog{},

		&payments.PaymentSession{},
		&payments.PaymentSessionUsage{},
	); err != nil {
		return fmt.Errorf("auto-migrate error: %w", err)
	}
	return nil
}
