package recovery

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"onboarding-app/database"
	"onboarding-app/internal/domain/onboarding"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A unique shared-cache name keeps the in-memory DB alive across the
	// pool's connections without leaking between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionSeed struct {
	email             *string
	stripeSessionID   *string
	step              int
	lastActivity      time.Time
	completed         bool
	abandoned         bool
	emailsSent        int
	lastRecoveryEmail *time.Time
}

func seedSession(t *testing.T, db *gorm.DB, seed sessionSeed) *onboarding.Session {
	t.Helper()

	step := seed.step
	if step == 0 {
		step = 1
	}
	last := seed.lastActivity
	if last.IsZero() {
		last = time.Now()
	}

	s := &onboarding.Session{
		ID:                 uuid.NewString(),
		StripeSessionID:    seed.stripeSessionID,
		CurrentStep:        step,
		Email:              seed.email,
		Completed:          seed.completed,
		Abandoned:          seed.abandoned,
		RecoveryEmailsSent: seed.emailsSent,
		LastRecoveryEmail:  seed.lastRecoveryEmail,
		RecoveryToken:      uuid.NewString(),
		LastActivity:       last,
	}
	if seed.email != nil {
		s.Data.Credentials = &onboarding.Credentials{Email: *seed.email}
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return s
}

func reloadSession(t *testing.T, db *gorm.DB, id string) *onboarding.Session {
	t.Helper()

	var s onboarding.Session
	if err := db.Where("id = ?", id).First(&s).Error; err != nil {
		t.Fatalf("failed to reload session %s: %v", id, err)
	}
	return &s
}

func strPtr(s string) *string { return &s }

func timePtr(tm time.Time) *time.Time { return &tm }
