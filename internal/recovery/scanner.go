package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"onboarding-app/internal/domain/onboarding"

	"gorm.io/gorm"
)

// Scanner finds sessions that went quiet. It owns the two selection
// queries of the pipeline: fresh abandonments (which receive email #1)
// and already-abandoned sessions due for a follow-up (emails #2+).
type Scanner struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewScanner(db *gorm.DB, logger *slog.Logger) *Scanner {
	return &Scanner{db: db, logger: logger}
}

// ProcessAbandonedSessions flags every session that has been inactive past
// the threshold, is not completed, not yet flagged, and has a contact
// address. It returns the flagged sessions that still have reminder budget
// for immediate first-email dispatch.
func (s *Scanner) ProcessAbandonedSessions(ctx context.Context) ([]onboarding.Session, error) {
	cutoff := time.Now().Add(-onboarding.AbandonmentThreshold)

	var sessions []onboarding.Session
	err := s.db.WithContext(ctx).
		Where("completed = ? AND abandoned = ?", false, false).
		Where("last_activity < ?", cutoff).
		Where("email IS NOT NULL").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive sessions: %w", err)
	}

	if len(sessions) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(sessions))
	for i := range sessions {
		ids = append(ids, sessions[i].ID)
	}
	if err := s.db.WithContext(ctx).Model(&onboarding.Session{}).
		Where("id IN ?", ids).
		Update("abandoned", true).Error; err != nil {
		return nil, fmt.Errorf("failed to flag abandoned sessions: %w", err)
	}

	s.logger.Info("flagged abandoned sessions", "count", len(sessions))

	needContact := make([]onboarding.Session, 0, len(sessions))
	for i := range sessions {
		sessions[i].Abandoned = true
		if sessions[i].ReminderBudgetLeft() {
			needContact = append(needContact, sessions[i])
		}
	}
	return needContact, nil
}

// FindSessionsNeedingFollowup selects abandoned, incomplete sessions with
// at least one reminder already sent whose next-email delay has elapsed.
// Sessions with no prior reminder are deliberately excluded: the first
// email only ever goes out through the abandonment path above.
func (s *Scanner) FindSessionsNeedingFollowup(ctx context.Context) ([]onboarding.Session, error) {
	var candidates []onboarding.Session
	err := s.db.WithContext(ctx).
		Where("abandoned = ? AND completed = ?", true, false).
		Where("recovery_emails_sent >= ? AND recovery_emails_sent < ?", 1, onboarding.MaxRecoveryEmails).
		Where("last_recovery_email IS NOT NULL").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-up candidates: %w", err)
	}

	now := time.Now()
	due := make([]onboarding.Session, 0, len(candidates))
	for _, c := range candidates {
		if followupDue(&c, now) {
			due = append(due, c)
		}
	}
	return due, nil
}

// followupDue applies the per-email delay schedule, indexed by the number
// of reminders already sent.
func followupDue(s *onboarding.Session, now time.Time) bool {
	if s.LastRecoveryEmail == nil {
		return false
	}
	if s.RecoveryEmailsSent < 1 || s.RecoveryEmailsSent >= onboarding.MaxRecoveryEmails {
		return false
	}
	delay := onboarding.RecoveryEmailDelays[s.RecoveryEmailsSent]
	return now.Sub(*s.LastRecoveryEmail) >= delay
}
