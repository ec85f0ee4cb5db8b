package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"onboarding-app/internal/domain/onboarding"

	"gorm.io/gorm"
)

// EmailResult is one line of a scan run's report.
type EmailResult struct {
	SessionID   string  `json:"session_id"`
	Email       string  `json:"email"`
	EmailNumber int     `json:"email_number"`
	Status      string  `json:"status"`
	ResendID    *string `json:"resend_id,omitempty"`
}

// RunReport summarizes one pass of the recovery pipeline.
type RunReport struct {
	NewlyAbandoned int           `json:"newly_abandoned"`
	Followup       int           `json:"followup"`
	Results        []EmailResult `json:"results"`
}

// Runner ties the scanner and the notifier together: one Run is one
// sequential pass, triggered by the recovery endpoint or the cron
// schedule. Sessions are processed one by one with no checkpointing;
// a re-run skips whatever already carries updated flags.
type Runner struct {
	db       *gorm.DB
	scanner  *Scanner
	notifier Notifier
	logger   *slog.Logger
}

func NewRunner(db *gorm.DB, scanner *Scanner, notifier Notifier, logger *slog.Logger) *Runner {
	return &Runner{db: db, scanner: scanner, notifier: notifier, logger: logger}
}

func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{Results: []EmailResult{}}

	newlyAbandoned, err := r.scanner.ProcessAbandonedSessions(ctx)
	if err != nil {
		return nil, err
	}
	report.NewlyAbandoned = len(newlyAbandoned)

	// Dispatch the fresh batch before the follow-up query runs. A session
	// that was resumed and went quiet again can be overdue on both paths at
	// once; sending first re-stamps last_recovery_email so the follow-up
	// selection skips it, and the contacted set covers the failed-send case
	// where the stamp stays untouched.
	contacted := make(map[string]bool, len(newlyAbandoned))
	for i := range newlyAbandoned {
		report.Results = append(report.Results, r.dispatch(ctx, &newlyAbandoned[i]))
		contacted[newlyAbandoned[i].ID] = true
	}

	followup, err := r.scanner.FindSessionsNeedingFollowup(ctx)
	if err != nil {
		return nil, err
	}
	for i := range followup {
		if contacted[followup[i].ID] {
			continue
		}
		report.Followup++
		report.Results = append(report.Results, r.dispatch(ctx, &followup[i]))
	}

	r.logger.Info("recovery scan finished",
		"newly_abandoned", report.NewlyAbandoned,
		"followup", report.Followup,
		"emails", len(report.Results),
	)
	return report, nil
}

// dispatch sends one reminder and records the outcome. A failed send is
// logged with status "failed" and the counter stays untouched, so the next
// scan picks the session up again. Email dispatch never fails the run.
func (r *Runner) dispatch(ctx context.Context, session *onboarding.Session) EmailResult {
	emailNumber := session.RecoveryEmailsSent + 1

	result := EmailResult{
		SessionID:   session.ID,
		Email:       derefEmail(session),
		EmailNumber: emailNumber,
	}

	resendID, err := r.notifier.SendRecoveryEmail(ctx, result.Email, session.RecoveryToken, session, emailNumber)
	if err != nil {
		r.logger.Error("recovery email dispatch failed", "session_id", session.ID, "email_number", emailNumber, "error", err)
		result.Status = onboarding.EmailStatusFailed
		r.appendLog(ctx, session, result, nil)
		return result
	}

	result.Status = onboarding.EmailStatusSent
	if resendID != "" {
		result.ResendID = &resendID
	}

	// Guarded SQL increment instead of an absolute write from the
	// in-memory row: overlapping scans each count their own send and the
	// counter can never pass the budget cap.
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&onboarding.Session{}).
		Where("id = ? AND recovery_emails_sent < ?", session.ID, onboarding.MaxRecoveryEmails).
		Updates(map[string]interface{}{
			"recovery_emails_sent": gorm.Expr("recovery_emails_sent + 1"),
			"last_recovery_email":  now,
		}).Error; err != nil {
		// The email is out; the worst case of a lost update is one extra
		// reminder on the next scan.
		r.logger.Error("failed to record recovery email on session", "session_id", session.ID, "error", err)
	}

	r.appendLog(ctx, session, result, result.ResendID)
	return result
}

func (r *Runner) appendLog(ctx context.Context, session *onboarding.Session, result EmailResult, resendID *string) {
	entry := onboarding.RecoveryEmailLog{
		SessionID:   session.ID,
		Email:       result.Email,
		EmailNumber: result.EmailNumber,
		Tier:        TierLabel(result.EmailNumber),
		Status:      result.Status,
		ResendID:    resendID,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.logger.Error("failed to append recovery email log", "session_id", session.ID, "error", err)
	}
}

func derefEmail(session *onboarding.Session) string {
	if session.Email == nil {
		return ""
	}
	return *session.Email
}

// Describe renders a one-line run summary for log output.
func (rep *RunReport) Describe() string {
	return fmt.Sprintf("newly_abandoned=%d followup=%d emails=%d", rep.NewlyAbandoned, rep.Followup, len(rep.Results))
}
