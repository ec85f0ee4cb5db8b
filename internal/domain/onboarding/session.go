package onboarding

import "time"

const (
	// Inactivity after which an incomplete session counts as abandoned.
	AbandonmentThreshold = 2 * time.Hour

	// Hard cap on reminder emails per session.
	MaxRecoveryEmails = 3
)

// RecoveryEmailDelays[n] is the minimum wait before email n+1 may be sent,
// measured from the previous reminder (n = emails already sent).
var RecoveryEmailDelays = [MaxRecoveryEmails]time.Duration{
	2 * time.Hour,
	24 * time.Hour,
	72 * time.Hour,
}

type Session struct {
	ID              string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	StripeSessionID *string `gorm:"uniqueIndex:idx_onboarding_sessions_stripe_session_id" json:"stripe_session_id,omitempty"`

	CurrentStep int         `gorm:"not null;default:1" json:"current_step"`
	Data        SessionData `gorm:"serializer:json" json:"data"`
	Email       *string     `json:"email,omitempty"`

	Completed bool `gorm:"not null;default:false" json:"completed"`
	Abandoned bool `gorm:"not null;default:false" json:"abandoned"`

	RecoveryEmailsSent int        `gorm:"not null;default:0" json:"recovery_emails_sent"`
	LastRecoveryEmail  *time.Time `json:"last_recovery_email,omitempty"`
	RecoveryToken      string     `gorm:"not null;uniqueIndex:idx_onboarding_sessions_recovery_token" json:"-"`

	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `gorm:"index" json:"last_activity"`
}

func (Session) TableName() string { return "onboarding_sessions" }

// ReminderBudgetLeft reports whether another recovery email may be sent.
func (s *Session) ReminderBudgetLeft() bool {
	return s.RecoveryEmailsSent < MaxRecoveryEmails
}
