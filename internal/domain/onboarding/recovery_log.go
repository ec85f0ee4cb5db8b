package onboarding

import "time"

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// RecoveryEmailLog is the audit trail of reminder dispatches, one row per
// attempt, successful or not.
type RecoveryEmailLog struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SessionID   string  `gorm:"index;not null" json:"session_id"`
	Session     Session `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Email       string  `gorm:"not null" json:"email"`
	EmailNumber int     `gorm:"not null" json:"email_number"`
	Tier        string  `gorm:"not null" json:"tier"`
	Status      string  `gorm:"not null" json:"status"`
	ResendID    *string `json:"resend_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (RecoveryEmailLog) TableName() string { return "recovery_email_logs" }
