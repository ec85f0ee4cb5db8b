package payments

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// How long a completed-but-unconsumed payment may still be redeemed.
const CompletedSessionTTL = 24 * time.Hour

// PaymentSession mirrors a Stripe checkout session locally so that
// verification does not always round-trip to Stripe.
type PaymentSession struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StripeSessionID string `gorm:"not null;uniqueIndex:idx_payment_sessions_stripe_session_id" json:"stripe_session_id"`
	Status          string `gorm:"not null;default:'pending'" json:"status"`

	PriceID       *string `json:"price_id,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	AmountTotal   int64   `json:"amount_total"`
	Currency      string  `json:"currency"`

	// Set when the session completes; redemption past this point is refused.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PaymentSession) TableName() string { return "payment_sessions" }

// Expired reports whether a completed session can no longer be redeemed.
func (p *PaymentSession) Expired(now time.Time) bool {
	if p.Status == StatusExpired {
		return true
	}
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// PaymentSessionUsage is written exactly once per account created from a
// payment session. The unique index is what stops the same payment from
// provisioning two accounts.
type PaymentSessionUsage struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StripeSessionID string `gorm:"not null;uniqueIndex:idx_payment_session_usages_stripe_session_id" json:"stripe_session_id"`
	UserID          uint   `gorm:"not null" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (PaymentSessionUsage) TableName() string { return "payment_session_usages" }
