package stripe

import (
	"errors"
	"time"

	"onboarding-app/internal/domain/payments"

	stripeapi "github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// NormalizeCheckoutStatus maps a Stripe checkout session onto the local
// payment-session lifecycle (pending -> completed -> expired).
func NormalizeCheckoutStatus(s *stripeapi.CheckoutSession) string {
	if s == nil {
		return payments.StatusPending
	}
	switch s.Status {
	case stripeapi.CheckoutSessionStatusExpired:
		return payments.StatusExpired
	case stripeapi.CheckoutSessionStatusComplete:
		if s.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusUnpaid {
			return payments.StatusPending
		}
		return payments.StatusCompleted
	default:
		return payments.StatusPending
	}
}

// UpsertPaymentSession writes the Stripe session into the local cache.
// Completion stamps expires_at so a paid-but-unconsumed session cannot be
// redeemed forever.
func UpsertPaymentSession(db *gorm.DB, s *stripeapi.CheckoutSession) (*payments.PaymentSession, error) {
	status := NormalizeCheckoutStatus(s)

	var record payments.PaymentSession
	err := db.Where("stripe_session_id = ?", s.ID).First(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if created {
		record = payments.PaymentSession{StripeSessionID: s.ID, Status: payments.StatusPending}
	}

	// pending -> completed -> expired only; never walk a session backwards.
	if record.Status == payments.StatusPending || status == payments.StatusExpired {
		record.Status = status
	}
	if record.Status == payments.StatusCompleted && record.ExpiresAt == nil {
		expires := time.Now().Add(payments.CompletedSessionTTL)
		record.ExpiresAt = &expires
	}

	record.AmountTotal = s.AmountTotal
	record.Currency = string(s.Currency)
	if s.CustomerEmail != "" {
		email := s.CustomerEmail
		record.CustomerEmail = &email
	} else if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		email := s.CustomerDetails.Email
		record.CustomerEmail = &email
	}
	if record.PriceID == nil && s.LineItems != nil && len(s.LineItems.Data) > 0 && s.LineItems.Data[0].Price != nil {
		price := s.LineItems.Data[0].Price.ID
		record.PriceID = &price
	}

	if created {
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		return &record, nil
	}
	if err := db.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
