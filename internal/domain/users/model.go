package users

import (
	"onboarding-app/internal/domain/plans"
	"time"
)

type User struct {
	ID       uint `gorm:"primaryKey"`
	Name     string
	Lastname string
	Company  string
	Tel      string
	Email    string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password *string `gorm:""`
	Role     string  `gorm:"not null;default:'user'"`

	PlanID *uint
	Plan   *plans.Plan

	SubscriptionId   *string `gorm:"column:subscription_id;uniqueIndex:idx_users_subscription_id"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`

	// Onboarding session the account was created from, for analytics.
	OnboardingSessionID *string `gorm:"column:onboarding_session_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
