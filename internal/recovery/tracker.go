package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"onboarding-app/internal/domain/onboarding"
	"onboarding-app/internal/domain/payments"
	"onboarding-app/internal/domain/plans"
	"onboarding-app/internal/domain/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound     = errors.New("onboarding session not found")
	ErrPaymentRequired     = errors.New("no completed payment session linked")
	ErrPaymentNotCompleted = errors.New("payment session is not completed")
	ErrPaymentExpired      = errors.New("payment session has expired")
	ErrPaymentAlreadyUsed  = errors.New("payment session already redeemed")
	ErrEmailTaken          = errors.New("an account with this email already exists")
)

// Tracker persists in-progress wizard state. Its writes are best-effort
// from the caller's point of view: handlers log tracker errors and keep
// the wizard moving.
type Tracker struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTracker(db *gorm.DB, logger *slog.Logger) *Tracker {
	return &Tracker{db: db, logger: logger}
}

// SaveProgress upserts a session. Lookup order: explicit session id, then
// the stripe session id carried in the payment variant. Saving always
// refreshes last_activity and clears the abandoned flag, so a user who
// comes back through a recovery link goes active again on the next tick.
func (t *Tracker) SaveProgress(ctx context.Context, sessionID string, data onboarding.SessionData, step int) (*onboarding.Session, error) {
	if err := data.Validate(step); err != nil {
		return nil, err
	}
	if err := hashCredentials(&data); err != nil {
		return nil, fmt.Errorf("failed to hash credentials: %w", err)
	}

	session, err := t.findExisting(ctx, sessionID, data.StripeSession())
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if session == nil {
		session = &onboarding.Session{
			ID:              uuid.NewString(),
			StripeSessionID: data.StripeSession(),
			CurrentStep:     step,
			Data:            data,
			Email:           data.ContactEmail(),
			RecoveryToken:   uuid.NewString(),
			LastActivity:    now,
		}
		if err := t.db.WithContext(ctx).Create(session).Error; err != nil {
			return nil, fmt.Errorf("failed to create onboarding session: %w", err)
		}
		return session, nil
	}

	merged := session.Data.Merge(data)
	session.Data = merged
	session.CurrentStep = step
	if sid := merged.StripeSession(); sid != nil {
		session.StripeSessionID = sid
	}
	if email := merged.ContactEmail(); email != nil {
		session.Email = email
	}
	session.LastActivity = now
	session.Abandoned = false

	if err := t.db.WithContext(ctx).Save(session).Error; err != nil {
		return nil, fmt.Errorf("failed to update onboarding session: %w", err)
	}
	return session, nil
}

func (t *Tracker) findExisting(ctx context.Context, sessionID string, stripeSessionID *string) (*onboarding.Session, error) {
	var session onboarding.Session

	if sessionID != "" {
		err := t.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
		if err == nil {
			return &session, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load onboarding session: %w", err)
		}
	}

	// Dedupe by payment session before creating a second row for the
	// same checkout.
	if stripeSessionID != nil {
		err := t.db.WithContext(ctx).Where("stripe_session_id = ?", *stripeSessionID).First(&session).Error
		if err == nil {
			return &session, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load onboarding session: %w", err)
		}
	}

	return nil, nil
}

// GetByRecoveryToken loads a session for resumption from a reminder link.
func (t *Tracker) GetByRecoveryToken(ctx context.Context, token string) (*onboarding.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrSessionNotFound
	}

	var session onboarding.Session
	err := t.db.WithContext(ctx).Where("recovery_token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session by recovery token: %w", err)
	}
	return &session, nil
}

// Complete finishes a signup: it redeems the linked payment session,
// creates the user account and marks the session completed, all in one
// transaction. The usage row's unique index makes redemption idempotent
// in the failure direction - the same payment can never provision two
// accounts.
func (t *Tracker) Complete(ctx context.Context, sessionID string) (*users.User, error) {
	var created *users.User

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session onboarding.Session
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to load onboarding session: %w", err)
		}

		if session.Data.Credentials == nil || session.Data.Credentials.Email == "" {
			return onboarding.ErrInvalidData
		}
		if session.StripeSessionID == nil {
			return ErrPaymentRequired
		}

		payment, err := redeemPaymentSession(tx, *session.StripeSessionID)
		if err != nil {
			return err
		}

		user, err := createAccount(tx, &session, payment)
		if err != nil {
			return err
		}

		usage := payments.PaymentSessionUsage{
			StripeSessionID: *session.StripeSessionID,
			UserID:          user.ID,
		}
		if err := tx.Create(&usage).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPaymentAlreadyUsed
			}
			return fmt.Errorf("failed to record payment session usage: %w", err)
		}

		if err := tx.Model(&onboarding.Session{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"completed":     true,
				"abandoned":     false,
				"last_activity": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to mark session completed: %w", err)
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("onboarding session completed", "session_id", sessionID, "user_id", created.ID)
	return created, nil
}

func redeemPaymentSession(tx *gorm.DB, stripeSessionID string) (*payments.PaymentSession, error) {
	var usage payments.PaymentSessionUsage
	err := tx.Where("stripe_session_id = ?", stripeSessionID).First(&usage).Error
	if err == nil {
		return nil, ErrPaymentAlreadyUsed
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check payment session usage: %w", err)
	}

	var payment payments.PaymentSession
	err = tx.Where("stripe_session_id = ?", stripeSessionID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentRequired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment session: %w", err)
	}

	if payment.Status != payments.StatusCompleted {
		return nil, ErrPaymentNotCompleted
	}
	if payment.Expired(time.Now()) {
		return nil, ErrPaymentExpired
	}
	return &payment, nil
}

func createAccount(tx *gorm.DB, session *onboarding.Session, payment *payments.PaymentSession) (*users.User, error) {
	creds := session.Data.Credentials

	var existing users.User
	err := tx.Where("email = ?", creds.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}

	user := users.User{
		Email:               creds.Email,
		Role:                "user",
		OnboardingSessionID: &session.ID,
	}
	if creds.PasswordHash != "" {
		hash := creds.PasswordHash
		user.Password = &hash
	}
	if info := session.Data.PersonalInfo; info != nil {
		user.Name = info.Name
		user.Lastname = info.Lastname
		user.Company = info.Company
		user.Tel = info.Tel
	}

	if payment.PriceID != nil {
		var plan plans.Plan
		if err := tx.Where("stripe_price_id = ?", *payment.PriceID).First(&plan).Error; err == nil {
			user.PlanID = &plan.ID
		}
	}

	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}
	return &user, nil
}

func hashCredentials(data *onboarding.SessionData) error {
	if data.Credentials == nil || data.Credentials.Password == "" {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(data.Credentials.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	creds := *data.Credentials
	creds.Password = ""
	creds.PasswordHash = string(hashed)
	data.Credentials = &creds
	return nil
}
