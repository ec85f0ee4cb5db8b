package billing

import (
	"errors"
	"net/http"
	"time"

	"onboarding-app/internal/domain/payments"
	stripeinfra "onboarding-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"gorm.io/gorm"
)

// VerifyPayment checks whether a checkout session was paid. The local
// cache answers first; unknown or still-pending sessions fall back to a
// Stripe lookup, whose result is persisted for the next call.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid sessionId"})
		return
	}

	record, err := h.lookupLocal(body.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment session"})
		return
	}

	if record == nil || record.Status == payments.StatusPending {
		record, err = h.refreshFromStripe(body.SessionID, record)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify payment with Stripe"})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown payment session"})
			return
		}
	}

	now := time.Now()
	if record.Status == payments.StatusCompleted && record.Expired(now) {
		if err := h.db.Model(record).Update("status", payments.StatusExpired).Error; err == nil {
			record.Status = payments.StatusExpired
		}
	}

	redeemed, err := h.isRedeemed(body.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check payment usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified":   record.Status == payments.StatusCompleted,
		"status":     record.Status,
		"redeemed":   redeemed,
		"expires_at": record.ExpiresAt,
		"metadata": gin.H{
			"email":        record.CustomerEmail,
			"amount_total": record.AmountTotal,
			"currency":     record.Currency,
			"price_id":     record.PriceID,
		},
	})
}

func (h *Handler) lookupLocal(stripeSessionID string) (*payments.PaymentSession, error) {
	var record payments.PaymentSession
	err := h.db.Where("stripe_session_id = ?", stripeSessionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// refreshFromStripe pulls the session from Stripe and upserts the cache
// row. Returns nil when Stripe does not know the session either.
func (h *Handler) refreshFromStripe(stripeSessionID string, existing *payments.PaymentSession) (*payments.PaymentSession, error) {
	if stripe.Key == "" {
		return existing, nil
	}

	s, err := checkoutsession.Get(stripeSessionID, nil)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return existing, nil
		}
		return nil, err
	}

	return stripeinfra.UpsertPaymentSession(h.db, s)
}

func (h *Handler) isRedeemed(stripeSessionID string) (bool, error) {
	var usage payments.PaymentSessionUsage
	err := h.db.Where("stripe_session_id = ?", stripeSessionID).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
