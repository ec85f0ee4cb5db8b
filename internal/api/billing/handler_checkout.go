package billing

import (
	"net/http"

	"onboarding-app/config"
	"onboarding-app/internal/domain/payments"
	"onboarding-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateCheckoutSession opens a Stripe-hosted checkout for an allow-listed
// price and records a pending local payment session. Happens before any
// account exists - checkout is the first thing a visitor does.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		Price      string `json:"price"`
		SuccessURL string `json:"successUrl"`
		CancelURL  string `json:"cancelUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Price == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price"})
		return
	}

	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	// allow-list price id
	var plan plans.Plan
	if err := h.db.Where("stripe_price_id = ?", body.Price).First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/price"})
		return
	}

	successURL := body.SuccessURL
	if successURL == "" {
		successURL = config.APP_URL + "/onboarding?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := body.CancelURL
	if cancelURL == "" {
		cancelURL = config.APP_URL + "/pricing?canceled=1"
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(plan.StripePriceID), Quantity: stripe.Int64(1)},
		},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session", "details": err.Error()})
		return
	}

	record := payments.PaymentSession{
		StripeSessionID: s.ID,
		Status:          payments.StatusPending,
		PriceID:         &plan.StripePriceID,
		Currency:        string(s.Currency),
	}
	if err := h.db.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL, "session_id": s.ID})
}
