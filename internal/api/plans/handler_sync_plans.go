package plans

import (
	"net/http"

	"onboarding-app/config"
	"onboarding-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// SyncPlansFromStripe refreshes the local plans table from the active
// recurring prices of the configured product. Admin-only.
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	targetProductID := config.STRIPE_PRODUCT_ID

	params := &stripe.PriceListParams{}
	params.Active = stripe.Bool(true)
	params.Type = stripe.String("recurring")
	params.AddExpand("data.product")

	it := price.List(params)

	synced := 0
	created := 0
	updated := 0
	skipped := 0

	for it.Next() {
		p := it.Price()

		if !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
			skipped++
			continue
		}

		if targetProductID != "" && p.Product.ID != targetProductID {
			skipped++
			continue
		}

		if string(p.Currency) != "eur" {
			skipped++
			continue
		}

		// visibility flag
		if p.Metadata != nil && p.Metadata["visible"] == "false" {
			skipped++
			continue
		}

		amount := float64(p.UnitAmount) / 100.0

		displayName := p.Product.Name
		tier := ""
		if p.Metadata != nil {
			if v := p.Metadata["plan"]; v != "" {
				displayName = v
				tier = v // "starter" | "pro" | "business"
			} else if v := p.Metadata["tier"]; v != "" {
				tier = v
			}
		}

		var existing plans.Plan
		err := h.db.Where("stripe_price_id = ?", p.ID).First(&existing).Error

		if err != nil {
			plan := plans.Plan{
				Name:          displayName,
				PriceEUR:      amount,
				StripePriceID: p.ID,
				Interval:      string(p.Recurring.Interval),
				Tier:          tier,
			}
			if err := h.db.Create(&plan).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan", "details": err.Error()})
				return
			}
			created++
		} else {
			existing.Name = displayName
			existing.PriceEUR = amount
			existing.Interval = string(p.Recurring.Interval)
			if tier != "" {
				existing.Tier = tier
			}

			if err := h.db.Save(&existing).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan", "details": err.Error()})
				return
			}
			updated++
		}

		synced++
	}

	if err := it.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Stripe prices", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"synced":  synced,
		"created": created,
		"updated": updated,
		"skipped": skipped,
	})
}

type PlanDTO struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	PriceEUR      float64 `json:"price_eur"`
	StripePriceID string  `json:"stripe_price_id"`
	Interval      string  `json:"interval"`
	Tier          string  `json:"tier"`
}

// ListPlans is the public pricing endpoint for the marketing site.
func (h *Handler) ListPlans(c *gin.Context) {
	var plansList []plans.Plan
	if err := h.db.Model(&plans.Plan{}).Order("price_eur ASC").Find(&plansList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	result := make([]PlanDTO, 0, len(plansList))
	for i := range plansList {
		p := &plansList[i]
		result = append(result, PlanDTO{
			ID:            p.ID,
			Name:          p.Name,
			PriceEUR:      p.PriceEUR,
			StripePriceID: p.StripePriceID,
			Interval:      p.Interval,
			Tier:          plans.PlanTier(p),
		})
	}

	c.JSON(http.StatusOK, result)
}
