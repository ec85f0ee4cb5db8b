package plans

import "strings"

// Tier constants (single source of truth)
const (
	TierNone     = "none"
	TierStarter  = "starter"
	TierPro      = "pro"
	TierBusiness = "business"
)

// PlanTier returns the effective tier for a plan, preferring the value
// stored in the DB over price-based inference.
func PlanTier(p *Plan) string {
	if p == nil {
		return TierNone
	}

	tier := strings.ToLower(strings.TrimSpace(p.Tier))
	switch tier {
	case TierStarter, TierPro, TierBusiness:
		return tier
	}

	return inferTierFromPrice(p.PriceEUR)
}

// inferTierFromPrice exists only for rows synced before tier metadata
// was set on the Stripe prices.
func inferTierFromPrice(priceEUR float64) string {
	switch {
	case priceEUR >= 99:
		return TierBusiness
	case priceEUR >= 29:
		return TierPro
	default:
		return TierStarter
	}
}
