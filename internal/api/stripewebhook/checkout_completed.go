package stripewebhooks

import (
	"fmt"

	stripeinfra "onboarding-app/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

// handleCheckoutSessionEvent persists the session into the local payment
// cache. The webhook payload omits line items, so the session is re-fetched
// with the expansion before the upsert.
func (h *Handler) handleCheckoutSessionEvent(session *stripe.CheckoutSession) error {
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("line_items"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}

	record, err := stripeinfra.UpsertPaymentSession(h.db, fullSession)
	if err != nil {
		return fmt.Errorf("failed to persist payment session: %w", err)
	}

	h.logger.Info("payment session persisted from webhook",
		"stripe_session_id", record.StripeSessionID,
		"status", record.Status,
	)
	return nil
}
