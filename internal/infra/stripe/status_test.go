package stripe

import (
	"testing"

	"onboarding-app/internal/domain/payments"

	stripeapi "github.com/stripe/stripe-go/v75"
)

func TestNormalizeCheckoutStatus(t *testing.T) {
	tests := []struct {
		name    string
		session *stripeapi.CheckoutSession
		want    string
	}{
		{name: "nil session", session: nil, want: payments.StatusPending},
		{
			name:    "open session",
			session: &stripeapi.CheckoutSession{Status: stripeapi.CheckoutSessionStatusOpen},
			want:    payments.StatusPending,
		},
		{
			name: "complete and paid",
			session: &stripeapi.CheckoutSession{
				Status:        stripeapi.CheckoutSessionStatusComplete,
				PaymentStatus: stripeapi.CheckoutSessionPaymentStatusPaid,
			},
			want: payments.StatusCompleted,
		},
		{
			name: "complete but unpaid",
			session: &stripeapi.CheckoutSession{
				Status:        stripeapi.CheckoutSessionStatusComplete,
				PaymentStatus: stripeapi.CheckoutSessionPaymentStatusUnpaid,
			},
			want: payments.StatusPending,
		},
		{
			name:    "expired",
			session: &stripeapi.CheckoutSession{Status: stripeapi.CheckoutSessionStatusExpired},
			want:    payments.StatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCheckoutStatus(tt.session); got != tt.want {
				t.Fatalf("NormalizeCheckoutStatus = %q, want %q", got, tt.want)
			}
		})
	}
}
