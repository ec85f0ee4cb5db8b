package routes

import (
	"log/slog"

	adminapi "onboarding-app/internal/api/admin"
	authapi "onboarding-app/internal/api/auth"
	"onboarding-app/internal/api/billing"
	onboardingapi "onboarding-app/internal/api/onboarding"
	plansapi "onboarding-app/internal/api/plans"
	stripewebhooks "onboarding-app/internal/api/stripewebhook"
	"onboarding-app/internal/app/http/middleware"
	"onboarding-app/internal/recovery"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, tracker *recovery.Tracker, runner *recovery.Runner, logger *slog.Logger) {
	onboardingHandler := onboardingapi.NewHandler(tracker, runner, logger)
	billingHandler := billing.NewHandler(db)
	plansHandler := plansapi.NewHandler(db)
	authHandler := authapi.NewHandler(db)
	adminHandler := adminapi.NewHandler(db)
	webhookHandler := stripewebhooks.NewHandler(db, logger)

	// The webhook reads the raw body for signature verification, so it
	// stays outside the sanitizing group.
	r.POST("/api/webhooks/stripe", webhookHandler.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/api")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.GET("/plans", plansHandler.ListPlans)
	public.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
	public.POST("/verify-payment", billingHandler.VerifyPayment)

	public.POST("/onboarding/session", onboardingHandler.SaveProgress)
	public.GET("/onboarding/resume/:token", onboardingHandler.Resume)
	public.POST("/onboarding/complete", onboardingHandler.Complete)

	public.POST("/admin/login", authHandler.Login)

	// External-scheduler surface, gated by the static recovery key.
	scan := r.Group("/api/onboarding")
	scan.Use(middleware.RequireRecoveryKey())
	scan.POST("/process-abandoned", onboardingHandler.ProcessAbandoned)

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/sessions", adminHandler.ListSessions)
	admin.GET("/payments", adminHandler.ListPaymentSessions)
	admin.GET("/recovery-log", adminHandler.ListRecoveryLog)
	admin.POST("/sync-plans", plansHandler.SyncPlansFromStripe)
}
