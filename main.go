package main

import (
	"log/slog"
	"os"
	"time"

	"onboarding-app/config"
	"onboarding-app/database"
	routes "onboarding-app/internal/app/http"
	"onboarding-app/internal/recovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.Connect(config.DB_URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.EnsureAdminUser(db, config.ADMIN_EMAIL, config.ADMIN_PASSWORD); err != nil {
		logger.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	// Set once; handlers only guard that it is non-empty.
	stripe.Key = config.STRIPE_SECRET_KEY

	tracker := recovery.NewTracker(db, logger)
	scanner := recovery.NewScanner(db, logger)
	notifier := recovery.NewNotifier(config.RESEND_API_KEY, config.FROM_EMAIL, config.APP_URL, logger)
	runner := recovery.NewRunner(db, scanner, notifier, logger)

	// Optional in-process schedule; most deployments drive the scan via
	// the recovery endpoint instead.
	if config.RECOVERY_SCAN_SCHEDULE != "" {
		scheduler := recovery.NewScheduler(runner, config.RECOVERY_SCAN_SCHEDULE, logger)
		scheduler.Start()
		defer scheduler.Stop()
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, tracker, runner, logger)

	r.Run(":" + config.PORT)
}
