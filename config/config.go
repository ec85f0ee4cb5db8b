package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	APP_URL    string
	JWT_SECRET string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	STRIPE_PRODUCT_ID     string

	RESEND_API_KEY string
	FROM_EMAIL     string

	ONBOARDING_RECOVERY_API_KEY string
	RECOVERY_SCAN_SCHEDULE      string

	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	APP_URL = getEnv("APP_URL", "http://localhost:5173")
	JWT_SECRET = mustEnv("JWT_SECRET")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	STRIPE_PRODUCT_ID = getEnv("STRIPE_PRODUCT_ID", "")

	// Empty key switches the notifier to dev mode (links are logged, not sent).
	RESEND_API_KEY = getEnv("RESEND_API_KEY", "")
	FROM_EMAIL = getEnv("FROM_EMAIL", "onboarding@example.com")

	ONBOARDING_RECOVERY_API_KEY = mustEnv("ONBOARDING_RECOVERY_API_KEY")
	RECOVERY_SCAN_SCHEDULE = getEnv("RECOVERY_SCAN_SCHEDULE", "")

	ADMIN_EMAIL = getEnv("ADMIN_EMAIL", "")
	ADMIN_PASSWORD = getEnv("ADMIN_PASSWORD", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
