package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"onboarding-app/config"

	"github.com/gin-gonic/gin"
)

// RequireRecoveryKey gates the recovery-scan endpoint with the static
// bearer key handed to the external scheduler. Missing header is 401,
// a wrong key is 403; neither is retried by the caller.
func RequireRecoveryKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.ONBOARDING_RECOVERY_API_KEY
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Recovery API key not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid recovery API key"})
			return
		}

		c.Next()
	}
}
