package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"onboarding-app/config"

	"github.com/gin-gonic/gin"
)

func newRecoveryRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/scan", RequireRecoveryKey(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestRequireRecoveryKey(t *testing.T) {
	config.ONBOARDING_RECOVERY_API_KEY = "secret-key"
	t.Cleanup(func() { config.ONBOARDING_RECOVERY_API_KEY = "" })

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer token", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", authHeader: "Bearer wrong", wantStatus: http.StatusForbidden},
		{name: "valid key", authHeader: "Bearer secret-key", wantStatus: http.StatusOK},
	}

	r := newRecoveryRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/scan", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRecoveryKey_Unconfigured(t *testing.T) {
	config.ONBOARDING_RECOVERY_API_KEY = ""

	r := newRecoveryRouter()
	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
