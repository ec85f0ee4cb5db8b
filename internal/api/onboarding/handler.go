package onboarding

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	domain "onboarding-app/internal/domain/onboarding"
	"onboarding-app/internal/recovery"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tracker *recovery.Tracker
	runner  *recovery.Runner
	logger  *slog.Logger
}

func NewHandler(tracker *recovery.Tracker, runner *recovery.Runner, logger *slog.Logger) *Handler {
	return &Handler{tracker: tracker, runner: runner, logger: logger}
}

// SessionDTO is what the wizard gets back. Credentials stay server-side.
type SessionDTO struct {
	SessionID    string               `json:"session_id"`
	CurrentStep  int                  `json:"current_step"`
	Email        *string              `json:"email,omitempty"`
	Completed    bool                 `json:"completed"`
	PersonalInfo *domain.PersonalInfo `json:"personal_info,omitempty"`
	Payment      *domain.PaymentMeta  `json:"payment,omitempty"`
	LastActivity time.Time            `json:"last_activity"`
}

func toSessionDTO(s *domain.Session) SessionDTO {
	return SessionDTO{
		SessionID:    s.ID,
		CurrentStep:  s.CurrentStep,
		Email:        s.Email,
		Completed:    s.Completed,
		PersonalInfo: s.Data.PersonalInfo,
		Payment:      s.Data.Payment,
		LastActivity: s.LastActivity,
	}
}

// SaveProgress persists wizard state. Called on step mount and every 60s
// while a step is open. Backend trouble must never block the wizard, so
// non-validation errors degrade to {success:false} instead of a 5xx.
func (h *Handler) SaveProgress(c *gin.Context) {
	var body struct {
		SessionID string             `json:"session_id"`
		Step      int                `json:"step" binding:"required"`
		Data      domain.SessionData `json:"data"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid step/data"})
		return
	}

	session, err := h.tracker.SaveProgress(c.Request.Context(), body.SessionID, body.Data, body.Step)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data does not match the given step"})
			return
		}
		// Best-effort: log and let the wizard continue without tracking.
		h.logger.Error("progress save failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": session.ID,
	})
}

// Resume looks a session up by its recovery token. The client is expected
// to jump forward to current_step when the link points at an earlier one.
func (h *Handler) Resume(c *gin.Context) {
	token := c.Param("token")

	session, err := h.tracker.GetByRecoveryToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, recovery.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown recovery token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	c.JSON(http.StatusOK, toSessionDTO(session))
}

// Complete finishes the signup and provisions the account.
func (h *Handler) Complete(c *gin.Context) {
	var body struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session_id"})
		return
	}

	user, err := h.tracker.Complete(c.Request.Context(), body.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, recovery.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, domain.ErrInvalidData):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session is missing account credentials"})
		case errors.Is(err, recovery.ErrPaymentAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": "This payment was already used to create an account"})
		case errors.Is(err, recovery.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		case errors.Is(err, recovery.ErrPaymentRequired),
			errors.Is(err, recovery.ErrPaymentNotCompleted),
			errors.Is(err, recovery.ErrPaymentExpired):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "A completed, unexpired payment is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete onboarding"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": user.ID,
	})
}

// ProcessAbandoned triggers one pass of the recovery pipeline. Gated by
// the recovery API key middleware; meant to be called by a cron host.
func (h *Handler) ProcessAbandoned(c *gin.Context) {
	report, err := h.runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recovery scan failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"processed": gin.H{
			"newly_abandoned": report.NewlyAbandoned,
			"followup":        report.Followup,
		},
		"results": report.Results,
	})
}
