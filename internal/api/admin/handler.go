package admin

import (
	"net/http"
	"time"

	"onboarding-app/internal/domain/onboarding"
	"onboarding-app/internal/domain/payments"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type DashboardStats struct {
	TotalSessions     int64            `json:"total_sessions"`
	CompletedSessions int64            `json:"completed_sessions"`
	AbandonedSessions int64            `json:"abandoned_sessions"`
	RecoveredSessions int64            `json:"recovered_sessions"`
	RecoveryEmails    int64            `json:"recovery_emails"`
	PaymentsByStatus  map[string]int64 `json:"payments_by_status"`
}

// Dashboard returns funnel counts for the admin UI. "Recovered" means a
// session that got at least one reminder and still completed.
func (h *Handler) Dashboard(c *gin.Context) {
	var stats DashboardStats

	h.db.Model(&onboarding.Session{}).Count(&stats.TotalSessions)
	h.db.Model(&onboarding.Session{}).Where("completed = ?", true).Count(&stats.CompletedSessions)
	h.db.Model(&onboarding.Session{}).Where("abandoned = ?", true).Count(&stats.AbandonedSessions)
	h.db.Model(&onboarding.Session{}).
		Where("completed = ? AND recovery_emails_sent > ?", true, 0).
		Count(&stats.RecoveredSessions)
	h.db.Model(&onboarding.RecoveryEmailLog{}).
		Where("status = ?", onboarding.EmailStatusSent).
		Count(&stats.RecoveryEmails)

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	h.db.Model(&payments.PaymentSession{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts)

	stats.PaymentsByStatus = map[string]int64{}
	for _, sc := range counts {
		stats.PaymentsByStatus[sc.Status] = sc.Count
	}

	c.JSON(http.StatusOK, stats)
}

type AdminSession struct {
	ID                 string     `json:"id"`
	Email              *string    `json:"email,omitempty"`
	CurrentStep        int        `json:"current_step"`
	Completed          bool       `json:"completed"`
	Abandoned          bool       `json:"abandoned"`
	RecoveryEmailsSent int        `json:"recovery_emails_sent"`
	LastRecoveryEmail  *time.Time `json:"last_recovery_email,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	LastActivity       time.Time  `json:"last_activity"`
}

// ListSessions lists onboarding sessions, optionally filtered by
// ?state=active|abandoned|completed.
func (h *Handler) ListSessions(c *gin.Context) {
	q := h.db.Model(&onboarding.Session{}).Order("last_activity DESC")

	switch c.Query("state") {
	case "active":
		q = q.Where("completed = ? AND abandoned = ?", false, false)
	case "abandoned":
		q = q.Where("abandoned = ?", true)
	case "completed":
		q = q.Where("completed = ?", true)
	case "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown state filter"})
		return
	}

	var sessions []onboarding.Session
	if err := q.Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sessions"})
		return
	}

	result := make([]AdminSession, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, AdminSession{
			ID:                 s.ID,
			Email:              s.Email,
			CurrentStep:        s.CurrentStep,
			Completed:          s.Completed,
			Abandoned:          s.Abandoned,
			RecoveryEmailsSent: s.RecoveryEmailsSent,
			LastRecoveryEmail:  s.LastRecoveryEmail,
			CreatedAt:          s.CreatedAt,
			LastActivity:       s.LastActivity,
		})
	}

	c.JSON(http.StatusOK, result)
}

// ListPaymentSessions lists the local payment-session cache.
func (h *Handler) ListPaymentSessions(c *gin.Context) {
	var records []payments.PaymentSession
	if err := h.db.Order("created_at DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment sessions"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// ListRecoveryLog lists reminder dispatch audit rows, newest first.
func (h *Handler) ListRecoveryLog(c *gin.Context) {
	var entries []onboarding.RecoveryEmailLog
	if err := h.db.Order("created_at DESC").Limit(500).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recovery log"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
