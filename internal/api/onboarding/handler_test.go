package onboarding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"onboarding-app/database"
	domain "onboarding-app/internal/domain/onboarding"
	"onboarding-app/internal/recovery"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubNotifier struct {
	sent int
}

func (s *stubNotifier) SendRecoveryEmail(ctx context.Context, email, token string, session *domain.Session, emailNumber int) (string, error) {
	s.sent++
	return "re_stub", nil
}

func newTestHandler(t *testing.T) (*Handler, *gorm.DB, *stubNotifier) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := recovery.NewTracker(db, logger)
	scanner := recovery.NewScanner(db, logger)
	notifier := &stubNotifier{}
	runner := recovery.NewRunner(db, scanner, notifier, logger)

	return NewHandler(tracker, runner, logger), db, notifier
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/onboarding/session", h.SaveProgress)
	r.GET("/api/onboarding/resume/:token", h.Resume)
	r.POST("/api/onboarding/complete", h.Complete)
	r.POST("/api/onboarding/process-abandoned", h.ProcessAbandoned)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSaveProgressAndResume(t *testing.T) {
	h, db, _ := newTestHandler(t)
	r := newTestRouter(h)

	w := postJSON(t, r, "/api/onboarding/session", gin.H{
		"step": 1,
		"data": gin.H{"personal_info": gin.H{"name": "Ada", "lastname": "Lovelace"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", w.Code, w.Body.String())
	}

	var saveResp struct {
		Success   bool   `json:"success"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saveResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !saveResp.Success || saveResp.SessionID == "" {
		t.Fatalf("unexpected save response: %+v", saveResp)
	}

	var session domain.Session
	if err := db.Where("id = ?", saveResp.SessionID).First(&session).Error; err != nil {
		t.Fatalf("session row missing: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/onboarding/resume/"+session.RecoveryToken, nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("resume status = %d", w2.Code)
	}

	var dto SessionDTO
	if err := json.Unmarshal(w2.Body.Bytes(), &dto); err != nil {
		t.Fatalf("unmarshal resume: %v", err)
	}
	if dto.SessionID != session.ID || dto.CurrentStep != 1 {
		t.Fatalf("unexpected resume payload: %+v", dto)
	}
	if dto.PersonalInfo == nil || dto.PersonalInfo.Name != "Ada" {
		t.Fatal("resume payload should carry personal info")
	}
}

func TestResumeUnknownToken(t *testing.T) {
	h, _, _ := newTestHandler(t)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/onboarding/resume/unknown", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCompleteUnknownSession(t *testing.T) {
	h, _, _ := newTestHandler(t)
	r := newTestRouter(h)

	w := postJSON(t, r, "/api/onboarding/complete", gin.H{"session_id": "missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestProcessAbandonedReportShape(t *testing.T) {
	h, db, notifier := newTestHandler(t)
	r := newTestRouter(h)

	email := "stale@example.com"
	session := domain.Session{
		ID:            uuid.NewString(),
		CurrentStep:   2,
		Email:         &email,
		RecoveryToken: uuid.NewString(),
		LastActivity:  time.Now().Add(-3 * time.Hour),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := postJSON(t, r, "/api/onboarding/process-abandoned", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success   bool `json:"success"`
		Processed struct {
			NewlyAbandoned int `json:"newly_abandoned"`
			Followup       int `json:"followup"`
		} `json:"processed"`
		Results []struct {
			SessionID   string  `json:"session_id"`
			Email       string  `json:"email"`
			EmailNumber int     `json:"email_number"`
			Status      string  `json:"status"`
			ResendID    *string `json:"resend_id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !resp.Success || resp.Processed.NewlyAbandoned != 1 || resp.Processed.Followup != 0 {
		t.Fatalf("unexpected report: %s", w.Body.String())
	}
	if len(resp.Results) != 1 || resp.Results[0].Status != "sent" || resp.Results[0].EmailNumber != 1 {
		t.Fatalf("unexpected results: %s", w.Body.String())
	}
	if resp.Results[0].ResendID == nil || *resp.Results[0].ResendID != "re_stub" {
		t.Fatal("resend id should surface in the report")
	}
	if notifier.sent != 1 {
		t.Fatalf("notifier called %d times, want 1", notifier.sent)
	}
}
