package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docslice/go-pdf-splitter/internal/store"
)

func dailyRouter(limits store.RateLimitStore, now func() time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/split-pdf", DailyLimit(limits, now), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestDailyLimit_SecondRequestWithinWindow429(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limits := store.NewMemoryRateLimiter(24 * time.Hour)
	r := dailyRouter(limits, func() time.Time { return now })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/split-pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", w.Code)
	}

	now = base.Add(time.Hour)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/split-pdf", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "82800" { // 23h
		t.Fatalf("Retry-After = %q, want 82800", got)
	}

	var body struct {
		Code              string `json:"code"`
		RetryAfterSeconds int64  `json:"retry_after_seconds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal 429 body: %v", err)
	}
	if body.Code != "too_many_requests" || body.RetryAfterSeconds != 82800 {
		t.Fatalf("429 body unexpected: %+v", body)
	}
}

func TestDailyLimit_AllowedAfterWindow(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limits := store.NewMemoryRateLimiter(time.Hour)
	r := dailyRouter(limits, func() time.Time { return now })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/split-pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}

	now = base.Add(time.Hour + time.Second)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/split-pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("request after window = %d, want 200", w.Code)
	}
}

func TestDailyLimit_DeniedRequestDoesNotTouchTable(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limits := store.NewMemoryRateLimiter(time.Hour)
	r := dailyRouter(limits, func() time.Time { return now })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/split-pdf", nil))
	now = base.Add(30 * time.Minute)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/split-pdf", nil)) // denied

	// exactly one window from the accepted request, not from the denial
	now = base.Add(time.Hour)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/split-pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("denial refreshed the window: %d", w.Code)
	}
}
