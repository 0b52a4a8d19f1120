package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestSecurityHeaders(t *testing.T) {
	router := newTestEngine(SecurityHeadersMiddleware())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestInputValidationContentType(t *testing.T) {
	router := newTestEngine(InputValidationMiddleware())

	req := httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "application/xml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("xml body: status = %d, want 415", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("json body: status = %d, want 200", rec.Code)
	}
}

func TestInputValidationBodySize(t *testing.T) {
	router := newTestEngine(InputValidationMiddleware())

	req := httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("x"))
	req.ContentLength = 2 * 1024 * 1024
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: status = %d, want 413", rec.Code)
	}
}

func TestAuditLogSetsRequestID(t *testing.T) {
	router := newTestEngine(AuditLogMiddleware())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Header().Get("X-Request-ID") == second.Header().Get("X-Request-ID") {
		t.Error("request IDs repeat across requests")
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter()

	// burst of 2, then the key is throttled
	limiter := rl.GetLimiter("a", rate.Every(time.Hour), 2)
	if !limiter.Allow() || !limiter.Allow() {
		t.Fatal("burst allowance not honored")
	}
	if limiter.Allow() {
		t.Error("request allowed past the burst")
	}

	// an unrelated key has its own allowance
	if !rl.GetLimiter("b", rate.Every(time.Hour), 2).Allow() {
		t.Error("separate key throttled by another key's usage")
	}

	// the same key returns the same limiter
	if rl.GetLimiter("a", rate.Every(time.Hour), 2).Allow() {
		t.Error("limiter state lost between lookups")
	}
}
