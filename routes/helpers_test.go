package routes

import (
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"guest-feedback-server/config"
	"guest-feedback-server/database"
	"guest-feedback-server/models"
	"guest-feedback-server/utils"
)

const testBootstrapSecret = "test-bootstrap-secret"

// each request gets its own client IP so the auth rate limiter never
// throttles unrelated tests
var nextClientIP int32

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-jwt-secret")
	t.Setenv("ADMIN_BOOTSTRAP_SECRET", testBootstrapSecret)
	config.Load()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	router := gin.New()
	router.RedirectTrailingSlash = false
	Register(router)
	return router
}

func perform(t *testing.T, router *gin.Engine, method, path, contentType string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.RemoteAddr = fmt.Sprintf("192.0.2.%d:1234", atomic.AddInt32(&nextClientIP, 1)%250+1)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func performJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return perform(t, router, method, path, "application/json", body)
}

func performAuthed(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.RemoteAddr = fmt.Sprintf("192.0.2.%d:1234", atomic.AddInt32(&nextClientIP, 1)%250+1)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// createAdmin inserts an active admin user and returns a valid token
func createAdmin(t *testing.T, email, password string) (models.User, string) {
	t.Helper()

	hashed, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Email: email, PasswordHash: hashed, IsActive: true}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return user, token
}

func seedFeedback(t *testing.T, items ...models.Feedback) {
	t.Helper()
	for i := range items {
		if err := database.DB.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed feedback: %v", err)
		}
	}
}
