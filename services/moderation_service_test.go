package services

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"guest-feedback-server/models"
)

func newTestService(t *testing.T) *ModerationService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.ModerationSettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewModerationService(db)
}

func TestGetOrCreateSettingsSeedsDefaults(t *testing.T) {
	svc := newTestService(t)

	settings, err := svc.GetOrCreateSettings()
	if err != nil {
		t.Fatalf("GetOrCreateSettings: %v", err)
	}
	if settings.AutoApproveEnabled {
		t.Error("auto-approval enabled by default")
	}
	if settings.ManualReviewRatingThreshold != DefaultManualReviewRatingThreshold {
		t.Errorf("threshold = %d, want %d", settings.ManualReviewRatingThreshold, DefaultManualReviewRatingThreshold)
	}

	// a second read returns the same row rather than seeding again
	again, err := svc.GetOrCreateSettings()
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if again.ID != settings.ID {
		t.Errorf("settings row duplicated: %d vs %d", again.ID, settings.ID)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc := newTestService(t)

	updated, err := svc.UpdateSettings(true, 8)
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if !updated.AutoApproveEnabled || updated.ManualReviewRatingThreshold != 8 {
		t.Errorf("settings = %+v", updated)
	}

	reread, err := svc.GetOrCreateSettings()
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if !reread.AutoApproveEnabled || reread.ManualReviewRatingThreshold != 8 {
		t.Errorf("update not persisted: %+v", reread)
	}
}

func TestShouldAutoApprove(t *testing.T) {
	svc := newTestService(t)

	// disabled by default, even a perfect rating stays pending
	approved, err := svc.ShouldAutoApprove(10)
	if err != nil {
		t.Fatalf("ShouldAutoApprove: %v", err)
	}
	if approved {
		t.Error("approved while auto-approval is disabled")
	}

	if _, err := svc.UpdateSettings(true, 6); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	tests := []struct {
		rating int
		want   bool
	}{
		{5, false},
		{6, false}, // equal to the threshold stays pending
		{7, true},
		{10, true},
	}
	for _, tt := range tests {
		got, err := svc.ShouldAutoApprove(tt.rating)
		if err != nil {
			t.Fatalf("ShouldAutoApprove(%d): %v", tt.rating, err)
		}
		if got != tt.want {
			t.Errorf("ShouldAutoApprove(%d) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}
