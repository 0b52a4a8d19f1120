package services

import (
	"errors"

	"gorm.io/gorm"

	"guest-feedback-server/models"
)

// DefaultManualReviewRatingThreshold is seeded on first settings read.
const DefaultManualReviewRatingThreshold = 6

// ModerationService owns the single moderation settings row and the
// auto-approval decision applied to new submissions.
type ModerationService struct {
	db *gorm.DB
}

// NewModerationService creates a moderation service on the given database
func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

// GetOrCreateSettings returns the settings row, seeding defaults on first use
func (s *ModerationService) GetOrCreateSettings() (models.ModerationSettings, error) {
	var settings models.ModerationSettings
	err := s.db.Order("id asc").First(&settings).Error
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ModerationSettings{}, err
	}

	settings = models.ModerationSettings{
		AutoApproveEnabled:          false,
		ManualReviewRatingThreshold: DefaultManualReviewRatingThreshold,
	}
	if err := s.db.Create(&settings).Error; err != nil {
		return models.ModerationSettings{}, err
	}
	return settings, nil
}

// UpdateSettings replaces both settings fields wholesale
func (s *ModerationService) UpdateSettings(autoApprove bool, threshold int) (models.ModerationSettings, error) {
	settings, err := s.GetOrCreateSettings()
	if err != nil {
		return models.ModerationSettings{}, err
	}

	settings.AutoApproveEnabled = autoApprove
	settings.ManualReviewRatingThreshold = threshold
	if err := s.db.Save(&settings).Error; err != nil {
		return models.ModerationSettings{}, err
	}
	return settings, nil
}

// ShouldAutoApprove reports whether a new submission with the given rating
// skips manual review. Ratings at or below the threshold always stay pending.
func (s *ModerationService) ShouldAutoApprove(rating int) (bool, error) {
	settings, err := s.GetOrCreateSettings()
	if err != nil {
		return false, err
	}
	return settings.AutoApproveEnabled && rating > settings.ManualReviewRatingThreshold, nil
}
