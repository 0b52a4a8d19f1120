package models

// ModerationSettings is a single-row table controlling how new submissions
// are approved. A submission is auto-approved only when AutoApproveEnabled
// is set and its rating is strictly above the manual review threshold.
type ModerationSettings struct {
	ID                          uint `json:"-" gorm:"primaryKey"`
	AutoApproveEnabled          bool `json:"auto_approve_enabled" gorm:"not null;default:false"`
	ManualReviewRatingThreshold int  `json:"manual_review_rating_threshold" gorm:"not null;default:6;check:manual_review_rating_threshold >= 1 AND manual_review_rating_threshold <= 10"`
}

func (ModerationSettings) TableName() string { return "moderation_settings" }
