package models

import "time"

// FeedbackType distinguishes guest reviews from improvement suggestions.
type FeedbackType string

const (
	FeedbackTypeReview     FeedbackType = "review"
	FeedbackTypeSuggestion FeedbackType = "suggestion"
)

// Feedback represents a single guest submission.
type Feedback struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	Type       FeedbackType `json:"type" gorm:"type:varchar(20);not null;check:type IN ('review','suggestion')"`
	Rating     int          `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 10"`
	Text       string       `json:"text" gorm:"type:text;not null"`
	Name       string       `json:"name" gorm:"type:varchar(250);not null;index"`
	Contact    string       `json:"contact" gorm:"type:varchar(50);not null"`
	IsApproved bool         `json:"is_approved" gorm:"not null;default:false;index"`
	CreatedAt  time.Time    `json:"created_at"`
	Source     *string      `json:"source" gorm:"type:varchar(150)"`
}

// TableName sets custom table name
func (Feedback) TableName() string { return "feedbacks" }
