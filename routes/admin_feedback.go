package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guest-feedback-server/database"
	"guest-feedback-server/models"
	"guest-feedback-server/services"
)

// ModerationSettingsRequest replaces both moderation fields wholesale
type ModerationSettingsRequest struct {
	AutoApproveEnabled          *bool `json:"auto_approve_enabled" binding:"required"`
	ManualReviewRatingThreshold int   `json:"manual_review_rating_threshold" binding:"required,min=1,max=10"`
}

// GetAdminFeedback returns the full feedback list including unapproved items
func GetAdminFeedback(c *gin.Context) {
	var feedback []models.Feedback
	if err := database.DB.
		Order("created_at DESC").
		Find(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch feedback",
			"message": "Could not load the feedback list",
		})
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// ApproveFeedback marks a single item as approved
func ApproveFeedback(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback ID"})
		return
	}

	var feedback models.Feedback
	if err := database.DB.First(&feedback, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		return
	}

	feedback.IsApproved = true
	if err := database.DB.Save(&feedback).Error; err != nil {
		log.Printf("❌ Failed to approve feedback %d: %v", feedback.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve feedback"})
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// DeleteFeedback removes a feedback entry
func DeleteFeedback(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback ID"})
		return
	}

	var feedback models.Feedback
	if err := database.DB.First(&feedback, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		return
	}

	if err := database.DB.Delete(&feedback).Error; err != nil {
		log.Printf("❌ Failed to delete feedback %d: %v", feedback.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete feedback"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetModerationSettings returns the current settings, seeding defaults on
// first read
func GetModerationSettings(c *gin.Context) {
	moderation := services.NewModerationService(database.DB)
	settings, err := moderation.GetOrCreateSettings()
	if err != nil {
		log.Printf("❌ Failed to load moderation settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load moderation settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateModerationSettings replaces the settings wholesale
func UpdateModerationSettings(c *gin.Context) {
	var req ModerationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	moderation := services.NewModerationService(database.DB)
	settings, err := moderation.UpdateSettings(*req.AutoApproveEnabled, req.ManualReviewRatingThreshold)
	if err != nil {
		log.Printf("❌ Failed to update moderation settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update moderation settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}
