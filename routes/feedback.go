package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guest-feedback-server/database"
	"guest-feedback-server/models"
	"guest-feedback-server/services"
)

// CreateFeedbackRequest represents a new guest submission
type CreateFeedbackRequest struct {
	Type    models.FeedbackType `json:"type" binding:"required,oneof=review suggestion"`
	Rating  int                 `json:"rating" binding:"required,min=1,max=10"`
	Text    string              `json:"text" binding:"required"`
	Name    string              `json:"name" binding:"required,max=250"`
	Contact string              `json:"contact" binding:"required,max=50"`
}

// GetPublicFeedback returns approved feedback only, newest first
func GetPublicFeedback(c *gin.Context) {
	var feedback []models.Feedback
	if err := database.DB.
		Where("is_approved = ?", true).
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

// CreateFeedback stores a new submission, applying the auto-approval rule
func CreateFeedback(c *gin.Context) {
	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	moderation := services.NewModerationService(database.DB)
	approved, err := moderation.ShouldAutoApprove(req.Rating)
	if err != nil {
		log.Printf("❌ Failed to load moderation settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Moderation check failed",
			"message": "Could not evaluate moderation settings",
		})
		return
	}

	feedback := models.Feedback{
		Type:       req.Type,
		Rating:     req.Rating,
		Text:       req.Text,
		Name:       req.Name,
		Contact:    req.Contact,
		IsApproved: approved,
	}

	if err := database.DB.Create(&feedback).Error; err != nil {
		log.Printf("❌ Failed to create feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Feedback creation failed",
			"message": "Could not store the submission",
		})
		return
	}

	c.JSON(http.StatusCreated, feedback)
}
