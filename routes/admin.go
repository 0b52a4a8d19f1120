package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guest-feedback-server/config"
	"guest-feedback-server/database"
	"guest-feedback-server/models"
	"guest-feedback-server/utils"
)

// BootstrapAdminRequest creates the very first moderator account
type BootstrapAdminRequest struct {
	Secret   string `json:"secret" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AdminLogin exchanges form-encoded credentials for an access token.
// The dashboard submits application/x-www-form-urlencoded username/password.
func AdminLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": "username and password are required",
		})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", username).First(&user).Error; err != nil {
		log.Printf("❌ Admin login failed for %s: user not found", username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsActive {
		log.Printf("❌ Login attempt by inactive admin user %d", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
		return
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		log.Printf("❌ Invalid password for admin user %d", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		log.Printf("❌ Failed to generate token for admin user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	log.Printf("✅ Admin user %d logged in successfully", user.ID)

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// BootstrapAdmin creates the first admin account. It is usable exactly once,
// gated by ADMIN_BOOTSTRAP_SECRET, and refuses once any user exists.
func BootstrapAdmin(c *gin.Context) {
	var req BootstrapAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	secret := config.AppConfig.Admin.BootstrapSecret
	if secret == "" || req.Secret != secret {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid bootstrap secret"})
		return
	}

	var total int64
	if err := database.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing users"})
		return
	}
	if total > 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bootstrap already used"})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password hashing failed"})
		return
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		IsActive:     true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		log.Printf("❌ Failed to create bootstrap admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin user"})
		return
	}

	log.Printf("✅ Bootstrap admin %d created", user.ID)

	c.JSON(http.StatusCreated, user)
}
