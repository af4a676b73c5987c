package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"genpay/internal/middleware"
	"genpay/internal/models"
	"genpay/internal/services"
	"genpay/internal/utils"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

type loginRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	InstanceID int    `json:"instanceId"`
}

func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) {
	claims := &middleware.Claims{
		UserID:     user.ID,
		InstanceID: user.InstanceID,
		Username:   user.Username,
		IsAdmin:    user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(middleware.JWTKey)
	if err != nil {
		log.Printf("[auth][login] sign access token failed for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		log.Printf("[auth][login] new refresh token failed for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	rtExp := time.Now().Add(30 * 24 * time.Hour)
	if err := h.userService.UpdateRefresh(c.Request.Context(), user.ID, rt, rtExp); err != nil {
		log.Printf("[auth][login] store refresh token failed for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	fullName := user.FullName
	if fullName == "" {
		fullName = user.Username
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"username":   user.Username,
			"fullName":   fullName,
			"isAdmin":    user.IsAdmin,
			"instanceId": user.InstanceID,
		},
		"access_token":  accessToken,
		"refresh_token": rt,
	})
}

// @Summary      Log in
// @Description  Verifies operator credentials and returns access and refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      loginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	instanceID := req.InstanceID
	if instanceID == 0 {
		instanceID = 1
	}
	log.Printf("[auth][login] attempt username=%q instance=%d", username, instanceID)

	user, err := h.userService.GetByUsername(c.Request.Context(), instanceID, username)
	if err != nil {
		log.Printf("[auth][login] lookup failed username=%q: %v", username, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	stored := strings.TrimSpace(user.PasswordHash)
	if strings.HasPrefix(stored, "$2") {
		if err := h.authService.CheckPassword(stored, password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
	} else {
		// legacy plaintext credential: compare and upgrade to bcrypt
		log.Printf("[auth][login] warning: plaintext password in database for userID=%d", user.ID)
		if password != stored {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		if err := h.userService.UpgradePassword(c.Request.Context(), user.ID, password); err != nil {
			log.Printf("[auth][login] bcrypt upgrade failed for userID=%d: %v", user.ID, err)
		}
	}

	if err := h.userService.RecordLogin(c.Request.Context(), user.ID); err != nil {
		log.Printf("[auth][login] record last_login failed for userID=%d: %v", user.ID, err)
	}

	h.issueTokens(c, user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary      Refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        refresh  body      refreshRequest  true  "Refresh token"
// @Success      200      {object}  map[string]interface{}
// @Failure      401      {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.GetByRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}
	h.issueTokens(c, user)
}

// @Summary      Whether any users exist
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /auth/check [get]
func (h *AuthHandler) Check(c *gin.Context) {
	has, err := h.userService.HasUsers(c.Request.Context())
	if err != nil {
		log.Printf("[auth][check] %v", err)
		c.JSON(http.StatusOK, gin.H{"hasUsersSheet": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasUsersSheet": has})
}
