package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"genpay/internal/models"
	"genpay/internal/services"
)

type UserHandler struct {
	Service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

type createUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"isAdmin"`
	InstanceID int    `json:"instanceId"`
}

// @Summary      Create an operator account
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      createUserRequest  true  "New user"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /users/create [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	instanceID := req.InstanceID
	if instanceID == 0 {
		instanceID = instanceFromCtx(c)
	}
	user := &models.User{
		InstanceID: instanceID,
		Username:   req.Username,
		FullName:   req.FullName,
		Email:      req.Email,
		IsAdmin:    req.IsAdmin,
	}

	id, err := h.Service.CreateUser(c.Request.Context(), user, req.Password)
	if err != nil {
		msg := err.Error()
		if strings.Contains(strings.ToLower(msg), "duplicate key") || strings.Contains(strings.ToLower(msg), "unique constraint") {
			msg = "Username already exists"
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"userId":  id,
	})
}

// @Summary      List users
// @Tags         Users
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      500  {object}  map[string]string
// @Router       /users/list [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Service.ListUsers(c.Request.Context(), instanceFromCtx(c))
	if err != nil {
		log.Printf("[users][list] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}
