package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"genpay/internal/services"
)

type SettingsHandler struct {
	Service *services.SettingsService
}

func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{Service: service}
}

// @Summary      Instance settings
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  models.Settings
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Get(c.Request.Context(), instanceFromCtx(c)))
}

// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
