package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vizboard-backend/internal/services"
)

type HealthHandler struct {
	models *services.ModelService
}

func NewHealthHandler(models *services.ModelService) *HealthHandler {
	return &HealthHandler{models: models}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ollama := false
	activeModel := ""
	if h.models != nil {
		ollama = h.models.Healthy(c.Request.Context())
		if m, err := h.models.Active(c.Request.Context()); err == nil {
			activeModel = m.ModelName
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ollama": ollama, "active_model": activeModel})
}
