package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vizboard-backend/internal/http/response"
	"github.com/yungbote/vizboard-backend/internal/services"
)

type ModelHandler struct {
	models *services.ModelService
}

func NewModelHandler(models *services.ModelService) *ModelHandler {
	return &ModelHandler{models: models}
}

type modelNameRequest struct {
	ModelName string `json:"model_name" binding:"required"`
}

// GET /api/models
//
// Re-detects against the Ollama server so a freshly pulled model shows
// up without a restart.
func (h *ModelHandler) List(c *gin.Context) {
	models, err := h.models.Detect(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "list_models_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"models": models})
}

// POST /api/models/detect
func (h *ModelHandler) Detect(c *gin.Context) {
	h.List(c)
}

// POST /api/models/active
func (h *ModelHandler) SetActive(c *gin.Context) {
	var req modelNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	model, err := h.models.SetActive(c.Request.Context(), req.ModelName)
	if err != nil {
		response.RespondServiceError(c, "set_active_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"model": model})
}

// POST /api/models/pull
func (h *ModelHandler) Pull(c *gin.Context) {
	var req modelNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	model, err := h.models.Pull(c.Request.Context(), req.ModelName)
	if err != nil {
		response.RespondServiceError(c, "pull_model_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"model": model})
}
