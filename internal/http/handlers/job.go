package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vizboard-backend/internal/http/response"
	"github.com/yungbote/vizboard-backend/internal/services"
)

type JobHandler struct {
	chat *services.ChatService
}

func NewJobHandler(chat *services.ChatService) *JobHandler {
	return &JobHandler{chat: chat}
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.chat.Job(c.Request.Context(), jobID)
	if err != nil {
		response.RespondServiceError(c, "job_not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}
