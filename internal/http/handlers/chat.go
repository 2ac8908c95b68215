package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vizboard-backend/internal/http/response"
	"github.com/yungbote/vizboard-backend/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	resp, err := h.chat.HandleChat(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, "chat_failed", err)
		return
	}
	response.RespondOK(c, resp)
}
