package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vizboard-backend/internal/http/response"
	"github.com/yungbote/vizboard-backend/internal/services"
)

type ConversationHandler struct {
	chat *services.ChatService
}

func NewConversationHandler(chat *services.ChatService) *ConversationHandler {
	return &ConversationHandler{chat: chat}
}

// GET /api/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	convs, err := h.chat.Conversations(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, "list_conversations_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": convs})
}

// GET /api/conversations/:id
func (h *ConversationHandler) History(c *gin.Context) {
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	history, err := h.chat.History(c.Request.Context(), convID)
	if err != nil {
		response.RespondServiceError(c, "conversation_not_found", err)
		return
	}
	response.RespondOK(c, history)
}
