package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/services"
)

type ConversationHandler struct {
	svc services.ConversationService
}

func NewConversationHandler(svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// ListTurns returns the transcript of a conversation, oldest first.
func (h *ConversationHandler) ListTurns(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	limit := queryInt(c, "limit", 500, 1000)

	rows, err := h.svc.ListByConversation(c.Request.Context(), conversationID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"turns":           rows,
	})
}
