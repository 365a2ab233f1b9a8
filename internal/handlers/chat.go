package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/services"
)

type ChatHandler struct {
	log         *logger.Logger
	chatService services.ChatService
}

func NewChatHandler(log *logger.Logger, csvc services.ChatService) *ChatHandler {
	return &ChatHandler{
		log:         log.With("handler", "ChatHandler"),
		chatService: csvc,
	}
}

type chatBody struct {
	Message string `json:"message"`
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var body chatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	reply := h.chatService.Respond(c.Request.Context(), body.Message)
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
