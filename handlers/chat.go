package handlers

import (
	"context"
	"net/http"
	"strings"

	"calbook/models"
	"calbook/utils"

	"github.com/gin-gonic/gin"
)

// ChatAPI is the conversation surface used by the chat endpoints.
type ChatAPI interface {
	HandleTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	Cancel(ctx context.Context, conversationID string) error
}

type ChatHandler struct {
	svc ChatAPI
}

func NewChatHandler(svc ChatAPI) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("body", "request body must be JSON"))
		return
	}
	req.Action = models.TurnAction(strings.ToLower(strings.TrimSpace(string(req.Action))))
	resp, err := h.svc.HandleTurn(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelChat handles DELETE /chat/:conversation_id.
func (h *ChatHandler) CancelChat(c *gin.Context) {
	id := c.Param("conversation_id")
	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "conversation_id": id})
}
