package services

import (
	"context"
	"strings"

	"github.com/propscan/audit-backend/internal/logger"
)

// ChatService is a placeholder responder. The real conversational capability
// lives outside this backend; this stub keeps the endpoint stable for clients.
type ChatService interface {
	Respond(ctx context.Context, message string) string
}

type chatService struct {
	log *logger.Logger
}

func NewChatService(baseLog *logger.Logger) ChatService {
	return &chatService{log: baseLog.With("service", "ChatService")}
}

func (cs *chatService) Respond(ctx context.Context, message string) string {
	cs.log.Debug("Chat message received", "length", len(message))
	if strings.TrimSpace(message) == "" {
		return "Ask me anything about your audit and I'll do my best to help."
	}
	return "Thanks for your message. A detailed assistant response is not available yet; please review the audit steps and findings in the meantime."
}
