package service

import (
	"context"

	"agentforge-backend/internal/chat"
	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/logger"
)

const maxChatHistoryTurns = 20

type chatService struct {
	directory DirectoryService
	client    *chat.Client
}

func NewChatService(directory DirectoryService, client *chat.Client) ChatService {
	return &chatService{directory: directory, client: client}
}

// Respond generates one in-character reply for the agent. Provider failures
// are logged and replaced with the fixed fallback message; the renter only
// sees an error when the agent itself cannot be resolved.
func (s *chatService) Respond(ctx context.Context, agentID int64, history []domain.ChatTurn, message string) (string, error) {
	agent, err := s.directory.GetAgentDetails(ctx, agentID)
	if err != nil {
		return "", err
	}

	if len(history) > maxChatHistoryTurns {
		history = history[len(history)-maxChatHistoryTurns:]
	}

	logger.ExternalServiceCall("gemini", "generateContent")
	reply, err := s.client.Generate(ctx, agent, history, message)
	if err != nil {
		logger.ExternalServiceResult("gemini", "generateContent", err)
		return chat.FallbackMessage, nil
	}
	logger.ExternalServiceResult("gemini", "generateContent", nil)
	return reply, nil
}
