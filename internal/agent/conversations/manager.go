package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

// DefaultMaxTurns is the number of user/assistant exchanges replayed to the model.
const DefaultMaxTurns = 10

type MessagesManager struct {
	sessionRepo model.SessionRepository
	maxTurns    int
}

func NewMessagesManager(sessionRepo model.SessionRepository, config model.SessionConfig) *MessagesManager {
	maxTurns := config.HistoryMaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &MessagesManager{
		sessionRepo: sessionRepo,
		maxTurns:    maxTurns,
	}
}

// BuildResponseContext returns the system message, the recent transcript and
// the pending user message. Nothing is persisted; the exchange is saved with
// SaveExchange once the model has answered.
func (cm *MessagesManager) BuildResponseContext(ctx context.Context, sessionID string, system, pending *schema.Message) ([]*schema.Message, error) {
	history, err := cm.sessionRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	recent := trimTail(history.Messages, (cm.maxTurns-1)*2)
	messages := make([]*schema.Message, 0, len(recent)+2)
	messages = append(messages, system)
	for _, m := range recent {
		if m == nil || m.Content == "" {
			continue
		}
		messages = append(messages, m)
	}
	return append(messages, pending), nil
}

// SaveExchange appends the user's text and the assistant reply together.
func (cm *MessagesManager) SaveExchange(ctx context.Context, sessionID, userText, reply string) error {
	return cm.sessionRepo.AddMessages(ctx, sessionID,
		schema.UserMessage(userText),
		schema.AssistantMessage(reply, nil),
	)
}

// Load returns the stored transcript of a session.
func (cm *MessagesManager) Load(ctx context.Context, sessionID string) (*model.ConversationHistory, error) {
	return cm.sessionRepo.LoadHistory(ctx, sessionID)
}

// Clear drops the transcript, used when the user starts a new chat.
func (cm *MessagesManager) Clear(ctx context.Context, sessionID string) error {
	return cm.sessionRepo.ClearHistory(ctx, sessionID)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, max int) []*schema.Message {
	if max <= 0 {
		return nil
	}
	if len(messages) <= max {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-max:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
