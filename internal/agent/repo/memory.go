package repo

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

// MemorySessionRepository keeps transcripts in process. Used when no Redis is
// configured and in tests.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string][]*schema.Message
	maxTurns int
}

func NewMemorySessionRepository(maxTurns int) *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string][]*schema.Message), maxTurns: maxTurns}
}

func (m *MemorySessionRepository) AddMessages(_ context.Context, sessionID string, messages ...*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append(m.sessions[sessionID], messages...)
	if limit := m.maxTurns * 2; m.maxTurns > 0 && len(msgs) > limit {
		msgs = append([]*schema.Message(nil), msgs[len(msgs)-limit:]...)
	}
	m.sessions[sessionID] = msgs
	return nil
}

func (m *MemorySessionRepository) LoadHistory(_ context.Context, sessionID string) (*model.ConversationHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append([]*schema.Message{}, m.sessions[sessionID]...)
	return &model.ConversationHistory{SessionID: sessionID, Messages: msgs}, nil
}

func (m *MemorySessionRepository) ClearHistory(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
