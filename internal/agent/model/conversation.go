package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// SessionRepository persists a session transcript. It backs the
// persist_session / load_session collaborator calls.
type SessionRepository interface {
	// AddMessages appends messages to the session transcript atomically
	AddMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error

	// LoadHistory retrieves the transcript of a session
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes the transcript of a session
	ClearHistory(ctx context.Context, sessionID string) error
}

// ConversationHistory represents a loaded transcript with its session id.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}
