package conversations

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/repo"
)

func TestMessagesManager_BuildResponseContext(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemorySessionRepository(0), model.SessionConfig{HistoryMaxTurns: 2})

	for i := 0; i < 3; i++ {
		require.NoError(t, mm.SaveExchange(ctx, "s1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	msgs, err := mm.BuildResponseContext(ctx, "s1", schema.SystemMessage("sys"), schema.UserMessage("q3"))
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "q2", msgs[1].Content)
	assert.Equal(t, "a2", msgs[2].Content)
	assert.Equal(t, "q3", msgs[3].Content)
	assert.Equal(t, schema.User, msgs[3].Role)
}

func TestMessagesManager_BuildDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemorySessionRepository(0), model.SessionConfig{})

	_, err := mm.BuildResponseContext(ctx, "s1", schema.SystemMessage("sys"), schema.UserMessage("lost"))
	require.NoError(t, err)

	h, err := mm.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, h.Messages)
}

func TestMessagesManager_SaveExchangeAndClear(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemorySessionRepository(0), model.SessionConfig{})
	require.NoError(t, mm.SaveExchange(ctx, "s1", "hello", "hi"))

	h, err := mm.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, schema.User, h.Messages[0].Role)
	assert.Equal(t, schema.Assistant, h.Messages[1].Role)

	require.NoError(t, mm.Clear(ctx, "s1"))
	h, err = mm.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, h.Messages)
	assert.Equal(t, DefaultMaxTurns, mm.maxTurns)
}

func TestTrimTail(t *testing.T) {
	msgs := []*schema.Message{schema.UserMessage("1"), schema.UserMessage("2"), schema.UserMessage("3")}
	assert.Len(t, trimTail(msgs, 5), 3)
	got := trimTail(msgs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Content)
	assert.Empty(t, trimTail(msgs, 0))
}
