package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

func TestConversationStore_History(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	for _, c := range []string{"q1", "a1", "q2", "a2"} {
		require.NoError(t, store.Append(ctx, "s1", domain.ChatMessage{Role: domain.RoleUser, Content: c}))
	}

	all, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "q1", all[0].Content)

	last, err := store.History(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "q2", last[0].Content)
	assert.Equal(t, "a2", last[1].Content)
}

func TestConversationStore_SessionsAreIsolated(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "s1", domain.ChatMessage{Content: "one"}))

	other, err := store.History(ctx, "s2", 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestConversationStore_Clear(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "s1", domain.ChatMessage{Content: "one"}))

	require.NoError(t, store.Clear(ctx, "s1"))

	msgs, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestConversationStore_HistoryReturnsCopy(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "s1", domain.ChatMessage{Content: "one"}))

	msgs, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	msgs[0].Content = "changed"

	again, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Equal(t, "one", again[0].Content)
}
