package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store/storetest"
)

func TestSQLStoreLifecycle(t *testing.T) {
	db := storetest.DB(t)
	s := NewSQLStore(db)
	ctx := context.Background()

	ok, err := s.ConversationExists(ctx, "t-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetMessages(ctx, "t-1")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	require.NoError(t, s.CreateConversation(ctx, "t-1", "42"))
	require.Error(t, s.CreateConversation(ctx, "t-1", "42"))

	require.NoError(t, s.AppendExchange(ctx, "t-1", Message{Content: "Olá"}, Message{Content: "Oi! Como posso ajudar?"}))
	require.NoError(t, s.AppendExchange(ctx, "t-1", Message{Content: "Quantas OS?"}, Message{Content: "Três."}))

	msgs, err := s.GetMessages(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{RoleUser, RoleAssistant, RoleUser, RoleAssistant}, roles(msgs))
	assert.Equal(t, "Olá", msgs[0].Content)
	assert.Equal(t, "Três.", msgs[3].Content)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}

	assert.ErrorIs(t, s.AppendExchange(ctx, "missing", Message{}, Message{}), ErrConversationNotFound)

	require.NoError(t, s.DeleteConversation(ctx, "t-1"))
	ok, err = s.ConversationExists(ctx, "t-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerHistory(t *testing.T) {
	db := storetest.DB(t)
	m := NewManager(NewSQLStore(db), logger.NewNop())
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, "t-2", "7"))
	require.NoError(t, m.SaveExchange(ctx, "t-2", "primeira", "resposta 1"))
	require.NoError(t, m.SaveExchange(ctx, "t-2", "segunda", "resposta 2"))

	history, err := m.History(ctx, "t-2")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, llms.ChatMessageTypeHuman, history[0].GetType())
	assert.Equal(t, "primeira", history[0].GetContent())
	assert.Equal(t, llms.ChatMessageTypeAI, history[3].GetType())
	assert.Equal(t, "resposta 2", history[3].GetContent())

	_, err = m.History(ctx, "nope")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	require.NoError(t, m.Clear(ctx, "t-2"))
	exists, err := m.Exists(ctx, "t-2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, m.Clear(ctx, "t-2"), ErrConversationNotFound)
}

type closingStore struct {
	*SQLStore
	closed int
}

func (c *closingStore) Close() error {
	c.closed++
	return nil
}

func TestManagerClose(t *testing.T) {
	s := &closingStore{SQLStore: NewSQLStore(storetest.DB(t))}
	require.NoError(t, NewManager(s, logger.NewNop()).Close())
	assert.Equal(t, 1, s.closed)

	require.NoError(t, NewManager(NewSQLStore(storetest.DB(t)), logger.NewNop()).Close())
}

func TestSQLStoreConcurrentExchangesStayPaired(t *testing.T) {
	db := storetest.DB(t)
	s := NewSQLStore(db)
	ctx := context.Background()
	require.NoError(t, s.CreateConversation(ctx, "t-3", "1"))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content := string(rune('A' + i))
			assert.NoError(t, s.AppendExchange(ctx, "t-3", Message{Content: content}, Message{Content: "re:" + content}))
		}(i)
	}
	wg.Wait()

	msgs, err := s.GetMessages(ctx, "t-3")
	require.NoError(t, err)
	require.Len(t, msgs, 10)
	for i := 0; i < len(msgs); i += 2 {
		assert.Equal(t, RoleUser, msgs[i].Role)
		assert.Equal(t, "re:"+msgs[i].Content, msgs[i+1].Content)
	}
}

func roles(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Role)
	}
	return out
}
