package sqlqa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/llm/llmtest"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store/storetest"
)

func seeded(t *testing.T) *store.Reader {
	db := storetest.DB(t)
	storetest.SeedShop(t, db)
	return store.NewReader(db)
}

func TestAnswerRunsQueryAndSummarizes(t *testing.T) {
	provider := &llmtest.Scripted{Func: func(req *llm.LLMRequest) (string, error) {
		if strings.Contains(req.System, "Esquema disponível") {
			return "```sql\nSELECT COUNT(*) AS total FROM service_orders WHERE status = 'IN_PROGRESS';\n```", nil
		}
		return "Há 1 OS em andamento.", nil
	}}
	r := New(provider, seeded(t), logger.NewNop())

	res, err := r.Answer(context.Background(), "Quantas OS estão em andamento?")
	require.NoError(t, err)
	assert.Equal(t, "Há 1 OS em andamento.", res.Reply)
	assert.Equal(t, "SELECT COUNT(*) AS total FROM service_orders WHERE status = 'IN_PROGRESS'", res.SQL)
	require.NotNil(t, res.Rows)
	require.Len(t, res.Rows.Rows, 1)
	assert.EqualValues(t, 1, res.Rows.Rows[0]["total"])

	reqs := provider.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].System, "service_orders(")
	assert.Contains(t, reqs[1].Prompt, `"total":1`)
}

func TestAnswerRejectsUnsafeSQL(t *testing.T) {
	r := New(llmtest.New("DELETE FROM clients"), seeded(t), logger.NewNop())
	res, err := r.Answer(context.Background(), "apague os clientes")
	require.NoError(t, err)
	assert.Equal(t, replyUnsafe, res.Reply)
	assert.Nil(t, res.Rows)
}

func TestAnswerBestEffortOnFailure(t *testing.T) {
	r := New(&llmtest.Scripted{Err: errors.New("provider down")}, seeded(t), logger.NewNop())
	res, err := r.Answer(context.Background(), "quantos clientes?")
	require.NoError(t, err)
	assert.Equal(t, replyQueryFailed, res.Reply)

	r = New(llmtest.New("SELECT nope FROM clients"), seeded(t), logger.NewNop())
	res, err = r.Answer(context.Background(), "quantos clientes?")
	require.NoError(t, err)
	assert.Equal(t, replyQueryFailed, res.Reply)
}
