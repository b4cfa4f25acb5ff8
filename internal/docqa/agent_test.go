package docqa

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/hrcopilot/server/internal/core/error"
	"github.com/hrcopilot/server/internal/knowledge"
	"github.com/hrcopilot/server/internal/testkit"
)

func TestAsk_AnswersFromDocuments(t *testing.T) {
	src := testkit.NewSource("document_index", "Remote work requires manager approval.", "  ", "Equipment is reimbursed up to 500 USD.")
	src.Hits[2].Metadata = map[string]any{"path": "remote.md"}
	cm := testkit.NewChatModel("Remote work needs approval [1].")

	agent, err := New(context.Background(), Config{Source: src, ChatModel: cm, TopK: 5})
	require.NoError(t, err)

	ans, err := agent.Ask(context.Background(), "Can I work remotely?")
	require.NoError(t, err)

	assert.Equal(t, "Remote work needs approval [1].", ans.Answer)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, 1, ans.Sources[0].Number)
	assert.Equal(t, "Equipment is reimbursed up to 500 USD.", ans.Sources[1].Text)
	assert.Equal(t, "remote.md", ans.Sources[1].Metadata["path"])

	prompt := cm.SystemPrompt()
	assert.Contains(t, prompt, "[1] Remote work requires manager approval.")
	assert.Contains(t, prompt, "[2] Equipment is reimbursed up to 500 USD.")
	assert.Equal(t, 1, cm.Calls())
}

func TestAsk_NoHitsSkipsModel(t *testing.T) {
	cm := testkit.NewChatModel("should not be called")
	agent, err := New(context.Background(), Config{Source: testkit.NewSource("document_index"), ChatModel: cm})
	require.NoError(t, err)

	ans, err := agent.Ask(context.Background(), "What is the meaning of life?")
	require.NoError(t, err)

	assert.Equal(t, NoResultAnswer, ans.Answer)
	assert.Empty(t, ans.Sources)
	assert.Zero(t, cm.Calls())
}

func TestAsk_RetrievalErrorIsFatal(t *testing.T) {
	cm := testkit.NewChatModel("unused")
	src := &testkit.Source{ID: "document_index", Err: errors.New("qdrant unreachable")}
	agent, err := New(context.Background(), Config{Source: src, ChatModel: cm})
	require.NoError(t, err)

	_, err = agent.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qdrant unreachable")
	assert.Zero(t, cm.Calls())
}

func TestAsk_EmptyQuestion(t *testing.T) {
	agent, err := New(context.Background(), Config{Source: testkit.NewSource("d"), ChatModel: testkit.NewChatModel("x")})
	require.NoError(t, err)

	_, err = agent.Ask(context.Background(), " ")
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Config{ChatModel: testkit.NewChatModel("x")})
	assert.ErrorIs(t, err, ErrSourceRequired)

	var src knowledge.Source = testkit.NewSource("d")
	_, err = New(context.Background(), Config{Source: src})
	assert.ErrorIs(t, err, ErrChatModelRequired)
}
