package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrcopilot/server/internal/agent/graph"
	"github.com/hrcopilot/server/internal/agent/graph/conversations"
	"github.com/hrcopilot/server/internal/agent/graph/retrievers"
	"github.com/hrcopilot/server/internal/agent/model"
	"github.com/hrcopilot/server/internal/agent/repo"
	"github.com/hrcopilot/server/internal/docqa"
	"github.com/hrcopilot/server/internal/escalation"
	"github.com/hrcopilot/server/internal/testkit"
)

type testEnv struct {
	router  http.Handler
	model   *testkit.ChatModel
	sources []*testkit.Source
	tickets *escalation.MemorySink
}

func newTestEnv(t *testing.T, cm *testkit.ChatModel, sessions *conversations.SessionManager, sources ...*testkit.Source) *testEnv {
	t.Helper()
	rs := make([]*retrievers.Retriever, 0, len(sources))
	for _, s := range sources {
		rs = append(rs, retrievers.New(s, 3))
	}
	set, err := retrievers.NewSet(nil, rs...)
	require.NoError(t, err)

	runner, err := graph.BuildResponseGraph(context.Background(), graph.Config{
		ChatModel:     cm,
		ChatModelName: "gemini-2.5-flash",
		Retrievers:    set,
		ResponsePrompt: model.ResponsePromptConfig{
			CompanyName:     "Acme",
			HRContact:       "hr@acme.test",
			MaxHistoryTurns: 10,
		},
	})
	require.NoError(t, err)

	agent, err := docqa.New(context.Background(), docqa.Config{Source: sources[len(sources)-1], ChatModel: cm})
	require.NoError(t, err)

	sink := escalation.NewMemorySink(time.Hour)
	router, err := NewRouter(Deps{
		Copilot:        runner,
		DocQA:          agent,
		Escalator:      escalation.NewEscalator(sink, time.Second),
		Tickets:        sink,
		Sessions:       sessions,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	return &testEnv{router: router, model: cm, sources: sources, tickets: sink}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCopilot_LeavePolicy(t *testing.T) {
	env := newTestEnv(t,
		&testkit.ChatModel{Reply: testkit.InsufficientDataReply("You get 20 days of annual leave.")},
		nil,
		testkit.NewSource("policy_index", "Employees get 20 days annual leave."),
		testkit.NewSource("document_index"),
	)

	rec := env.do(t, http.MethodPost, "/api/copilot", map[string]any{
		"query":            "What is our leave policy?",
		"employee_context": map[string]string{"department": "Sales"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[copilotResponse](t, rec)
	assert.Equal(t, model.CategoryLeave, body.Category)
	assert.Equal(t, "You get 20 days of annual leave.", body.FinalResponse)
	require.Len(t, body.Retrieved, 2)
	assert.Equal(t, retrievers.NotFoundSentinel, body.Retrieved[1].Text)
	assert.Len(t, body.ConversationHistory, 2)
	assert.Empty(t, body.TicketID)
}

func TestCopilot_InsufficientDataCreatesTicket(t *testing.T) {
	env := newTestEnv(t,
		&testkit.ChatModel{Reply: testkit.InsufficientDataReply("unused")},
		nil,
		testkit.NewSource("policy_index"),
		testkit.NewSource("document_index"),
	)

	rec := env.do(t, http.MethodPost, "/api/copilot", map[string]any{"query": "asdkjasd"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[copilotResponse](t, rec)
	assert.Equal(t, model.CategoryGeneral, body.Category)
	assert.Contains(t, body.FinalResponse, "contact HR")
	require.NotEmpty(t, body.TicketID)

	ticketRec := env.do(t, http.MethodGet, "/api/tickets/"+body.TicketID, nil)
	require.Equal(t, http.StatusOK, ticketRec.Code)
	ticket := decode[escalation.Ticket](t, ticketRec)
	assert.Equal(t, escalation.PriorityHigh, ticket.Priority)
	assert.Contains(t, ticket.Description, "asdkjasd")
}

func TestCopilot_BackendFailure(t *testing.T) {
	env := newTestEnv(t,
		&testkit.ChatModel{Reply: func([]*schema.Message) (*schema.Message, error) {
			return nil, errors.New("quota exceeded")
		}},
		nil,
		testkit.NewSource("policy_index", "text"),
	)

	rec := env.do(t, http.MethodPost, "/api/copilot", map[string]any{
		"query": "bonus",
		"conversation_history": []map[string]string{
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": "hello"},
		},
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode[errorResponse](t, rec)
	assert.NotEmpty(t, body.Error)
	assert.Contains(t, body.Details, "quota exceeded")
	assert.NotContains(t, rec.Body.String(), "conversation_history")
}

func TestCopilot_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, testkit.NewChatModel("x"), nil, testkit.NewSource("policy_index", "text"))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := env.do(t, method, "/api/copilot", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		body := decode[errorResponse](t, rec)
		assert.Equal(t, "method not allowed", body.Error)
	}

	assert.Zero(t, env.model.Calls())
	assert.Zero(t, env.sources[0].Calls())
}

func TestCopilot_BadRequests(t *testing.T) {
	env := newTestEnv(t, testkit.NewChatModel("x"), nil, testkit.NewSource("policy_index", "text"))

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "{not json"},
		{"missing query", map[string]any{"employee_context": map[string]string{"role": "Engineer"}}},
		{"blank query", map[string]any{"query": "   "}},
		{"invalid history role", map[string]any{
			"query":                "leave",
			"conversation_history": []map[string]string{{"role": "system", "content": "x"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/copilot", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.Equal(t, "invalid request", body.Error)
			assert.NotEmpty(t, body.Details)
		})
	}

	assert.Zero(t, env.model.Calls())
	assert.Zero(t, env.sources[0].Calls())
}

func TestCopilot_SessionHistoryRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := conversations.NewSessionManager(repo.NewRedisConversationRepository(rdb, time.Hour))

	env := newTestEnv(t, testkit.NewChatModel("Training is 2 days per year."), sessions,
		testkit.NewSource("policy_index", "Training allowance: 2 days."))

	first := env.do(t, http.MethodPost, "/api/copilot", map[string]any{"query": "training days", "session_id": "emp-1"})
	require.Equal(t, http.StatusOK, first.Code)
	assert.Len(t, decode[copilotResponse](t, first).ConversationHistory, 2)

	second := env.do(t, http.MethodPost, "/api/copilot", map[string]any{"query": "training budget", "session_id": "emp-1"})
	require.Equal(t, http.StatusOK, second.Code)

	body := decode[copilotResponse](t, second)
	require.Len(t, body.ConversationHistory, 4)
	assert.Equal(t, "training days", body.ConversationHistory[0].Content)
	assert.Equal(t, "training budget", body.ConversationHistory[2].Content)
}

func TestDocQA(t *testing.T) {
	env := newTestEnv(t, testkit.NewChatModel("Answer [1]."), nil,
		testkit.NewSource("document_index", "Relocation is supported."))

	rec := env.do(t, http.MethodPost, "/api/docqa", map[string]string{"question": "relocation?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ans := decode[docqa.Answer](t, rec)
	assert.Equal(t, "Answer [1].", ans.Answer)
	require.Len(t, ans.Sources, 1)

	rec = env.do(t, http.MethodPost, "/api/docqa", map[string]string{"question": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketNotFound(t *testing.T) {
	env := newTestEnv(t, testkit.NewChatModel("x"), nil, testkit.NewSource("policy_index"))

	rec := env.do(t, http.MethodGet, "/api/tickets/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, testkit.NewChatModel("x"), nil, testkit.NewSource("policy_index"))

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hrcopilot_requests_total")
}

func TestNewRouter_RequiresCopilot(t *testing.T) {
	_, err := NewRouter(Deps{})
	assert.ErrorIs(t, err, ErrCopilotRequired)
}
