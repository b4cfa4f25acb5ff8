package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/hrcopilot/server/internal/agent/graph/conversations"
	"github.com/hrcopilot/server/internal/agent/graph/retrievers"
	"github.com/hrcopilot/server/internal/agent/model"
)

//go:embed template/response_prompt.txt
var responseSystemPrompt string

// HasUsableRetrieval reports whether any retriever returned real content.
func HasUsableRetrieval(retrieved []model.Retrieved) bool {
	for _, r := range retrieved {
		if !retrievers.IsSentinel(r.Text) {
			return true
		}
	}
	return false
}

// RenderResponseMessages renders the synthesis prompt for state via the Eino prompt
// component (Go template), which also emits prompt callbacks.
// The result is a system message followed by the user's query.
func RenderResponseMessages(ctx context.Context, config model.ResponsePromptConfig, state *model.PipelineState) ([]*schema.Message, error) {
	if state == nil {
		return nil, fmt.Errorf("response prompt render: state is nil")
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(responseSystemPrompt),
		schema.UserMessage("{{.Query}}"),
	)
	vars := map[string]any{
		"CompanyName":      config.CompanyName,
		"HRContact":        config.HRContact,
		"Category":         state.Category.String(),
		"Query":            state.Query,
		"Employee":         state.EmployeeContext,
		"History":          conversations.BuildHistoryContext(state.ConversationHistory, config.MaxHistoryTurns),
		"Retrieved":        state.Retrieved,
		"HasUsable":        HasUsableRetrieval(state.Retrieved),
		"NotFoundSentinel": retrievers.NotFoundSentinel,
		"ErrorSentinel":    retrievers.ErrorSentinel,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("response prompt render: %w", err)
	}
	if len(msgs) != 2 || msgs[0] == nil || msgs[1] == nil {
		return nil, fmt.Errorf("response prompt render: unexpected result")
	}
	return msgs, nil
}
