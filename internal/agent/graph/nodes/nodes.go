package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hrcopilot/server/internal/agent/graph/classifier"
	"github.com/hrcopilot/server/internal/agent/graph/conversations"
	"github.com/hrcopilot/server/internal/agent/graph/prompts"
	"github.com/hrcopilot/server/internal/agent/graph/retrievers"
	"github.com/hrcopilot/server/internal/agent/model"
	errx "github.com/hrcopilot/server/internal/core/error"
	logx "github.com/hrcopilot/server/pkg/logger"
)

// NewContextCarrierPreHandler seeds the local state from the caller input.
func NewContextCarrierPreHandler() func(context.Context, model.QueryInput, *model.PipelineState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.PipelineState) (model.QueryInput, error) {
		s.Query = in.Query
		s.EmployeeContext = copyEmployeeContext(in.EmployeeContext)
		s.ConversationHistory = copyTurns(in.ConversationHistory)
		return in, nil
	}
}

// NewContextCarrierNode validates the query and hands it to the classifier.
// Employee context and history are carried in state untouched.
func NewContextCarrierNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (string, error) {
		if strings.TrimSpace(in.Query) == "" {
			return "", errx.BadRequest(ErrEmptyQuery)
		}
		return in.Query, nil
	})
}

// NewClassifierNode categorizes the query.
func NewClassifierNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, query string) (model.Category, error) {
		return classifier.Classify(query), nil
	})
}

// NewClassifierPostHandler records the category in state.
func NewClassifierPostHandler() func(context.Context, model.Category, *model.PipelineState) (model.Category, error) {
	return func(ctx context.Context, out model.Category, state *model.PipelineState) (model.Category, error) {
		state.Category = out
		logx.Debug().
			Str("node", NodeClassifier).
			Str("category", out.String()).
			Msg("Query classified")
		return out, nil
	}
}

// NewRetrieverNode runs every configured retriever and waits for all of them.
// The category is logged but does not select retrievers.
func NewRetrieverNode(set *retrievers.Set) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, category model.Category) ([]model.Retrieved, error) {
		var query string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.PipelineState) error {
			query = state.Query
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		retrieved := set.RetrieveAll(ctx, query)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("retrieval aborted: %w", err)
		}

		logx.Debug().
			Str("node", NodeRetriever).
			Str("category", category.String()).
			Int("retrievers", len(retrieved)).
			Msg("Retrieval complete")
		return retrieved, nil
	})
}

// NewRetrieverPostHandler stores retrieval results and checks they cover every retriever.
func NewRetrieverPostHandler(set *retrievers.Set) func(context.Context, []model.Retrieved, *model.PipelineState) ([]model.Retrieved, error) {
	return func(ctx context.Context, out []model.Retrieved, state *model.PipelineState) ([]model.Retrieved, error) {
		if len(out) != set.Len() {
			return nil, fmt.Errorf("retrieval returned %d results for %d retrievers", len(out), set.Len())
		}
		state.Retrieved = append([]model.Retrieved(nil), out...)
		return out, nil
	}
}

// NewResponseAssemblerNode renders the synthesis prompt from the accumulated state.
func NewResponseAssemblerNode(responsePromptConfig *model.ResponsePromptConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ []model.Retrieved) ([]*schema.Message, error) {
		var snapshot *model.PipelineState
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.PipelineState) error {
			snapshot = state.Clone()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		messages, err := prompts.RenderResponseMessages(ctx, *responsePromptConfig, snapshot)
		if err != nil {
			return nil, fmt.Errorf("generate response prompt: %w", err)
		}
		return messages, nil
	})
}

// NewResponseChatModelPreHandler logs the synthesis call.
func NewResponseChatModelPreHandler() func(context.Context, []*schema.Message, *model.PipelineState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.PipelineState) ([]*schema.Message, error) {
		logx.Debug().
			Str("node", NodeResponseChatModel).
			Str("category", state.Category.String()).
			Msg("AI thinking...")
		return in, nil
	}
}

// NewResponseChatModelPostHandler stores the final response and its usage cost.
func NewResponseChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.PipelineState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.PipelineState) (*schema.Message, error) {
		if out == nil || strings.TrimSpace(out.Content) == "" {
			return nil, errx.Synthesis(ErrEmptyResponse)
		}

		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			state.Usage = model.NewUsage(modelName, out.ResponseMeta.Usage)
			logx.Debug().
				Str("node", NodeResponseChatModel).
				Str("model", modelName).
				Int("prompt_tokens", state.Usage.PromptTokens).
				Int("completion_tokens", state.Usage.CompletionTokens).
				Int("total_tokens", state.Usage.TotalTokens).
				Float64("total_cost_usd", state.Usage.CostUSD).
				Msg("LLM usage")
		}

		state.FinalResponse = out.Content
		logx.Debug().Msg("AI response ready")
		return out, nil
	}
}

// NewHistoryUpdaterNode appends the exchange and emits a copy of the final state.
func NewHistoryUpdaterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) (*model.PipelineState, error) {
		var final *model.PipelineState
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.PipelineState) error {
			if state.FinalResponse == "" {
				return ErrEmptyResponse
			}
			state.ConversationHistory = conversations.AppendExchange(state.ConversationHistory, state.Query, state.FinalResponse)
			final = state.Clone()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update history: %w", err)
		}
		return final, nil
	})
}
