// Package docqa is a small retrieval-augmented question answering agent over
// the document index, independent of the copilot pipeline.
package docqa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hrcopilot/server/internal/agent/graph/observers"
	"github.com/hrcopilot/server/internal/agent/graph/prompts"
	errx "github.com/hrcopilot/server/internal/core/error"
	"github.com/hrcopilot/server/internal/knowledge"
	logx "github.com/hrcopilot/server/pkg/logger"
)

const (
	NodeRetrieve  = "Retrieve"
	NodeTemplate  = "Template"
	NodeChatModel = "ChatModel"
	NodeNoResult  = "NoResult"
	NodeAnswer    = "Answer"

	// NoResultAnswer is returned without calling the model when nothing was retrieved.
	NoResultAnswer = "I could not find anything relevant in the indexed documents."
)

var (
	ErrSourceRequired    = errors.New("docqa: knowledge source is required")
	ErrChatModelRequired = errors.New("docqa: chat model is required")
	ErrEmptyQuestion     = errors.New("question is required")
)

// Config configures an Agent.
type Config struct {
	Source    knowledge.Source
	ChatModel einomodel.BaseChatModel
	TopK      int
	Callbacks bool
}

// Source is one passage the answer was grounded on.
type Source struct {
	Number   int            `json:"number"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Answer is the agent's reply.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type state struct {
	hits []knowledge.Hit
}

// Agent answers questions from the document index.
type Agent struct {
	runnable  compose.Runnable[string, *Answer]
	callbacks bool
}

// New compiles the document-QA graph.
func New(ctx context.Context, cfg Config) (*Agent, error) {
	if cfg.Source == nil {
		return nil, ErrSourceRequired
	}
	if cfg.ChatModel == nil {
		return nil, ErrChatModelRequired
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}

	g := compose.NewGraph[string, *Answer](
		compose.WithGenLocalState(func(ctx context.Context) *state {
			return &state{}
		}),
	)

	if err := g.AddLambdaNode(NodeRetrieve, newRetrieveNode(cfg.Source, cfg.TopK)); err != nil {
		return nil, fmt.Errorf("add %s node: %w", NodeRetrieve, err)
	}
	if err := g.AddChatTemplateNode(NodeTemplate, prompts.NewDocQATemplate()); err != nil {
		return nil, fmt.Errorf("add %s node: %w", NodeTemplate, err)
	}
	if err := g.AddChatModelNode(NodeChatModel, cfg.ChatModel); err != nil {
		return nil, fmt.Errorf("add %s node: %w", NodeChatModel, err)
	}
	if err := g.AddLambdaNode(NodeNoResult, compose.InvokableLambda(func(ctx context.Context, _ map[string]any) (*schema.Message, error) {
		return schema.AssistantMessage(NoResultAnswer, nil), nil
	})); err != nil {
		return nil, fmt.Errorf("add %s node: %w", NodeNoResult, err)
	}
	if err := g.AddLambdaNode(NodeAnswer, newAnswerNode()); err != nil {
		return nil, fmt.Errorf("add %s node: %w", NodeAnswer, err)
	}

	edges := [][2]string{
		{compose.START, NodeRetrieve},
		{NodeTemplate, NodeChatModel},
		{NodeChatModel, NodeAnswer},
		{NodeNoResult, NodeAnswer},
		{NodeAnswer, compose.END},
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", e[0], e[1], err)
		}
	}

	branch := compose.NewGraphBranch(newHitsCondition(), map[string]bool{
		NodeTemplate: true,
		NodeNoResult: true,
	})
	if err := g.AddBranch(NodeRetrieve, branch); err != nil {
		return nil, fmt.Errorf("add retrieval branch: %w", err)
	}

	runnable, err := g.Compile(ctx, compose.WithGraphName("docqa"), compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling docqa graph")
		return nil, fmt.Errorf("error compiling docqa graph: %w", err)
	}
	return &Agent{runnable: runnable, callbacks: cfg.Callbacks}, nil
}

// Ask answers question. Retrieval and model errors are returned as-is.
func (a *Agent) Ask(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errx.BadRequest(ErrEmptyQuestion)
	}

	var opts []compose.Option
	if a.callbacks {
		opts = append(opts, compose.WithCallbacks(observers.NewAllCallbacks()))
	}

	out, err := a.runnable.Invoke(ctx, question, opts...)
	if err != nil {
		return nil, fmt.Errorf("docqa: %w", err)
	}
	return out, nil
}

func newRetrieveNode(source knowledge.Source, topK int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, question string) (map[string]any, error) {
		hits, err := source.Search(ctx, question, topK)
		if err != nil {
			logx.Error().Err(err).Str("source", source.Name()).Msg("Document retrieval failed")
			return nil, fmt.Errorf("retrieve from %s: %w", source.Name(), err)
		}

		kept := make([]knowledge.Hit, 0, len(hits))
		passages := make([]string, 0, len(hits))
		for _, h := range hits {
			if t := strings.TrimSpace(h.Text); t != "" {
				kept = append(kept, h)
				passages = append(passages, t)
			}
		}

		err = compose.ProcessState(ctx, func(_ context.Context, s *state) error {
			s.hits = kept
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().Str("source", source.Name()).Int("hits", len(kept)).Msg("Documents retrieved")
		return prompts.DocQAVariables(question, passages), nil
	})
}

func newHitsCondition() func(context.Context, map[string]any) (string, error) {
	return func(ctx context.Context, _ map[string]any) (string, error) {
		var n int
		err := compose.ProcessState(ctx, func(_ context.Context, s *state) error {
			n = len(s.hits)
			return nil
		})
		if err != nil {
			return "", err
		}
		if n == 0 {
			return NodeNoResult, nil
		}
		return NodeTemplate, nil
	}
}

func newAnswerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (*Answer, error) {
		if msg == nil {
			return nil, errors.New("chat model returned no message")
		}

		out := &Answer{Answer: strings.TrimSpace(msg.Content), Sources: []Source{}}
		err := compose.ProcessState(ctx, func(_ context.Context, s *state) error {
			for i, h := range s.hits {
				out.Sources = append(out.Sources, Source{
					Number:   i + 1,
					Text:     h.Text,
					Score:    h.Score,
					Metadata: h.Metadata,
				})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return out, nil
	})
}
