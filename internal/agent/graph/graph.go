package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	"github.com/hrcopilot/server/internal/agent/graph/nodes"
	"github.com/hrcopilot/server/internal/agent/graph/observers"
	"github.com/hrcopilot/server/internal/agent/graph/retrievers"
	"github.com/hrcopilot/server/internal/agent/model"
	errx "github.com/hrcopilot/server/internal/core/error"
	logx "github.com/hrcopilot/server/pkg/logger"
)

var (
	ErrChatModelRequired  = errors.New("chat model is required")
	ErrRetrieversRequired = errors.New("retriever set is required")
)

// Runner executes the compiled copilot graph. Implementations are safe for
// concurrent use; each call gets its own state.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.PipelineState, error)
}

// Config holds everything needed to build the copilot graph.
type Config struct {
	ChatModel      einomodel.BaseChatModel
	ChatModelName  string
	Retrievers     *retrievers.Set
	ResponsePrompt model.ResponsePromptConfig
	// Callbacks attaches the logging observers to every run.
	Callbacks bool
}

// GraphBuilder handles the construction of the copilot graph
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[model.QueryInput, *model.PipelineState]
}

type graphRunner struct {
	runnable  compose.Runnable[model.QueryInput, *model.PipelineState]
	callbacks bool
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.PipelineState, error) {
	var opts []compose.Option
	if r.callbacks {
		opts = append(opts, compose.WithCallbacks(observers.NewAllCallbacks()))
	}

	out, err := r.runnable.Invoke(ctx, in, opts...)
	if err != nil {
		return nil, classifyRunError(ctx, err)
	}
	if out == nil {
		return nil, errx.New(errors.New("graph produced no state"), http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	return out, nil
}

// classifyRunError keeps typed errors raised inside nodes and marks the rest as system errors.
func classifyRunError(ctx context.Context, err error) error {
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errx.New(fmt.Errorf("%w: %v", ctxErr, err), http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	return errx.Synthesis(err)
}

// BuildResponseGraph validates the config, compiles the graph and returns a Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	runnable, err := BuildGraph(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	logx.Debug().Strs("retrievers", cfg.Retrievers.IDs()).Msg("Response graph built successfully")
	return &graphRunner{runnable: runnable, callbacks: cfg.Callbacks}, nil
}

// BuildGraph constructs and returns the compiled copilot graph
func BuildGraph(ctx context.Context, config *Config) (compose.Runnable[model.QueryInput, *model.PipelineState], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModel == nil {
		return nil, ErrChatModelRequired
	}
	if config.Retrievers == nil || config.Retrievers.Len() == 0 {
		return nil, ErrRetrieversRequired
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.PipelineState](
			compose.WithGenLocalState(func(ctx context.Context) *model.PipelineState {
				return &model.PipelineState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	steps := []func() error{
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeContextCarrier,
				nodes.NewContextCarrierNode(),
				compose.WithStatePreHandler(nodes.NewContextCarrierPreHandler()),
			)
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeClassifier,
				nodes.NewClassifierNode(),
				compose.WithStatePostHandler(nodes.NewClassifierPostHandler()),
			)
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeRetriever,
				nodes.NewRetrieverNode(b.config.Retrievers),
				compose.WithStatePostHandler(nodes.NewRetrieverPostHandler(b.config.Retrievers)),
			)
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeResponseAssembler,
				nodes.NewResponseAssemblerNode(&b.config.ResponsePrompt),
			)
		},
		func() error {
			return b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
				b.config.ChatModel,
				compose.WithStatePreHandler(nodes.NewResponseChatModelPreHandler()),
				compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(b.config.ChatModelName)),
			)
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeHistoryUpdater,
				nodes.NewHistoryUpdaterNode(),
			)
		},
	}

	for _, add := range steps {
		if err := add(); err != nil {
			logx.Error().Err(err).Msg("Error adding graph node")
			return fmt.Errorf("error adding graph node: %w", err)
		}
	}
	return nil
}

// addEdges creates the linear flow between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeContextCarrier},
		{nodes.NodeContextCarrier, nodes.NodeClassifier},
		{nodes.NodeClassifier, nodes.NodeRetriever},
		{nodes.NodeRetriever, nodes.NodeResponseAssembler},
		{nodes.NodeResponseAssembler, nodes.NodeResponseChatModel},
		{nodes.NodeResponseChatModel, nodes.NodeHistoryUpdater},
		{nodes.NodeHistoryUpdater, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.PipelineState], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("hr_copilot"),
		compose.WithMaxRunSteps(10),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
