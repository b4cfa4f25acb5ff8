package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"

	"github.com/hrcopilot/server/internal/agent/graph"
	"github.com/hrcopilot/server/internal/agent/graph/conversations"
	"github.com/hrcopilot/server/internal/agent/graph/nodes"
	"github.com/hrcopilot/server/internal/agent/graph/retrievers"
	"github.com/hrcopilot/server/internal/agent/repo"
	"github.com/hrcopilot/server/internal/docqa"
	"github.com/hrcopilot/server/internal/escalation"
	"github.com/hrcopilot/server/internal/knowledge"
	"github.com/hrcopilot/server/internal/transport/httpapi"
	logx "github.com/hrcopilot/server/pkg/logger"
)

const (
	PolicySourceID   = "policy_index"
	DocumentSourceID = "document_index"
)

// Container owns every long-lived collaborator. The compiled graph is built
// once here and injected into the transport.
type Container struct {
	Copilot   graph.Runner
	DocQA     *docqa.Agent
	Escalator *escalation.Escalator
	Tickets   *escalation.MemorySink
	Sessions  *conversations.SessionManager

	cfg     *Config
	closers []func()
}

// NewContainer connects the configured backends and builds both agents.
// Backends that are not configured fall back to an empty in-memory index.
func NewContainer(ctx context.Context, cfg *Config) (*Container, error) {
	c := &Container{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	docQAModel := cfg.DocQA.ModelConfig()
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Synthesizer: &cfg.Synthesizer,
		DocQA:       &docQAModel,
	})
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg, cms)
	if err != nil {
		return nil, err
	}

	policySource, err := c.newPolicySource(ctx, embedder)
	if err != nil {
		return nil, err
	}
	documentSource, err := c.newDocumentSource(embedder)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(cfg.Retrieval.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("create retriever pool: %w", err)
	}
	c.closers = append(c.closers, pool.Release)

	set, err := retrievers.NewSet(pool,
		retrievers.New(policySource, cfg.Retrieval.TopK),
		retrievers.New(documentSource, cfg.Retrieval.TopK),
	)
	if err != nil {
		return nil, err
	}

	c.Copilot, err = graph.BuildResponseGraph(ctx, graph.Config{
		ChatModel:      cms.Synthesizer,
		ChatModelName:  cms.SynthesizerModelName,
		Retrievers:     set,
		ResponsePrompt: cfg.Prompt,
		Callbacks:      true,
	})
	if err != nil {
		return nil, err
	}

	c.DocQA, err = docqa.New(ctx, docqa.Config{
		Source:    documentSource,
		ChatModel: cms.DocQA,
		TopK:      cfg.DocQA.TopK,
		Callbacks: true,
	})
	if err != nil {
		return nil, err
	}

	if err := c.setupSessions(ctx); err != nil {
		return nil, err
	}
	if err := c.setupEscalation(); err != nil {
		return nil, err
	}

	ok = true
	return c, nil
}

// Router returns the HTTP handler tree for the container.
func (c *Container) Router() (*mux.Router, error) {
	deps := httpapi.Deps{
		Copilot:        c.Copilot,
		DocQA:          c.DocQA,
		Escalator:      c.Escalator,
		Sessions:       c.Sessions,
		RequestTimeout: c.cfg.RequestTimeout,
	}
	if c.Tickets != nil {
		deps.Tickets = c.Tickets
	}
	return httpapi.NewRouter(deps)
}

// Close releases pools and connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func newEmbedder(cfg *Config, cms *nodes.ChatModels) (knowledge.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "", "gemini":
		return knowledge.NewGeminiEmbedder(cms.Client, cfg.Embedding.Model), nil
	case "openai":
		e, err := knowledge.NewOpenAIEmbedder(cfg.Embedding.OpenAIBaseURL, cfg.Embedding.OpenAIToken, cfg.Embedding.Model)
		if err != nil {
			return nil, fmt.Errorf("create openai embedder: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", cfg.Embedding.Provider)
	}
}

func (c *Container) newPolicySource(ctx context.Context, embedder knowledge.Embedder) (knowledge.Source, error) {
	var index knowledge.VectorIndex
	if c.cfg.PolicyDB.Enabled() {
		pool, err := c.cfg.PolicyDB.New(ctx)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		index = knowledge.NewPGVectorIndex(pool, c.cfg.PolicyTable)
		logx.Info().Str("table", c.cfg.PolicyTable).Msg("Policy index backed by pgvector")
	} else {
		index = knowledge.NewMemoryIndex()
		logx.Warn().Msg("POLICY_DATABASE_URL not set; policy index is empty")
	}
	return knowledge.NewVectorSource(PolicySourceID, embedder, index)
}

func (c *Container) newDocumentSource(embedder knowledge.Embedder) (knowledge.Source, error) {
	var index knowledge.VectorIndex
	if c.cfg.Documents.URL != "" {
		index = knowledge.NewQdrantIndex(knowledge.QdrantConfig{
			URL:        c.cfg.Documents.URL,
			APIKey:     c.cfg.Documents.APIKey,
			Collection: c.cfg.Documents.Collection,
			TextField:  c.cfg.Documents.TextField,
		})
		logx.Info().Str("collection", c.cfg.Documents.Collection).Msg("Document index backed by Qdrant")
	} else {
		index = knowledge.NewMemoryIndex()
		logx.Warn().Msg("QDRANT_URL not set; document index is empty")
	}
	return knowledge.NewVectorSource(DocumentSourceID, embedder, index)
}

func (c *Container) setupSessions(ctx context.Context) error {
	if !c.cfg.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set; session history disabled")
		return nil
	}

	ttl, err := time.ParseDuration(c.cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL '%s': %w", c.cfg.Session.TTL, err)
	}

	rdb, err := c.cfg.Redis.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialise Redis client: %w", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	c.Sessions = conversations.NewSessionManager(repo.NewRedisConversationRepository(rdb, ttl))
	logx.Info().Dur("ttl", ttl).Msg("Session history enabled")
	return nil
}

func (c *Container) setupEscalation() error {
	if !c.cfg.Escalation.Enabled {
		return nil
	}
	ttl, err := time.ParseDuration(c.cfg.Escalation.TicketTTL)
	if err != nil {
		return fmt.Errorf("invalid ESCALATION_TICKET_TTL '%s': %w", c.cfg.Escalation.TicketTTL, err)
	}
	c.Tickets = escalation.NewMemorySink(ttl)
	c.Escalator = escalation.NewEscalator(c.Tickets, 5*time.Second)
	return nil
}
