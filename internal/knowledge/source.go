// Package knowledge holds the external knowledge sources the copilot retrieves from.
//
// A Source answers a free-text query with ranked hits. The stock
// implementation composes an Embedder (query → vector) with a VectorIndex
// (vector → ranked hits); the index may be pgvector, Qdrant or in-memory.
package knowledge

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmbedderRequired = errors.New("knowledge: embedder is required")
	ErrIndexRequired    = errors.New("knowledge: vector index is required")
	ErrEmptyEmbedding   = errors.New("knowledge: embedder returned an empty vector")
)

// Hit is one ranked search result.
type Hit struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Source looks up supporting text for a query.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
}

// Embedder converts a query into a vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex ranks stored chunks by similarity to a vector.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, topK int) ([]Hit, error)
}

// VectorSource is a Source backed by an Embedder and a VectorIndex.
type VectorSource struct {
	name     string
	embedder Embedder
	index    VectorIndex
}

// NewVectorSource wires an embedder to an index under the given source name.
func NewVectorSource(name string, embedder Embedder, index VectorIndex) (*VectorSource, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	return &VectorSource{name: name, embedder: embedder, index: index}, nil
}

func (s *VectorSource) Name() string { return s.name }

// Search embeds the query and searches the index.
func (s *VectorSource) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: embed query: %w", s.name, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%s: %w", s.name, ErrEmptyEmbedding)
	}
	hits, err := s.index.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%s: search index: %w", s.name, err)
	}
	return hits, nil
}

var _ Source = (*VectorSource)(nil)
