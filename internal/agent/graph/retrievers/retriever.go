// Package retrievers wraps knowledge sources with the copilot's best-effort policy:
// a source that fails or finds nothing contributes a sentinel string instead of an error.
package retrievers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrcopilot/server/internal/knowledge"
	"github.com/hrcopilot/server/internal/metrics"
	logx "github.com/hrcopilot/server/pkg/logger"
)

const (
	// NotFoundSentinel stands in for a successful lookup with no result.
	NotFoundSentinel = "No relevant information found."
	// ErrorSentinel stands in for a failed lookup.
	ErrorSentinel = "Error retrieving information."
)

// IsSentinel reports whether text is one of the placeholder strings rather than content.
func IsSentinel(text string) bool {
	t := strings.TrimSpace(text)
	return t == NotFoundSentinel || t == ErrorSentinel
}

// Retriever looks up supporting text from exactly one knowledge source.
type Retriever struct {
	source knowledge.Source
	topK   int
}

func New(source knowledge.Source, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{source: source, topK: topK}
}

// ID is the source identifier recorded in the pipeline state.
func (r *Retriever) ID() string {
	return r.source.Name()
}

// Retrieve never fails: errors (and panics) inside the source become ErrorSentinel.
func (r *Retriever) Retrieve(ctx context.Context, query string) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().
				Str("source", r.ID()).
				Str("panic", fmt.Sprint(rec)).
				Msg("Retriever panicked; substituting error sentinel")
			metrics.RetrievalOutcomes.WithLabelValues(r.ID(), "error").Inc()
			text = ErrorSentinel
		}
	}()

	hits, err := r.source.Search(ctx, query, r.topK)
	if err != nil {
		logx.Warn().
			Err(err).
			Str("source", r.ID()).
			Msg("Retrieval failed; substituting error sentinel")
		metrics.RetrievalOutcomes.WithLabelValues(r.ID(), "error").Inc()
		return ErrorSentinel
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		if t := strings.TrimSpace(h.Text); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		logx.Debug().Str("source", r.ID()).Msg("No relevant information found")
		metrics.RetrievalOutcomes.WithLabelValues(r.ID(), "not_found").Inc()
		return NotFoundSentinel
	}

	logx.Debug().Str("source", r.ID()).Int("hits", len(parts)).Msg("Retrieved context")
	metrics.RetrievalOutcomes.WithLabelValues(r.ID(), "hit").Inc()
	return strings.Join(parts, "\n\n")
}
