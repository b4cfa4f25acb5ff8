package retrievers

import (
	"context"
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/hrcopilot/server/internal/agent/model"
	logx "github.com/hrcopilot/server/pkg/logger"
)

var ErrNoRetrievers = errors.New("at least one retriever is required")

// Set runs a fixed, ordered list of retrievers. Output order is configuration
// order, never completion order.
type Set struct {
	retrievers []*Retriever
	pool       *ants.Pool
}

// NewSet builds a Set. A nil pool runs retrievers one after another.
func NewSet(pool *ants.Pool, retrievers ...*Retriever) (*Set, error) {
	if len(retrievers) == 0 {
		return nil, ErrNoRetrievers
	}
	return &Set{retrievers: retrievers, pool: pool}, nil
}

// Len is the number of configured retrievers.
func (s *Set) Len() int {
	return len(s.retrievers)
}

// IDs returns the source ids in configured order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.retrievers))
	for i, r := range s.retrievers {
		ids[i] = r.ID()
	}
	return ids
}

// RetrieveAll runs every retriever and waits for all of them.
// The result always has one entry per retriever.
func (s *Set) RetrieveAll(ctx context.Context, query string) []model.Retrieved {
	out := make([]model.Retrieved, len(s.retrievers))

	var wg sync.WaitGroup
	for i, r := range s.retrievers {
		out[i].SourceID = r.ID()
		task := func() {
			defer wg.Done()
			out[i].Text = r.Retrieve(ctx, query)
		}

		wg.Add(1)
		if s.pool == nil {
			task()
			continue
		}
		if err := s.pool.Submit(task); err != nil {
			logx.Warn().Err(err).Str("source", r.ID()).Msg("Retriever pool rejected task; running inline")
			task()
		}
	}
	wg.Wait()

	return out
}
