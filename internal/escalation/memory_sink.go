package escalation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Ticket is a stored escalation.
type Ticket struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemorySink keeps tickets in process memory until they expire.
type MemorySink struct {
	cache *cache.Cache
}

func NewMemorySink(ttl time.Duration) *MemorySink {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemorySink{
		cache: cache.New(ttl, ttl/4),
	}
}

func (s *MemorySink) CreateTicket(ctx context.Context, description string, priority Priority) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t := &Ticket{
		ID:          uuid.NewString(),
		Description: description,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}
	s.cache.Set(t.ID, t, cache.DefaultExpiration)
	return t.ID, nil
}

func (s *MemorySink) Get(id string) (*Ticket, bool) {
	if x, found := s.cache.Get(id); found {
		t := *x.(*Ticket)
		return &t, true
	}
	return nil, false
}

var _ Sink = (*MemorySink)(nil)
