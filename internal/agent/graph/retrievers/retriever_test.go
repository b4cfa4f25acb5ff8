package retrievers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrcopilot/server/internal/knowledge"
)

type fakeSource struct {
	name  string
	hits  []knowledge.Hit
	err   error
	panic bool
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, query string, topK int) ([]knowledge.Hit, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panic {
		panic("index exploded")
	}
	return f.hits, f.err
}

func TestRetriever_Retrieve(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		want   string
	}{
		{
			name:   "hit",
			source: &fakeSource{name: "policy_index", hits: []knowledge.Hit{{Text: "Employees get 20 days annual leave."}}},
			want:   "Employees get 20 days annual leave.",
		},
		{
			name: "multiple hits are joined",
			source: &fakeSource{name: "policy_index", hits: []knowledge.Hit{
				{Text: "First."}, {Text: "  "}, {Text: "Second."},
			}},
			want: "First.\n\nSecond.",
		},
		{
			name:   "no hits",
			source: &fakeSource{name: "document_index"},
			want:   NotFoundSentinel,
		},
		{
			name:   "only blank hits",
			source: &fakeSource{name: "document_index", hits: []knowledge.Hit{{Text: ""}}},
			want:   NotFoundSentinel,
		},
		{
			name:   "error",
			source: &fakeSource{name: "document_index", err: errors.New("401 unauthorized")},
			want:   ErrorSentinel,
		},
		{
			name:   "panic",
			source: &fakeSource{name: "document_index", panic: true},
			want:   ErrorSentinel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.source, 3)
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, r.Retrieve(context.Background(), "q"))
			})
		})
	}
}

func TestIsSentinel(t *testing.T) {
	assert.True(t, IsSentinel(NotFoundSentinel))
	assert.True(t, IsSentinel(" "+ErrorSentinel+"\n"))
	assert.False(t, IsSentinel("Employees get 20 days annual leave."))
	assert.NotEqual(t, NotFoundSentinel, ErrorSentinel)
}

func TestSet_RetrieveAllKeepsConfiguredOrder(t *testing.T) {
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	defer pool.Release()

	slow := &fakeSource{name: "policy_index", hits: []knowledge.Hit{{Text: "slow"}}, delay: 50 * time.Millisecond}
	failing := &fakeSource{name: "document_index", err: errors.New("timeout")}
	empty := &fakeSource{name: "faq_index"}

	set, err := NewSet(pool, New(slow, 1), New(failing, 1), New(empty, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"policy_index", "document_index", "faq_index"}, set.IDs())

	got := set.RetrieveAll(context.Background(), "leave")
	require.Len(t, got, set.Len())
	assert.Equal(t, "policy_index", got[0].SourceID)
	assert.Equal(t, "slow", got[0].Text)
	assert.Equal(t, "document_index", got[1].SourceID)
	assert.Equal(t, ErrorSentinel, got[1].Text)
	assert.Equal(t, "faq_index", got[2].SourceID)
	assert.Equal(t, NotFoundSentinel, got[2].Text)

	for _, s := range []*fakeSource{slow, failing, empty} {
		assert.EqualValues(t, 1, s.calls.Load())
	}
}

func TestSet_WithoutPool(t *testing.T) {
	set, err := NewSet(nil, New(&fakeSource{name: "a"}, 1))
	require.NoError(t, err)
	got := set.RetrieveAll(context.Background(), "q")
	require.Len(t, got, 1)
	assert.Equal(t, NotFoundSentinel, got[0].Text)
}

func TestNewSet_RequiresRetrievers(t *testing.T) {
	_, err := NewSet(nil)
	assert.ErrorIs(t, err, ErrNoRetrievers)
}
