package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.vec, s.err
}

func TestMemoryIndex_SearchRanksByCosine(t *testing.T) {
	idx := NewMemoryIndex(
		Document{Text: "leave", Vector: []float32{1, 0, 0}},
		Document{Text: "salary", Vector: []float32{0, 1, 0}},
		Document{Text: "mixed", Vector: []float32{0.7, 0.7, 0}},
	)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "leave", hits[0].Text)
	assert.Equal(t, "mixed", hits[1].Text)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestMemoryIndex_EmptyAndCancelled(t *testing.T) {
	idx := NewMemoryIndex()
	hits, err := idx.Search(context.Background(), []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Search(ctx, []float32{1}, 3)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Error(t, idx.Upsert(Document{Text: "no vector"}))
}

func TestVectorSource_Search(t *testing.T) {
	idx := NewMemoryIndex(Document{Text: "Employees get 20 days annual leave.", Vector: []float32{1, 0}})

	src, err := NewVectorSource("policy_index", &stubEmbedder{vec: []float32{1, 0}}, idx)
	require.NoError(t, err)
	assert.Equal(t, "policy_index", src.Name())

	hits, err := src.Search(context.Background(), "leave", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Employees get 20 days annual leave.", hits[0].Text)
}

func TestVectorSource_Errors(t *testing.T) {
	_, err := NewVectorSource("x", nil, NewMemoryIndex())
	assert.ErrorIs(t, err, ErrEmbedderRequired)
	_, err = NewVectorSource("x", &stubEmbedder{}, nil)
	assert.ErrorIs(t, err, ErrIndexRequired)

	boom := errors.New("401 unauthorized")
	src, err := NewVectorSource("x", &stubEmbedder{err: boom}, NewMemoryIndex())
	require.NoError(t, err)
	_, err = src.Search(context.Background(), "q", 1)
	assert.ErrorIs(t, err, boom)

	src, err = NewVectorSource("x", &stubEmbedder{vec: []float32{}}, NewMemoryIndex())
	require.NoError(t, err)
	_, err = src.Search(context.Background(), "q", 1)
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

func TestQdrantIndex_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/hr_docs/points/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 2, body["limit"])

		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"text":"Remote work requires manager approval.","doc":"handbook.pdf"}},
			{"score":0.40,"payload":{"doc":"empty.pdf"}}
		]}`))
	}))
	defer srv.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: srv.URL + "/", APIKey: "secret", Collection: "hr_docs"})
	hits, err := idx.Search(context.Background(), []float32{0.1, 0.2}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Remote work requires manager approval.", hits[0].Text)
	assert.Equal(t, "handbook.pdf", hits[0].Metadata["doc"])
}

func TestQdrantIndex_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: srv.URL, Collection: "hr_docs"})
	_, err := idx.Search(context.Background(), []float32{0.1}, 1)
	assert.ErrorContains(t, err, "503")
}
