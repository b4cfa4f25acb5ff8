package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
)

// Document is a pre-embedded chunk stored in a MemoryIndex.
type Document struct {
	Text   string
	Vector []float32
}

// MemoryIndex is an in-process vector index using brute-force cosine similarity.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []Document
}

func NewMemoryIndex(docs ...Document) *MemoryIndex {
	return &MemoryIndex{docs: append([]Document(nil), docs...)}
}

// Upsert appends documents to the index.
func (m *MemoryIndex) Upsert(docs ...Document) error {
	for _, d := range docs {
		if len(d.Vector) == 0 {
			return errors.New("document vector is empty")
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]Hit, 0, len(m.docs))
	for _, d := range m.docs {
		hits = append(hits, Hit{Text: d.Text, Score: cosine(d.Vector, vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ VectorIndex = (*MemoryIndex)(nil)
