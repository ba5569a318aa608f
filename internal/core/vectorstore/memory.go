package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docquery-ai/docquery/internal/models"
)

// MemoryStore is a brute-force cosine-similarity store, used as the local
// development backend and as the store double in tests. No persistence.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string][]models.VectorRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{namespaces: make(map[string][]models.VectorRecord)}
}

func (s *MemoryStore) Reset(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, namespace string, records []models.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.namespaces[namespace]
	for _, rec := range records {
		replaced := false
		for i := range existing {
			if existing[i].ID == rec.ID {
				existing[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, rec)
		}
	}
	s.namespaces[namespace] = existing
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]models.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]models.Match, 0, topK)
	for _, rec := range s.namespaces[namespace] {
		if filter.SourceKey != "" && rec.SourceKey != filter.SourceKey {
			continue
		}
		matches = append(matches, models.Match{
			Score:      cosineScore(vector, rec.Values),
			Text:       rec.Text,
			PageNumber: rec.PageNumber,
			SourceKey:  rec.SourceKey,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryStore) Close() error { return nil }

// Count reports the number of records in a namespace. Test helper.
func (s *MemoryStore) Count(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace])
}

// cosineScore maps cosine similarity into [0,1]; negative similarity clamps
// to zero so scores stay comparable with the relevance threshold.
func cosineScore(a, b []float32) float64 {
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
	score := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
