package memory

import (
	"errors"
	"sort"
	"sync"

	"ytqa/internal/domain"
	"ytqa/internal/vectorstore"
)

// Store is an in-memory vector store using brute-force cosine similarity.
// It holds one video's chunks at a time; Init wipes previous state.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

func NewStore() *Store { return &Store{} }

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Store) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// SearchMMR scores every stored vector against the query, keeps the fetchK
// nearest, and re-ranks those with maximal marginal relevance.
func (s *Store) SearchMMR(vector []float64, topK, fetchK int, lambda float64) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 4
	}
	if fetchK < topK {
		fetchK = topK
	}

	idxs := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		idxs[i] = i
		scores[i] = vectorstore.Cosine(s.vectors[i], vector)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if fetchK > len(idxs) {
		fetchK = len(idxs)
	}

	candidates := make([]vectorstore.Candidate, 0, fetchK)
	for _, j := range idxs[:fetchK] {
		candidates = append(candidates, vectorstore.Candidate{
			Result: domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]},
			Vector: s.vectors[j],
		})
	}
	return vectorstore.MMR(vector, candidates, topK, lambda), nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}
