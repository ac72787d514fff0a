package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"labrag/internal/domain"
)

// Storage is a flat in-memory vector index searched by brute-force L2 distance.
// Vectors are addressed by insertion position.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	return nil
}

func (s *Storage) Add(_ context.Context, vectors [][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("storage not initialized")
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, v := range vectors {
		s.vectors = append(s.vectors, append([]float64(nil), v...))
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, k int) ([]domain.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("query dimension mismatch")
	}
	if k <= 0 {
		k = 1
	}
	dists := make([]float64, len(s.vectors))
	for i := range s.vectors {
		dists[i] = squaredL2(s.vectors[i], vector)
	}
	idxs := argsortAsc(dists)
	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]domain.Neighbor, 0, k)
	for i := 0; i < k; i++ {
		j := idxs[i]
		results = append(results, domain.Neighbor{Index: j, Distance: math.Sqrt(dists[j])})
	}
	return results, nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	return nil
}

// Len returns the number of stored vectors.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func squaredL2(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// argsortAsc orders positions by distance; ties keep insertion order.
func argsortAsc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] < vals[idxs[b]] })
	return idxs
}
