package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"labrag/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// The collection uses Euclid distance and point ids are insertion positions.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu        sync.Mutex
	dimension int
	count     int
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init recreates the collection so positions start at zero.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	if err := s.dropCollection(ctx); err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Euclid",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(), body, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.dimension = dimension
	s.count = 0
	s.mu.Unlock()
	return nil
}

func (s *Storage) Add(ctx context.Context, vectors [][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("storage not initialized")
	}
	points := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		points[i] = map[string]any{
			"id":      s.count + i,
			"vector":  v,
			"payload": map[string]any{"position": s.count + i},
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil); err != nil {
		return err
	}
	s.count += len(vectors)
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, k int) ([]domain.Neighbor, error) {
	if k <= 0 {
		k = 1
	}
	req := map[string]any{
		"vector": vector,
		"limit":  k,
	}
	var resp struct {
		Result []struct {
			ID    uint64  `json:"id"`
			Score float64 `json:"score"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.Neighbor, 0, len(resp.Result))
	for _, r := range resp.Result {
		// For Euclid collections the score is the distance.
		results = append(results, domain.Neighbor{Index: int(r.ID), Distance: r.Score})
	}
	return results, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := s.dropCollection(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.dimension = 0
	s.count = 0
	s.mu.Unlock()
	return nil
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Storage) dropCollection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.collectionURL(), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE %s failed: %s", s.collectionURL(), resp.Status)
	}
	return nil
}

func (s *Storage) do(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Storage) setHeaders(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}
