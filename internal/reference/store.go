// Package reference holds the fixed reference ranges and retrieves the one
// closest to a query by embedding distance.
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"labrag/internal/domain"
	"labrag/internal/logging"
)

// Store is the built, read-only reference index. Position i in the vector
// store corresponds to texts[i].
type Store struct {
	embedder domain.Embedder
	vectors  domain.VectorStore
	texts    []string
	logger   *log.Logger
}

// Build embeds every formatted entry and loads the vectors into vs.
// It runs once at startup; the returned Store is safe for concurrent reads.
func Build(ctx context.Context, embedder domain.Embedder, vs domain.VectorStore, entries []domain.ReferenceEntry) (*Store, error) {
	if len(entries) == 0 {
		return nil, errors.New("no reference entries")
	}
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Format()
	}
	if err := embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}
	vecs, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed references: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d references", len(vecs), len(texts))
	}
	dim := embedder.Dimension()
	if dim == 0 {
		dim = len(vecs[0])
	}
	if err := vs.Init(ctx, dim); err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	if err := vs.Add(ctx, vecs); err != nil {
		return nil, fmt.Errorf("load reference vectors: %w", err)
	}
	logger := logging.Logger(logging.SourceRetrieval)
	logger.Info("reference store built", "entries", len(texts), "dimension", dim, "embedder", embedder.Name())
	return &Store{embedder: embedder, vectors: vs, texts: texts, logger: logger}, nil
}

// Retrieve returns the reference string closest to query. No distance
// threshold is applied: a poor match still returns the nearest entry.
func (s *Store) Retrieve(ctx context.Context, query string) (string, error) {
	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", wrapService(err)
	}
	if len(vecs) != 1 {
		return "", fmt.Errorf("%w: embedder returned %d vectors for one query", domain.ErrService, len(vecs))
	}
	hits, err := s.vectors.Search(ctx, vecs[0], 1)
	if err != nil {
		return "", wrapService(err)
	}
	if len(hits) == 0 {
		return "", fmt.Errorf("%w: reference index returned no results", domain.ErrService)
	}
	idx := hits[0].Index
	if idx < 0 || idx >= len(s.texts) {
		return "", fmt.Errorf("%w: reference position %d out of range", domain.ErrService, idx)
	}
	s.logger.Debug("retrieved reference", "query", query, "position", idx, "distance", hits[0].Distance)
	return s.texts[idx], nil
}

// Texts returns the formatted reference strings in index order.
func (s *Store) Texts() []string {
	return append([]string(nil), s.texts...)
}

func wrapService(err error) error {
	if errors.Is(err, domain.ErrService) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrService, err)
}
