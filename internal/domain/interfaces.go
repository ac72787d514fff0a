package domain

import (
	"context"
	"io"
)

// ReferenceEntry is one fixed (test name, normal range) pair.
type ReferenceEntry struct {
	Test  string
	Range string
}

// Format renders the entry the way it is embedded and shown to the model.
func (e ReferenceEntry) Format() string {
	return e.Test + ": " + e.Range
}

// LabValue is a single numeric value found in a report.
type LabValue struct {
	Test  string
	Value string
}

// LabValues holds extracted values in reference order, at most one per test.
type LabValues []LabValue

// Get returns the value for test and whether it was found.
func (l LabValues) Get(test string) (string, bool) {
	for _, v := range l {
		if v.Test == test {
			return v.Value, true
		}
	}
	return "", false
}

// Map returns the values keyed by test name.
func (l LabValues) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, v := range l {
		m[v.Test] = v.Value
	}
	return m
}

// Neighbor is a vector store hit: the insertion position of the stored
// vector and its Euclidean distance to the query.
type Neighbor struct {
	Index    int
	Distance float64
}

// Document is an uploaded report.
type Document struct {
	Name   string
	Reader io.ReaderAt
	Size   int64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// VectorStore holds vectors by insertion position and supports
// nearest-neighbour search by L2 distance.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Add(ctx context.Context, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, k int) ([]Neighbor, error)
	Clear(ctx context.Context) error
}

// TextExtractor produces the concatenated page text of a document.
type TextExtractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// LabExtractor finds lab values in document text.
type LabExtractor interface {
	Extract(text string) LabValues
}

// Completer sends a single-turn prompt to a hosted model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
