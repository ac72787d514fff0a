package reference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
	"labrag/internal/embedding/tfidf"
	"labrag/internal/vectorstore/memory"
)

func buildDefault(t *testing.T) *Store {
	t.Helper()
	s, err := Build(context.Background(), tfidf.NewEmbedder(), memory.NewStorage(), DefaultEntries())
	require.NoError(t, err)
	return s
}

func TestDefaultEntries(t *testing.T) {
	entries := DefaultEntries()
	require.Len(t, entries, 5)
	assert.Equal(t, []string{"Hemoglobin", "Cholesterol", "WBC", "Platelets", "Blood Sugar"}, TestNames(entries))
}

func TestRetrieveSelfSimilarity(t *testing.T) {
	s := buildDefault(t)
	for _, name := range TestNames(DefaultEntries()) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Retrieve(context.Background(), name)
			require.NoError(t, err)
			assert.Contains(t, got, name)
		})
	}
}

func TestRetrieveHemoglobin(t *testing.T) {
	s := buildDefault(t)
	got, err := s.Retrieve(context.Background(), "Hemoglobin")
	require.NoError(t, err)
	assert.Equal(t, "Hemoglobin: 13.5-17.5 g/dL for men, 12.0-15.5 g/dL for women", got)
}

func TestRetrieveIsDeterministic(t *testing.T) {
	s := buildDefault(t)
	a, err := s.Retrieve(context.Background(), "Platelets")
	require.NoError(t, err)
	b, err := s.Retrieve(context.Background(), "Platelets")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRetrieveAlwaysReturnsAResult(t *testing.T) {
	s := buildDefault(t)
	got, err := s.Retrieve(context.Background(), "ferritin")
	require.NoError(t, err)
	assert.Contains(t, s.Texts(), got)
}

func TestBuildRejectsEmptyEntries(t *testing.T) {
	_, err := Build(context.Background(), tfidf.NewEmbedder(), memory.NewStorage(), nil)
	assert.Error(t, err)
}

type failingEmbedder struct {
	prepared bool
	err      error
}

func (f *failingEmbedder) Name() string  { return "failing" }
func (f *failingEmbedder) Dimension() int { return 1 }

func (f *failingEmbedder) Prepare([]string) error {
	f.prepared = true
	return nil
}

func (f *failingEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{float64(i)}
	}
	return out, nil
}

func TestBuildPropagatesEmbedError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(context.Background(), &failingEmbedder{err: boom}, memory.NewStorage(), DefaultEntries())
	assert.ErrorIs(t, err, boom)
}

func TestRetrieveWrapsServiceErrors(t *testing.T) {
	emb := &failingEmbedder{}
	s, err := Build(context.Background(), emb, memory.NewStorage(), DefaultEntries())
	require.NoError(t, err)
	assert.True(t, emb.prepared)

	emb.err = errors.New("connection refused")
	_, err = s.Retrieve(context.Background(), "WBC")
	assert.ErrorIs(t, err, domain.ErrService)
}
