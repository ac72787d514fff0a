package main

import (
	"context"
	"fmt"
	"time"

	"labrag/internal/answer"
	"labrag/internal/completion"
	"labrag/internal/config"
	"labrag/internal/domain"
	"labrag/internal/embedding/openai"
	"labrag/internal/embedding/tfidf"
	"labrag/internal/labs"
	"labrag/internal/logging"
	"labrag/internal/pdftext"
	"labrag/internal/reference"
	"labrag/internal/service"
	"labrag/internal/vectorstore/memory"
	"labrag/internal/vectorstore/qdrant"
)

// buildService assembles the components selected by cfg and builds the
// reference index. A missing completion credential aborts startup.
func buildService(ctx context.Context, cfg *config.AppConfig) (*service.ReportService, error) {
	key, err := config.CompletionAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	vs, err := newVectorStore(cfg)
	if err != nil {
		return nil, err
	}

	entries := reference.DefaultEntries()
	refs, err := reference.Build(ctx, emb, vs, entries)
	if err != nil {
		return nil, fmt.Errorf("build reference store: %w", err)
	}

	llm := completion.NewClient(completion.Config{
		APIKey:  key,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Timeout: cfg.Completion.Timeout(),
	})
	logging.Logger(logging.SourceApp).Info("components ready",
		"embedder", emb.Name(),
		"vector_store", cfg.VectorStore.Type,
		"model", llm.Model(),
	)

	return service.NewReportService(
		pdftext.NewExtractor(),
		labs.NewExtractor(reference.TestNames(entries)),
		refs,
		answer.NewGenerator(llm),
	), nil
}

func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		key, err := config.EmbedderAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		o := cfg.Embedder.OpenAI
		return openai.NewClient(openai.Config{
			BaseURL: o.BaseURL,
			APIKey:  key,
			Model:   o.Model,
			Timeout: time.Duration(o.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedder %q", domain.ErrConfiguration, cfg.Embedder.Type)
	}
}

func newVectorStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		if q == nil {
			return nil, fmt.Errorf("%w: qdrant config missing", domain.ErrConfiguration)
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store %q", domain.ErrConfiguration, cfg.VectorStore.Type)
	}
}
