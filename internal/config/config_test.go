package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Completion.BaseURL)
	assert.Equal(t, "GROQ_API_KEY", cfg.Completion.APIKeyEnv)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Completion.Model)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAppliesSectionDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
embedder:
  type: openai
  openai:
    model: nomic-embed-text
vector_store:
  type: qdrant
  qdrant:
    collection: refs
completion:
  model: llama-3.3-70b-versatile
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)

	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "refs", cfg.VectorStore.Qdrant.Collection)
	assert.Equal(t, "http://localhost:6333", cfg.VectorStore.Qdrant.URL)

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Completion.Model)
	assert.Zero(t, cfg.Completion.TimeoutSecs)
	assert.Zero(t, cfg.Completion.Timeout())
	assert.NoError(t, cfg.Validate())
}

func TestCompletionTimeoutOnlyWhenSet(t *testing.T) {
	assert.Zero(t, defaultConfig().Completion.Timeout())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completion:\n  timeout_secs: 45\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Completion.Timeout())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Logging.File = "/tmp/labrag.log"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*AppConfig) {}},
		{name: "unknown embedder", mutate: func(c *AppConfig) { c.Embedder.Type = "bert" }, wantErr: true},
		{name: "openai without section", mutate: func(c *AppConfig) { c.Embedder.Type = "openai" }, wantErr: true},
		{name: "unknown store", mutate: func(c *AppConfig) { c.VectorStore.Type = "faiss" }, wantErr: true},
		{name: "qdrant without section", mutate: func(c *AppConfig) { c.VectorStore.Type = "qdrant" }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompletionAPIKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Completion.APIKeyEnv = "LABRAG_TEST_COMPLETION_KEY"

	t.Setenv("LABRAG_TEST_COMPLETION_KEY", "")
	_, err := CompletionAPIKey(cfg)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	t.Setenv("LABRAG_TEST_COMPLETION_KEY", "gsk-test")
	key, err := CompletionAPIKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gsk-test", key)
}

func TestEmbedderAPIKey(t *testing.T) {
	cfg := defaultConfig()
	_, err := EmbedderAPIKey(cfg)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{APIKeyEnv: "LABRAG_TEST_EMBED_KEY"}
	t.Setenv("LABRAG_TEST_EMBED_KEY", "sk-test")
	key, err := EmbedderAPIKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}
