package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"labrag/internal/domain"
)

const (
	defaultGroqBaseURL    = "https://api.groq.com/openai/v1"
	defaultGroqKeyEnv     = "GROQ_API_KEY"
	defaultGroqModel      = "llama-3.1-8b-instant"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIKeyEnv   = "OPENAI_API_KEY"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultQdrantURL      = "http://localhost:6333"
	defaultQdrantName     = "lab_references"
	defaultTimeoutSecs    = 30
	defaultQdrantTimeout  = 15
	defaultLogLevel       = "info"
	userConfigDirName     = "labrag"
	defaultConfigFileName = "config.yaml"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// CompletionConfig configures the hosted completion endpoint. A zero
// TimeoutSecs leaves the client library's own timeout in place.
type CompletionConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

// LoggingConfig controls log level and destination.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Completion  CompletionConfig  `yaml:"completion"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Timeout returns the configured completion timeout, or zero when unset.
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/labrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/labrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(defaultConfigFileName); err == nil {
		cfg, err := Load(defaultConfigFileName)
		return cfg, defaultConfigFileName, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the component selectors.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "tfidf":
	case "openai":
		if c.Embedder.OpenAI == nil {
			return fmt.Errorf("%w: openai embedder config missing", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown embedder %q", domain.ErrConfiguration, c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil {
			return fmt.Errorf("%w: qdrant config missing", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown vector store %q", domain.ErrConfiguration, c.VectorStore.Type)
	}
	return nil
}

// CompletionAPIKey returns the completion service credential from the
// environment. A missing key is fatal to startup.
func CompletionAPIKey(cfg *AppConfig) (string, error) {
	return requireEnv(cfg.Completion.APIKeyEnv)
}

// EmbedderAPIKey returns the credential for the remote embedder.
func EmbedderAPIKey(cfg *AppConfig) (string, error) {
	if cfg.Embedder.OpenAI == nil {
		return "", fmt.Errorf("%w: openai embedder config missing", domain.ErrConfiguration)
	}
	return requireEnv(cfg.Embedder.OpenAI.APIKeyEnv)
}

func requireEnv(name string) (string, error) {
	key := os.Getenv(name)
	if key == "" {
		return "", fmt.Errorf("%w: missing API key in env %s", domain.ErrConfiguration, name)
	}
	return key, nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", userConfigDirName, defaultConfigFileName), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "memory"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = defaultOpenAIBaseURL
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = defaultOpenAIKeyEnv
		}
		if o.Model == "" {
			o.Model = defaultEmbeddingModel
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = defaultTimeoutSecs
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		q := cfg.VectorStore.Qdrant
		if q.URL == "" {
			q.URL = defaultQdrantURL
		}
		if q.Collection == "" {
			q.Collection = defaultQdrantName
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = defaultQdrantTimeout
		}
	}
	c := &cfg.Completion
	if c.BaseURL == "" {
		c.BaseURL = defaultGroqBaseURL
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = defaultGroqKeyEnv
	}
	if c.Model == "" {
		c.Model = defaultGroqModel
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
}
