package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/docent/ai"
)

// DatabaseConfig locates the on-disk store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig configures the model services. Host is a shorthand that applies
// to every service whose own host is unset.
type AIConfig struct {
	Host           string `yaml:"host,omitempty"`
	EmbeddingHost  string `yaml:"embedding_host,omitempty"`
	ClassifierHost string `yaml:"classifier_host,omitempty"`
	GeneratorHost  string `yaml:"generator_host,omitempty"`

	EmbeddingModel  string `yaml:"embedding_model"`
	ClassifierModel string `yaml:"classifier_model"`
	GeneratorModel  string `yaml:"generator_model"`

	APIKey string `yaml:"api_key"`

	EmbeddingConcurrency       int     `yaml:"embedding_concurrency"`
	EmbeddingRequestsPerSecond float64 `yaml:"embedding_requests_per_second"`
}

// ChunkingConfig configures how parsed documents are split.
type ChunkingConfig struct {
	MaxTokens     int `yaml:"max_tokens"`
	OverlapTokens int `yaml:"overlap_tokens"`
}

// RetrievalConfig configures query-time chunk retrieval. SimilarityFloor and
// SearchAllFallback are pointers so an explicit zero or false survives the
// default pass: a floor of 0 disables the cutoff, and false rejects queries
// that select no documents instead of searching everything.
type RetrievalConfig struct {
	TopK              int      `yaml:"top_k"`
	SimilarityFloor   *float64 `yaml:"similarity_floor,omitempty"`
	SearchAllFallback *bool    `yaml:"search_all_fallback,omitempty"`
}

// GenerationConfig configures answer generation. Template overrides the
// built-in grounding instruction when set.
type GenerationConfig struct {
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"max_tokens"`
	Template    string   `yaml:"template,omitempty"`
}

// IngestionConfig configures the ingestion worker pool.
type IngestionConfig struct {
	Workers    int `yaml:"workers"`
	QueueDepth int `yaml:"queue_depth"`
}

// Config is the root configuration structure.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	AI         AIConfig         `yaml:"ai"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from the given path. A missing file returns defaults;
// a present but malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./docent_db"
	}

	defaults := ai.DefaultConfig()
	if cfg.AI.Host == "" && cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = defaults.EmbeddingHost
	}
	if cfg.AI.Host == "" && cfg.AI.ClassifierHost == "" {
		cfg.AI.ClassifierHost = defaults.ClassifierHost
	}
	if cfg.AI.Host == "" && cfg.AI.GeneratorHost == "" {
		cfg.AI.GeneratorHost = defaults.GeneratorHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = defaults.EmbeddingModel
	}
	if cfg.AI.ClassifierModel == "" {
		cfg.AI.ClassifierModel = defaults.ClassifierModel
	}
	if cfg.AI.GeneratorModel == "" {
		cfg.AI.GeneratorModel = defaults.GeneratorModel
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = defaults.APIKey
	}
	if cfg.AI.EmbeddingConcurrency == 0 {
		cfg.AI.EmbeddingConcurrency = defaults.EmbeddingConcurrency
	}
	if cfg.AI.EmbeddingRequestsPerSecond == 0 {
		cfg.AI.EmbeddingRequestsPerSecond = defaults.EmbeddingRequestsPerSecond
	}

	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = defaults.MaxTokens
	}
	if cfg.Generation.Temperature == nil {
		t := defaults.Temperature
		cfg.Generation.Temperature = &t
	}
}

// Validate checks for values the wiring cannot work with. Zero values that
// mean "use the component default" pass through untouched.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Chunking.MaxTokens < 0 {
		return errors.New("chunking.max_tokens must not be negative")
	}
	if c.Chunking.OverlapTokens < 0 {
		return errors.New("chunking.overlap_tokens must not be negative")
	}
	if c.Chunking.MaxTokens > 0 && c.Chunking.OverlapTokens >= c.Chunking.MaxTokens {
		return errors.New("chunking.overlap_tokens must be below chunking.max_tokens")
	}
	if c.Retrieval.TopK < 0 {
		return errors.New("retrieval.top_k must not be negative")
	}
	if c.Retrieval.SimilarityFloor != nil {
		if f := *c.Retrieval.SimilarityFloor; f < 0 || f > 1 {
			return errors.New("retrieval.similarity_floor must be between 0 and 1")
		}
	}
	if c.Ingestion.Workers < 0 {
		return errors.New("ingestion.workers must not be negative")
	}
	if c.Ingestion.QueueDepth < 0 {
		return errors.New("ingestion.queue_depth must not be negative")
	}
	return nil
}

// AIServiceConfig translates the file configuration into the ai package's
// validated configuration.
func (c *Config) AIServiceConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithClassifierModel(c.AI.ClassifierModel),
		ai.WithGeneratorModel(c.AI.GeneratorModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithMaxTokens(c.Generation.MaxTokens),
		ai.WithEmbeddingConcurrency(c.AI.EmbeddingConcurrency),
		ai.WithEmbeddingRequestsPerSecond(c.AI.EmbeddingRequestsPerSecond),
	}
	if c.AI.Host != "" {
		opts = append(opts, ai.WithHost(c.AI.Host))
	}
	if c.AI.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(c.AI.EmbeddingHost))
	}
	if c.AI.ClassifierHost != "" {
		opts = append(opts, ai.WithClassifierHost(c.AI.ClassifierHost))
	}
	if c.AI.GeneratorHost != "" {
		opts = append(opts, ai.WithGeneratorHost(c.AI.GeneratorHost))
	}
	if c.Generation.Temperature != nil {
		opts = append(opts, ai.WithTemperature(*c.Generation.Temperature))
	}
	return ai.NewConfig(opts...)
}

// SimilarityFloor returns the configured floor, or -1 to select the
// retriever default.
func (c *Config) SimilarityFloor() float32 {
	if c.Retrieval.SimilarityFloor == nil {
		return -1
	}
	return float32(*c.Retrieval.SimilarityFloor)
}

// SearchAllFallback reports whether a query that selects no documents
// searches every completed document. Defaults to true.
func (c *Config) SearchAllFallback() bool {
	if c.Retrieval.SearchAllFallback == nil {
		return true
	}
	return *c.Retrieval.SearchAllFallback
}
