package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./docent_db", cfg.Database.Path)
	assert.Equal(t, "embeddinggemma", cfg.AI.EmbeddingModel)
	assert.Equal(t, 2000, cfg.Generation.MaxTokens)
	assert.True(t, cfg.SearchAllFallback())
	assert.Equal(t, float32(-1), cfg.SimilarityFloor())
}

func TestLoadAppliesFileValues(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/kb
ai:
  host: http://models.internal:8080
  embedding_model: text-embedding-3-small
  generator_model: claude-sonnet-4-5
  api_key: secret
chunking:
  max_tokens: 256
  overlap_tokens: 25
retrieval:
  top_k: 8
  similarity_floor: 0.45
  search_all_fallback: false
generation:
  temperature: 0.7
  max_tokens: 1000
ingestion:
  workers: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/kb", cfg.Database.Path)
	assert.Equal(t, 256, cfg.Chunking.MaxTokens)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.False(t, cfg.SearchAllFallback())
	assert.InDelta(t, 0.45, float64(cfg.SimilarityFloor()), 1e-6)
	assert.Equal(t, 2, cfg.Ingestion.Workers)

	aiCfg := cfg.AIServiceConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://models.internal:8080/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", aiCfg.EmbeddingModel)
	assert.Equal(t, "claude-sonnet-4-5", aiCfg.GeneratorModel)
	assert.Equal(t, "secret", aiCfg.APIKey)
	assert.Equal(t, 0.7, aiCfg.Temperature)
	assert.Equal(t, 1000, aiCfg.MaxTokens)
}

func TestLoadZeroFloorDisablesCutoff(t *testing.T) {
	path := writeConfig(t, `
retrieval:
  similarity_floor: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0), cfg.SimilarityFloor())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "retrieval: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative top_k", func(c *Config) { c.Retrieval.TopK = -1 }},
		{"overlap at max", func(c *Config) {
			c.Chunking.MaxTokens = 100
			c.Chunking.OverlapTokens = 100
		}},
		{"floor above one", func(c *Config) {
			f := 1.5
			c.Retrieval.SimilarityFloor = &f
		}},
		{"negative workers", func(c *Config) { c.Ingestion.Workers = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})
}
