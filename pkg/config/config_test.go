package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "openai", cfg.EmbeddingProvider)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.EmbeddingDimension)
	assert.Equal(t, 4, cfg.IngestWorkers)
	assert.True(t, cfg.MCPEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("EMBEDDING_PROVIDER", "ollama")
	t.Setenv("EMBEDDING_DIMENSION", "1024")
	t.Setenv("MCP_ENABLED", "false")
	t.Setenv("INGEST_WORKERS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ollama", cfg.EmbeddingProvider)
	assert.Equal(t, 1024, cfg.EmbeddingDimension)
	assert.False(t, cfg.MCPEnabled)
	assert.Equal(t, 4, cfg.IngestWorkers) // unparsable falls back to default
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "openai without api key",
			mutate:  func(c *Config) { c.OpenAIAPIKey = "" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.EmbeddingProvider = "carrier-pigeon" },
			wantErr: "EMBEDDING_PROVIDER",
		},
		{
			name:   "ollama needs no key",
			mutate: func(c *Config) { c.EmbeddingProvider = "ollama"; c.OpenAIAPIKey = "" },
		},
		{
			name:   "valid openai",
			mutate: func(*Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				DatabaseURL:       "postgres://localhost/ctx",
				EmbeddingProvider: "openai",
				OpenAIAPIKey:      "sk-test",
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
