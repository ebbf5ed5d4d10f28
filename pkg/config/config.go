package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string
	AppName string

	// Database
	DatabaseURL string

	// Embeddings
	EmbeddingProvider  string // "openai" or "ollama"
	EmbeddingModel     string
	EmbeddingDimension int
	OpenAIAPIKey       string
	OllamaBaseURL      string
	OllamaToken        string // Bearer token for Ollama Cloud (empty = local)

	// Notifications — edge function endpoint
	FunctionsBaseURL string
	FunctionsKey     string
	NotifyFunction   string

	// Ingestion
	IngestWorkers int

	// MCP
	MCPEnabled bool
	MCPPort    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envOrDefault("PORT", "3000"),
		AppName: envOrDefault("APP_NAME", "Code Context"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		EmbeddingProvider:  envOrDefault("EMBEDDING_PROVIDER", "openai"),
		EmbeddingModel:     envOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimension: envOrDefaultInt("EMBEDDING_DIMENSION", 1536),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OllamaBaseURL:      envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaToken:        os.Getenv("OLLAMA_TOKEN"),

		FunctionsBaseURL: os.Getenv("FUNCTIONS_BASE_URL"),
		FunctionsKey:     os.Getenv("FUNCTIONS_SERVICE_KEY"),
		NotifyFunction:   envOrDefault("NOTIFY_FUNCTION", "resend"),

		IngestWorkers: envOrDefaultInt("INGEST_WORKERS", 4),

		MCPEnabled: envOrDefaultBool("MCP_ENABLED", true),
		MCPPort:    envOrDefault("MCP_PORT", "3002"),
	}
}

// Validate checks that required credentials are present. Called once at
// startup; a failure here aborts the process before any server starts.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.EmbeddingProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	case "ollama":
		// local Ollama needs no credentials
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
