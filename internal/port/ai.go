package port

import "context"

// Embedder abstracts the embedding-generation backend.
// Implementations can target OpenAI, Ollama, or any compatible API.
type Embedder interface {
	// ModelName returns the identifier of the embedding model in use.
	ModelName() string

	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The response order matches the input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
