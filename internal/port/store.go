package port

import (
	"context"

	"github.com/arturoeanton/go-code-context/internal/domain"
)

// ChunkStore abstracts the vector-storage backend for chunk records.
type ChunkStore interface {
	// InsertChunks persists a batch of embedded chunks atomically:
	// either every record in the batch is written, or none is.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// SearchSimilar returns at most limit chunks ordered by descending
	// cosine similarity to the query vector.
	SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]domain.SimilarChunk, error)
}
