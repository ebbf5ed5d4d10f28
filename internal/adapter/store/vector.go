package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// ChunkStore handles pgvector operations on the code_chunks table.
type ChunkStore struct {
	store *PostgresStore
}

// NewChunkStore creates a chunk store backed by the given Postgres store.
func NewChunkStore(store *PostgresStore) *ChunkStore {
	return &ChunkStore{store: store}
}

// InsertChunks persists a batch of embedded chunks in one transaction.
// The batch is all-or-nothing: any insert failure rolls back the whole batch.
func (c *ChunkStore) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO code_chunks (file_path, content, embedding, metadata)
		 VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, ch := range chunks {
		meta, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			ch.FilePath, ch.Content, pgvector.NewVector(ch.Vector), meta,
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	return tx.Commit()
}

// SearchSimilar performs a cosine similarity search over stored chunks,
// returning at most limit rows ordered by descending similarity.
func (c *ChunkStore) SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]domain.SimilarChunk, error) {
	query := `SELECT id, file_path, content,
	                 1 - (embedding <=> $1) AS similarity
	          FROM code_chunks
	          ORDER BY embedding <=> $1
	          LIMIT $2`

	rows, err := c.store.db.QueryContext(ctx, query, pgvector.NewVector(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []domain.SimilarChunk
	for rows.Next() {
		var sc domain.SimilarChunk
		if err := rows.Scan(&sc.ID, &sc.FilePath, &sc.Content, &sc.Similarity); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}
