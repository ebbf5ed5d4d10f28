package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/arturoeanton/go-code-context/internal/port"
)

// Embedder is a test double for port.Embedder. Behavior can be overridden
// via function fields; the default produces deterministic hash-derived
// vectors so identical text always embeds identically.
type Embedder struct {
	Model     string
	Dimension int

	EmbedFunc      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu         sync.Mutex
	BatchSizes []int
	Calls      int
}

// NewEmbedder creates a mock embedder with default deterministic behavior.
func NewEmbedder() *Embedder {
	return &Embedder{Model: "mock-embed", Dimension: 8}
}

func (m *Embedder) ModelName() string { return m.Model }

func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return deterministicVector(text, m.Dimension), nil
}

func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.Calls++
	m.BatchSizes = append(m.BatchSizes, len(texts))
	m.mu.Unlock()

	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, m.Dimension)
	}
	return vectors, nil
}

// ChunkStore is a test double for port.ChunkStore. Inserted batches are
// copied so later reuse of the caller's slice cannot corrupt assertions.
type ChunkStore struct {
	InsertFunc func(ctx context.Context, chunks []domain.Chunk) error
	SearchFunc func(ctx context.Context, vector []float32, limit int) ([]domain.SimilarChunk, error)

	mu       sync.Mutex
	Inserted [][]domain.Chunk
}

func (m *ChunkStore) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, chunks)
	}
	cpy := make([]domain.Chunk, len(chunks))
	copy(cpy, chunks)
	m.mu.Lock()
	m.Inserted = append(m.Inserted, cpy)
	m.mu.Unlock()
	return nil
}

func (m *ChunkStore) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]domain.SimilarChunk, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, vector, limit)
	}
	return nil, nil
}

// InsertedChunks flattens all inserted batches.
func (m *ChunkStore) InsertedChunks() []domain.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Chunk
	for _, batch := range m.Inserted {
		all = append(all, batch...)
	}
	return all
}

// VCS is a test double for port.VCSProvider. CloneFunc typically populates
// the destination directory with fixture files.
type VCS struct {
	CloneFunc    func(ctx context.Context, url, dest string) error
	MetadataFunc func(ctx context.Context, repoPath string) (domain.RepoMetadata, error)
}

func (m *VCS) Clone(ctx context.Context, url, dest string) error {
	if m.CloneFunc != nil {
		return m.CloneFunc(ctx, url, dest)
	}
	return nil
}

func (m *VCS) Metadata(ctx context.Context, repoPath string) (domain.RepoMetadata, error) {
	if m.MetadataFunc != nil {
		return m.MetadataFunc(ctx, repoPath)
	}
	return domain.RepoMetadata{RepoName: "fixture", CommitHash: "deadbeef"}, nil
}

// Notifier is a test double for port.Notifier recording every completion.
type Notifier struct {
	NotifyFunc func(ctx context.Context, c port.Completion) error

	mu          sync.Mutex
	Completions []port.Completion
}

func (m *Notifier) NotifyCompletion(ctx context.Context, c port.Completion) error {
	m.mu.Lock()
	m.Completions = append(m.Completions, c)
	m.mu.Unlock()

	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, c)
	}
	return nil
}

// Sent returns a snapshot of recorded completions.
func (m *Notifier) Sent() []port.Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]port.Completion, len(m.Completions))
	copy(out, m.Completions)
	return out
}

// deterministicVector derives a unit-independent vector from the FNV hash
// of the text.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, dim)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(seed%2000)/1000 - 1
	}
	return vec
}
