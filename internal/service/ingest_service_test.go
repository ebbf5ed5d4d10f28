package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/arturoeanton/go-code-context/internal/ingest"
	"github.com/arturoeanton/go-code-context/internal/jobs"
	"github.com/arturoeanton/go-code-context/internal/metrics"
	"github.com/arturoeanton/go-code-context/internal/port"
	"github.com/arturoeanton/go-code-context/internal/port/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cloneFixture returns a CloneFunc that writes the given files (relative
// path -> content) into the clone destination.
func cloneFixture(files map[string]string) func(ctx context.Context, url, dest string) error {
	return func(_ context.Context, _ string, dest string) error {
		for rel, content := range files {
			full := filepath.Join(dest, rel)
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
				return err
			}
		}
		return nil
	}
}

func newTestService(t *testing.T, embedder *mock.Embedder, store *mock.ChunkStore, vcs *mock.VCS, notifier *mock.Notifier) *IngestService {
	t.Helper()
	s, err := NewIngestService(embedder, store, vcs, notifier, metrics.NoopRecorder{}, jobs.NewTracker(), 1)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

// contentWithChunks builds text that splits into exactly n chunks with the
// default window (1000) and overlap (100).
func contentWithChunks(n int) string {
	if n == 1 {
		return strings.Repeat("a", 500)
	}
	step := ingest.DefaultChunkSize - ingest.DefaultChunkOverlap
	return strings.Repeat("a", step*(n-1)+ingest.DefaultChunkSize-1)
}

func TestIngest_BatchFlushCounts(t *testing.T) {
	// 250 chunks with capacity 100 -> 3 embed calls (100, 100, 50) and
	// 3 inserts, each sized to match its call.
	embedder := mock.NewEmbedder()
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{CloneFunc: cloneFixture(map[string]string{
		"big.py": contentWithChunks(250),
	})}
	notifier := &mock.Notifier{}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/big.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	assert.Equal(t, []int{100, 100, 50}, embedder.BatchSizes)
	require.Len(t, store.Inserted, 3)
	for i, batch := range store.Inserted {
		assert.Len(t, batch, embedder.BatchSizes[i])
	}

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.JobSuccess, sent[0].Status)
	assert.Empty(t, sent[0].ErrorMessage)

	job, ok := s.tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, domain.JobSuccess, job.State)
}

func TestIngest_ChunkMetadataAttached(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{
		CloneFunc: cloneFixture(map[string]string{
			"pkg/util.go": "package util",
			"readme.md":   "# hello",
		}),
		MetadataFunc: func(context.Context, string) (domain.RepoMetadata, error) {
			return domain.RepoMetadata{RepoName: "myrepo", CommitHash: "abc123"}, nil
		},
	}
	notifier := &mock.Notifier{}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/myrepo.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	inserted := store.InsertedChunks()
	require.Len(t, inserted, 2)
	byPath := map[string]domain.Chunk{}
	for _, c := range inserted {
		byPath[c.FilePath] = c
		assert.Equal(t, "myrepo", c.Metadata.RepoName)
		assert.Equal(t, "abc123", c.Metadata.CommitHash)
		assert.Equal(t, "https://example.com/myrepo.git", c.Metadata.RepoURL)
		assert.NotNil(t, c.Vector)
	}
	assert.Equal(t, "go", byPath["pkg/util.go"].Metadata.Language)
	assert.Equal(t, "markdown", byPath["readme.md"].Metadata.Language)
}

func TestIngest_EmptyRepositorySucceeds(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{} // clone creates nothing
	notifier := &mock.Notifier{}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/empty.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	assert.Zero(t, embedder.Calls)
	assert.Empty(t, store.Inserted)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.JobSuccess, sent[0].Status)
}

func TestIngest_CloneFailure(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{CloneFunc: func(context.Context, string, string) error {
		return errors.New("repository not found")
	}}
	notifier := &mock.Notifier{}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/missing.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	assert.Zero(t, embedder.Calls)
	assert.Empty(t, store.Inserted)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.JobFailed, sent[0].Status)
	assert.Contains(t, sent[0].ErrorMessage, "clone")

	job, _ := s.tracker.Get(id)
	assert.Equal(t, domain.JobFailed, job.State)
}

func TestIngest_EmbedFailureAbortsJob(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedBatchFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("rate limited")
	}
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{CloneFunc: cloneFixture(map[string]string{"a.go": "package a"})}
	notifier := &mock.Notifier{}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/a.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	assert.Empty(t, store.Inserted)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.JobFailed, sent[0].Status)
	assert.Contains(t, sent[0].ErrorMessage, "rate limited")
}

func TestIngest_InsertFailureAbortsJob(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := &mock.ChunkStore{InsertFunc: func(context.Context, []domain.Chunk) error {
		return errors.New("connection reset")
	}}
	vcs := &mock.VCS{CloneFunc: cloneFixture(map[string]string{"a.go": "package a"})}
	notifier := &mock.Notifier{}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/a.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.JobFailed, sent[0].Status)
	assert.Contains(t, sent[0].ErrorMessage, "connection reset")
}

func TestIngest_NotifierFailureKeepsJobOutcome(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{CloneFunc: cloneFixture(map[string]string{"a.go": "package a"})}
	notifier := &mock.Notifier{NotifyFunc: func(context.Context, port.Completion) error {
		return errors.New("smtp down")
	}}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/a.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	job, _ := s.tracker.Get(id)
	assert.Equal(t, domain.JobSuccess, job.State)
	assert.Len(t, notifier.Sent(), 1)
}

func TestIngest_VectorCountMismatchFailsBatch(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedBatchFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		return make([][]float32, len(texts)-1), nil
	}
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{CloneFunc: cloneFixture(map[string]string{"a.go": "package a", "b.go": "package b"})}
	notifier := &mock.Notifier{}

	s := newTestService(t, embedder, store, vcs, notifier)
	req := domain.IngestRequest{RepoURL: "https://example.com/ab.git", UserEmail: "dev@example.com"}
	id := s.tracker.Create(req)
	s.run(context.Background(), id, req)

	assert.Empty(t, store.Inserted)
	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.JobFailed, sent[0].Status)
}

func TestIngest_SubmitReturnsImmediately(t *testing.T) {
	done := make(chan struct{})
	embedder := mock.NewEmbedder()
	store := &mock.ChunkStore{}
	vcs := &mock.VCS{CloneFunc: cloneFixture(map[string]string{"a.go": "package a"})}
	notifier := &mock.Notifier{NotifyFunc: func(context.Context, port.Completion) error {
		close(done)
		return nil
	}}

	s := newTestService(t, embedder, store, vcs, notifier)
	id, err := s.Submit(domain.IngestRequest{RepoURL: "https://example.com/a.git", UserEmail: "dev@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not complete")
	}

	job, ok := s.tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, domain.JobSuccess, job.State)
}

func TestIngest_BatchCallsAreCeilOfChunksOverCapacity(t *testing.T) {
	tests := []struct {
		chunks    int
		wantCalls int
		wantLast  int
	}{
		{1, 1, 1},
		{99, 1, 99},
		{100, 1, 100},
		{101, 2, 1},
		{200, 2, 100},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d chunks", tt.chunks), func(t *testing.T) {
			embedder := mock.NewEmbedder()
			store := &mock.ChunkStore{}
			vcs := &mock.VCS{CloneFunc: cloneFixture(map[string]string{
				"f.md": contentWithChunks(tt.chunks),
			})}
			notifier := &mock.Notifier{}

			s := newTestService(t, embedder, store, vcs, notifier)
			req := domain.IngestRequest{RepoURL: "https://example.com/f.git", UserEmail: "dev@example.com"}
			id := s.tracker.Create(req)
			s.run(context.Background(), id, req)

			require.Len(t, embedder.BatchSizes, tt.wantCalls)
			assert.Equal(t, tt.wantLast, embedder.BatchSizes[len(embedder.BatchSizes)-1])
		})
	}
}
