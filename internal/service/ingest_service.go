package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/arturoeanton/go-code-context/internal/ingest"
	"github.com/arturoeanton/go-code-context/internal/jobs"
	"github.com/arturoeanton/go-code-context/internal/port"
	"github.com/panjf2000/ants/v2"
)

// DefaultBatchSize is the number of chunks accumulated before one
// embedding call and one storage write.
const DefaultBatchSize = 100

// IngestService orchestrates repository ingestion jobs: clone, walk, chunk,
// embed in batches, write, and notify on completion. Jobs run on a bounded
// worker pool; the submitting request never waits for the job.
//
// Two concurrent jobs for the same repository URL are not serialized: they
// clone into independent temp dirs and may interleave writes to the chunk
// table.
type IngestService struct {
	embedder port.Embedder
	store    port.ChunkStore
	vcs      port.VCSProvider
	notifier port.Notifier
	metrics  port.MetricsRecorder
	tracker  *jobs.Tracker
	pool     *ants.Pool

	batchSize int
	logger    *slog.Logger
}

// NewIngestService creates the ingestion orchestrator with a worker pool of
// the given size.
func NewIngestService(
	embedder port.Embedder,
	store port.ChunkStore,
	vcs port.VCSProvider,
	notifier port.Notifier,
	metrics port.MetricsRecorder,
	tracker *jobs.Tracker,
	workers int,
) (*IngestService, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &IngestService{
		embedder:  embedder,
		store:     store,
		vcs:       vcs,
		notifier:  notifier,
		metrics:   metrics,
		tracker:   tracker,
		pool:      pool,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}, nil
}

// Submit schedules an ingestion job and returns its ID immediately.
func (s *IngestService) Submit(req domain.IngestRequest) (string, error) {
	id := s.tracker.Create(req)
	if err := s.pool.Submit(func() {
		s.run(context.Background(), id, req)
	}); err != nil {
		s.tracker.Update(id, domain.JobFailed, err.Error())
		return "", fmt.Errorf("schedule ingestion: %w", err)
	}
	return id, nil
}

// Release shuts down the worker pool. The service must not be used after.
func (s *IngestService) Release() {
	s.pool.Release()
}

// run executes one job end to end and always ends in a terminal state with
// exactly one completion notification.
func (s *IngestService) run(ctx context.Context, id string, req domain.IngestRequest) {
	start := time.Now()
	s.logger.Info("starting ingestion", "job_id", id, "repo_url", req.RepoURL)

	var jobErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				jobErr = fmt.Errorf("ingestion panic: %v\n%s", r, debug.Stack())
			}
		}()
		jobErr = s.process(ctx, id, req)
	}()

	state := domain.JobSuccess
	errMsg := ""
	if jobErr != nil {
		state = domain.JobFailed
		errMsg = jobErr.Error()
		s.logger.Error("ingestion failed", "job_id", id, "repo_url", req.RepoURL, "error", jobErr)
	} else {
		s.logger.Info("ingestion complete", "job_id", id, "repo_url", req.RepoURL, "duration", time.Since(start))
	}

	s.tracker.Update(id, state, errMsg)
	s.metrics.JobFinished(string(state), time.Since(start))

	// Best effort: a failed notification never changes the job outcome.
	if err := s.notifier.NotifyCompletion(ctx, port.Completion{
		Email:        req.UserEmail,
		RepoURL:      req.RepoURL,
		Status:       state,
		ErrorMessage: errMsg,
	}); err != nil {
		s.logger.Error("completion notification failed", "job_id", id, "email", req.UserEmail, "error", err)
	}
}

// process performs the clone and the walk/chunk/embed/write pipeline.
func (s *IngestService) process(ctx context.Context, id string, req domain.IngestRequest) error {
	s.tracker.Update(id, domain.JobCloning, "")

	tempDir, err := os.MkdirTemp("", "code-context-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := s.vcs.Clone(ctx, req.RepoURL, tempDir); err != nil {
		return fmt.Errorf("clone repository: %w", err)
	}

	s.tracker.Update(id, domain.JobProcessing, "")

	meta, err := s.vcs.Metadata(ctx, tempDir)
	if err != nil {
		return fmt.Errorf("repository metadata: %w", err)
	}

	walker := ingest.NewWalker(s.metrics, s.logger)
	batch := make([]domain.Chunk, 0, s.batchSize)

	err = walker.Walk(tempDir, func(fc ingest.FileChunk) error {
		batch = append(batch, domain.Chunk{
			FilePath: fc.RelativePath,
			Content:  fc.Content,
			Metadata: domain.ChunkMetadata{
				RepoName:   meta.RepoName,
				CommitHash: meta.CommitHash,
				RepoURL:    req.RepoURL,
				Language:   fc.Language,
			},
		})
		if len(batch) >= s.batchSize {
			if err := s.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Final partial batch at walk end.
	if len(batch) > 0 {
		return s.flush(ctx, batch)
	}
	return nil
}

// flush runs one embedding call and one storage write for the whole batch.
// Embedding i is paired with batch item i.
func (s *IngestService) flush(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i, ch := range batch {
		texts[i] = ch.Content
	}

	embedStart := time.Now()
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	s.metrics.EmbedDuration(time.Since(embedStart))
	if err != nil {
		return fmt.Errorf("embed batch of %d: %w", len(batch), err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed batch of %d: %w: got %d", len(batch), port.ErrVectorMismatch, len(vectors))
	}

	for i := range batch {
		batch[i].Vector = vectors[i]
	}

	writeStart := time.Now()
	if err := s.store.InsertChunks(ctx, batch); err != nil {
		return fmt.Errorf("insert batch of %d: %w", len(batch), err)
	}
	s.metrics.WriteDuration(time.Since(writeStart))
	s.metrics.BatchFlushed(len(batch))
	return nil
}
