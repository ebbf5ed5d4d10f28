package port

import "time"

// MetricsRecorder is the cross-cutting instrumentation hook for the
// ingestion pipeline. The pipeline runs identically whether the recorder
// is backed by Prometheus or a no-op.
type MetricsRecorder interface {
	FileWalked()
	FileSkipped()
	ChunksProduced(n int)
	BatchFlushed(size int)
	EmbedDuration(d time.Duration)
	WriteDuration(d time.Duration)
	JobFinished(status string, d time.Duration)
	RetrievalQuery(matches int, filtered int)
}
