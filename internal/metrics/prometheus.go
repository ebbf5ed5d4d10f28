package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements port.MetricsRecorder on top of a Prometheus
// registry. Construct once per process and inject where needed.
type PrometheusRecorder struct {
	filesWalked    prometheus.Counter
	filesSkipped   prometheus.Counter
	chunksProduced prometheus.Counter
	batchesFlushed prometheus.Counter
	batchSize      prometheus.Histogram

	embedDuration prometheus.Histogram
	writeDuration prometheus.Histogram
	jobDuration   *prometheus.HistogramVec

	retrievalMatches  prometheus.Histogram
	retrievalFiltered prometheus.Counter
}

// NewPrometheusRecorder creates and registers the pipeline metrics on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	durationBuckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	r := &PrometheusRecorder{
		filesWalked:    prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_files_walked_total", Help: "Files visited by the repository walker"}),
		filesSkipped:   prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_files_skipped_total", Help: "Unreadable files skipped during the walk"}),
		chunksProduced: prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_chunks_produced_total", Help: "Chunks produced by the splitter"}),
		batchesFlushed: prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_batches_flushed_total", Help: "Batches sent through embed and write"}),
		batchSize:      prometheus.NewHistogram(prometheus.HistogramOpts{Name: "ingest_batch_size", Help: "Chunks per flushed batch", Buckets: []float64{1, 10, 25, 50, 75, 100}}),

		embedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Name: "ingest_embed_seconds", Help: "Embedding call duration per batch", Buckets: durationBuckets}),
		writeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Name: "ingest_write_seconds", Help: "Storage write duration per batch", Buckets: durationBuckets}),
		jobDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "ingest_job_seconds", Help: "End-to-end ingestion job duration", Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600}}, []string{"status"}),

		retrievalMatches:  prometheus.NewHistogram(prometheus.HistogramOpts{Name: "retrieval_matches", Help: "Matches surviving the retrieval filters", Buckets: []float64{0, 1, 2, 3, 4, 5}}),
		retrievalFiltered: prometheus.NewCounter(prometheus.CounterOpts{Name: "retrieval_filtered_total", Help: "Matches dropped by the retrieval filters"}),
	}

	reg.MustRegister(
		r.filesWalked, r.filesSkipped, r.chunksProduced,
		r.batchesFlushed, r.batchSize,
		r.embedDuration, r.writeDuration, r.jobDuration,
		r.retrievalMatches, r.retrievalFiltered,
	)
	return r
}

func (r *PrometheusRecorder) FileWalked()   { r.filesWalked.Inc() }
func (r *PrometheusRecorder) FileSkipped()  { r.filesSkipped.Inc() }
func (r *PrometheusRecorder) ChunksProduced(n int) {
	r.chunksProduced.Add(float64(n))
}

func (r *PrometheusRecorder) BatchFlushed(size int) {
	r.batchesFlushed.Inc()
	r.batchSize.Observe(float64(size))
}

func (r *PrometheusRecorder) EmbedDuration(d time.Duration) { r.embedDuration.Observe(d.Seconds()) }
func (r *PrometheusRecorder) WriteDuration(d time.Duration) { r.writeDuration.Observe(d.Seconds()) }

func (r *PrometheusRecorder) JobFinished(status string, d time.Duration) {
	r.jobDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (r *PrometheusRecorder) RetrievalQuery(matches int, filtered int) {
	r.retrievalMatches.Observe(float64(matches))
	r.retrievalFiltered.Add(float64(filtered))
}
