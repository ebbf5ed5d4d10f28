package metrics

import "time"

// NoopRecorder satisfies port.MetricsRecorder without recording anything.
// Used in tests and when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) FileWalked()                               {}
func (NoopRecorder) FileSkipped()                              {}
func (NoopRecorder) ChunksProduced(int)                        {}
func (NoopRecorder) BatchFlushed(int)                          {}
func (NoopRecorder) EmbedDuration(time.Duration)               {}
func (NoopRecorder) WriteDuration(time.Duration)               {}
func (NoopRecorder) JobFinished(string, time.Duration)         {}
func (NoopRecorder) RetrievalQuery(int, int)                   {}
