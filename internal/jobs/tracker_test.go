package jobs

import (
	"testing"
	"time"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_CreateAndGet(t *testing.T) {
	tr := NewTracker()
	id := tr.Create(domain.IngestRequest{RepoURL: "https://example.com/r.git", UserEmail: "dev@example.com"})
	require.NotEmpty(t, id)

	job, ok := tr.Get(id)
	require.True(t, ok)
	assert.Equal(t, domain.JobPending, job.State)
	assert.Equal(t, "https://example.com/r.git", job.RepoURL)
	assert.True(t, job.CompletedAt.IsZero())
}

func TestTracker_GetUnknown(t *testing.T) {
	tr := NewTracker()
	_, ok := tr.Get("missing")
	assert.False(t, ok)
}

func TestTracker_TerminalTransitionSetsCompletedAt(t *testing.T) {
	tr := NewTracker()
	id := tr.Create(domain.IngestRequest{RepoURL: "u", UserEmail: "e"})

	tr.Update(id, domain.JobCloning, "")
	job, _ := tr.Get(id)
	assert.Equal(t, domain.JobCloning, job.State)
	assert.True(t, job.CompletedAt.IsZero())

	tr.Update(id, domain.JobFailed, "clone repository: boom")
	job, _ = tr.Get(id)
	assert.Equal(t, domain.JobFailed, job.State)
	assert.Equal(t, "clone repository: boom", job.Error)
	assert.False(t, job.CompletedAt.IsZero())
}

func TestTracker_SubscribeReceivesUpdates(t *testing.T) {
	tr := NewTracker()
	id := tr.Create(domain.IngestRequest{RepoURL: "u", UserEmail: "e"})
	ch := tr.Subscribe(id)
	defer tr.Unsubscribe(id, ch)

	tr.Update(id, domain.JobProcessing, "")

	select {
	case update := <-ch:
		assert.Equal(t, domain.JobProcessing, update.State)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestJobState_Terminal(t *testing.T) {
	assert.True(t, domain.JobSuccess.Terminal())
	assert.True(t, domain.JobFailed.Terminal())
	assert.False(t, domain.JobPending.Terminal())
	assert.False(t, domain.JobCloning.Terminal())
	assert.False(t, domain.JobProcessing.Terminal())
}
