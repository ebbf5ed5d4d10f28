package jobs

import (
	"sync"
	"time"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/google/uuid"
)

// Status is the observable state of one ingestion job.
type Status struct {
	ID          string          `json:"id"`
	RepoURL     string          `json:"repo_url"`
	UserEmail   string          `json:"user_email"`
	State       domain.JobState `json:"state"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at,omitempty"`
}

// Tracker manages ingestion jobs in memory.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*Status
	subs map[string][]chan Status // subscribers per job
}

// NewTracker creates a new job tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*Status),
		subs: make(map[string][]chan Status),
	}
}

// Create registers a new pending job and returns its ID.
func (t *Tracker) Create(req domain.IngestRequest) string {
	id := uuid.New().String()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[id] = &Status{
		ID:        id,
		RepoURL:   req.RepoURL,
		UserEmail: req.UserEmail,
		State:     domain.JobPending,
		StartedAt: time.Now(),
	}
	return id
}

// Update transitions a job to state and notifies subscribers. For failed
// jobs errMsg carries the failure description.
func (t *Tracker) Update(id string, state domain.JobState, errMsg string) {
	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	job.State = state
	job.Error = errMsg
	if state.Terminal() {
		job.CompletedAt = time.Now()
	}
	snapshot := *job
	subs := t.subs[id]
	t.mu.Unlock()

	// Notify subscribers
	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Get returns a job status snapshot.
func (t *Tracker) Get(id string) (*Status, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// Subscribe returns a channel that receives job updates.
func (t *Tracker) Subscribe(id string) chan Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan Status, 10)
	t.subs[id] = append(t.subs[id], ch)
	return ch
}

// Unsubscribe removes a channel from subscribers.
func (t *Tracker) Unsubscribe(id string, ch chan Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.subs[id]
	for i, s := range subs {
		if s == ch {
			t.subs[id] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(ch)
}
