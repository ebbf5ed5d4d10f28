package port

import (
	"context"

	"github.com/arturoeanton/go-code-context/internal/domain"
)

// Completion is the payload delivered to the notification function when an
// ingestion job reaches a terminal state.
type Completion struct {
	Email        string          `json:"email"`
	RepoURL      string          `json:"repo_url"`
	Status       domain.JobState `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// Notifier dispatches job-completion notifications. Implementations are
// fire-and-forget: a failed dispatch never alters the job outcome.
type Notifier interface {
	NotifyCompletion(ctx context.Context, c Completion) error
}
