package domain

// JobState is one step of the ingestion state machine.
type JobState string

const (
	JobPending    JobState = "pending"
	JobCloning    JobState = "cloning"
	JobProcessing JobState = "processing"
	JobSuccess    JobState = "success"
	JobFailed     JobState = "failed"
)

// Terminal reports whether the state ends the job.
func (s JobState) Terminal() bool {
	return s == JobSuccess || s == JobFailed
}

// IngestRequest identifies one ingestion job: a repository URL plus the
// email that receives the completion notification.
type IngestRequest struct {
	RepoURL   string `json:"repo_url"`
	UserEmail string `json:"user_email"`
}
