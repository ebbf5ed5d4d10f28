package port

import (
	"context"

	"github.com/arturoeanton/go-code-context/internal/domain"
)

// VCSProvider abstracts version control system operations.
type VCSProvider interface {
	// Clone clones a repository from url into dest directory.
	Clone(ctx context.Context, url string, dest string) error

	// Metadata derives the repository name (from the origin remote URL)
	// and the current head commit hash for a local clone.
	Metadata(ctx context.Context, repoPath string) (domain.RepoMetadata, error)
}
