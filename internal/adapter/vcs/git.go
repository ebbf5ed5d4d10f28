package vcs

import (
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/arturoeanton/go-code-context/internal/domain"
)

// GitProvider implements port.VCSProvider using the git CLI.
type GitProvider struct{}

// NewGitProvider creates a new Git VCS provider.
func NewGitProvider() *GitProvider {
	return &GitProvider{}
}

// Clone clones a repository into dest.
func (g *GitProvider) Clone(ctx context.Context, url string, dest string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dest)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone %s: %w: %s", url, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Metadata derives the repository name from the origin remote URL and the
// current head commit hash.
func (g *GitProvider) Metadata(ctx context.Context, repoPath string) (domain.RepoMetadata, error) {
	origin, err := g.output(ctx, repoPath, "config", "--get", "remote.origin.url")
	if err != nil {
		return domain.RepoMetadata{}, fmt.Errorf("git origin url: %w", err)
	}

	head, err := g.output(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return domain.RepoMetadata{}, fmt.Errorf("git rev-parse HEAD: %w", err)
	}

	return domain.RepoMetadata{
		RepoName:   repoNameFromURL(origin),
		CommitHash: head,
	}, nil
}

func (g *GitProvider) output(ctx context.Context, repoPath string, args ...string) (string, error) {
	full := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// repoNameFromURL extracts the repository name from a remote URL:
// the last path segment, without a trailing ".git".
func repoNameFromURL(url string) string {
	name := path.Base(strings.TrimSuffix(strings.TrimSpace(url), "/"))
	return strings.TrimSuffix(name, ".git")
}
