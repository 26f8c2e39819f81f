package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommitMarker prefixes each commit header line emitted by CommitLog.
const CommitMarker = "COMMIT:"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
// Paths are emitted verbatim rather than C-quoted.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath, "-c", "core.quotepath=off"}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &exitErr):
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("%w in %q: %s", ErrGitCommandFailed, repoPath, stderr)
	case errors.Is(err, exec.ErrNotFound):
		return nil, fmt.Errorf("%w: ensure Git is installed and available on your PATH", ErrGitNotFound)
	default:
		return nil, fmt.Errorf("git command failed: %w", err)
	}
}

// withSince appends the --after bound when since is set.
func withSince(args []string, since string) []string {
	if since != "" {
		args = append(args, "--after="+since)
	}
	return args
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if errors.Is(err, ErrGitCommandFailed) {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, contextPath)
	} else if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCommitCount implements the GitClient interface.
func (c *LocalGitClient) GetCommitCount(ctx context.Context, repoPath string, since string) (int, error) {
	out, err := c.Run(ctx, repoPath, withSince([]string{"rev-list", "--count", "HEAD"}, since)...)
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return count, nil
}

// RevisionLog implements the GitClient interface.
func (c *LocalGitClient) RevisionLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	return c.Run(ctx, repoPath, withSince([]string{"log", "--name-only", "--pretty=format:"}, since)...)
}

// NumstatLog implements the GitClient interface.
func (c *LocalGitClient) NumstatLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	return c.Run(ctx, repoPath, withSince([]string{"log", "--numstat", "--pretty=format:"}, since)...)
}

// AuthorLog implements the GitClient interface.
func (c *LocalGitClient) AuthorLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	return c.Run(ctx, repoPath, withSince([]string{"log", "--name-only", "--pretty=format:%aN"}, since)...)
}

// CommitLog implements the GitClient interface.
func (c *LocalGitClient) CommitLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	args := []string{
		"log",
		"--name-only",
		"--pretty=format:" + CommitMarker + "%h|%aN|%ad|%s",
		"--date=short",
	}
	return c.Run(ctx, repoPath, withSince(args, since)...)
}

// ListTrackedFiles implements the GitClient interface.
func (c *LocalGitClient) ListTrackedFiles(ctx context.Context, repoPath string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	files := []string{}
	// Records are NUL-terminated and taken verbatim; names may carry spaces.
	for raw := range bytes.SplitSeq(out, []byte{0}) {
		if len(raw) > 0 {
			files = append(files, string(raw))
		}
	}
	return files, nil
}
