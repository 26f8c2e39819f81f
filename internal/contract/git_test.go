package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// initTestRepo creates a repository with two commits by two authors.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gitRun := func(env []string, args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(), env...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	alice := []string{"GIT_AUTHOR_NAME=Alice", "GIT_AUTHOR_EMAIL=a@x.io", "GIT_COMMITTER_NAME=Alice", "GIT_COMMITTER_EMAIL=a@x.io"}
	bob := []string{"GIT_AUTHOR_NAME=Bob", "GIT_AUTHOR_EMAIL=b@x.io", "GIT_COMMITTER_NAME=Bob", "GIT_COMMITTER_EMAIL=b@x.io"}

	gitRun(nil, "init", "-q")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0o644))
	gitRun(alice, "add", ".")
	gitRun(alice, "commit", "-q", "-m", "initial commit")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	gitRun(bob, "commit", "-q", "-am", "add main")
	return dir
}

// TestMockGitClient_Run ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)

	const expectedRepoPath = "/path/to/repo"
	expectedArgs := []string{"log", "-1", "--oneline"}
	expectedOutput := []byte("a1b2c3d commit message")
	expectedError := errors.New("mocked git error")

	// Run flattens ctx, repoPath and args into one variadic call.
	ctx := context.Background()
	calledArgs := []any{ctx, expectedRepoPath}
	for _, arg := range expectedArgs {
		calledArgs = append(calledArgs, arg)
	}

	mockClient.
		On("Run", calledArgs...).
		Return(expectedOutput, expectedError).
		Once()

	actualOutput, actualError := mockClient.Run(ctx, expectedRepoPath, expectedArgs...)

	assert.Equal(t, expectedOutput, actualOutput, "Run should return the programmed output")
	assert.Equal(t, expectedError, actualError, "Run should return the programmed error")
	mockClient.AssertExpectations(t)
}

// TestNewLocalGitClient tests the constructor for LocalGitClient.
func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client, "NewLocalGitClient should return a non-nil client")
	assert.IsType(t, &LocalGitClient{}, client, "NewLocalGitClient should return a LocalGitClient instance")
}

// TestLocalGitClient_Run tests the Run method error mapping.
func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	_, err := client.Run(ctx, "/nonexistent/path", "status")
	assert.ErrorIs(t, err, ErrGitCommandFailed)

	_, err = client.Run(ctx, repo, "invalid-command")
	assert.ErrorIs(t, err, ErrGitCommandFailed)

	out, err := client.Run(ctx, repo, "status", "--porcelain")
	assert.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(out)))
}

// TestLocalGitClient_GetRepoRoot tests the GetRepoRoot method.
func TestLocalGitClient_GetRepoRoot(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	root, err := client.GetRepoRoot(ctx, filepath.Join(repo, "src"))
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	assert.Equal(t, resolved, root)

	_, err = client.GetRepoRoot(ctx, t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}

// TestLocalGitClient_HeadAndCount tests the cache validation queries.
func TestLocalGitClient_HeadAndCount(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	head, err := client.GetRepoHash(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, head, 40)

	count, err := client.GetCommitCount(ctx, repo, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	future, err := NormalizeSince("2999-01-01", time.Now())
	require.NoError(t, err)
	count, err = client.GetCommitCount(ctx, repo, future)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "a bound past git's last year still excludes everything")
}

// TestLocalGitClient_RecentRelativeSince checks that sub-day bounds keep fresh commits.
func TestLocalGitClient_RecentRelativeSince(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	for _, input := range []string{"1 hour ago", "10 minutes ago"} {
		t.Run(input, func(t *testing.T) {
			since, err := NormalizeSince(input, time.Now())
			require.NoError(t, err)

			count, err := client.GetCommitCount(ctx, repo, since)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			revs, err := client.RevisionLog(ctx, repo, since)
			require.NoError(t, err)
			assert.Equal(t, 2, strings.Count(string(revs), "src/main.go"))
		})
	}
}

// TestLocalGitClient_HistoryLogs checks the shape of each history query.
func TestLocalGitClient_HistoryLogs(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	revs, err := client.RevisionLog(ctx, repo, "")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(revs), "src/main.go"))
	assert.Equal(t, 1, strings.Count(string(revs), "README.md"))

	numstat, err := client.NumstatLog(ctx, repo, "")
	require.NoError(t, err)
	assert.Contains(t, string(numstat), "2\t0\tsrc/main.go")

	authors, err := client.AuthorLog(ctx, repo, "")
	require.NoError(t, err)
	assert.Contains(t, string(authors), "Alice")
	assert.Contains(t, string(authors), "Bob")

	commits, err := client.CommitLog(ctx, repo, "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(commits)), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], CommitMarker))
	assert.Contains(t, lines[0], "|Bob|")
	assert.Contains(t, lines[0], "|add main")

	since, err := NormalizeSince("2999-01-01", time.Now())
	require.NoError(t, err)
	future, err := client.RevisionLog(ctx, repo, since)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(future)))
}

// TestLocalGitClient_ListTrackedFiles tests the ListTrackedFiles method.
func TestLocalGitClient_ListTrackedFiles(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	files, err := client.ListTrackedFiles(ctx, repo)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "src/main.go"}, files)

	_, err = client.ListTrackedFiles(ctx, "/nonexistent/path")
	assert.Error(t, err)
}

// TestLocalGitClient_ListTrackedFilesKeepsSpaces checks names are not trimmed.
func TestLocalGitClient_ListTrackedFilesKeepsSpaces(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initTestRepo(t)

	const spaced = " notes .txt"
	require.NoError(t, os.WriteFile(filepath.Join(repo, spaced), []byte("x\n"), 0o644))
	cmd := exec.Command("git", "-C", repo, "add", "--", spaced)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	files, err := client.ListTrackedFiles(ctx, repo)
	require.NoError(t, err)
	assert.Contains(t, files, spaced)
	assert.NotContains(t, files, "notes .txt")
}
