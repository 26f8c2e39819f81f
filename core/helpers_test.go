package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/hotmap/core/match"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testHead     = "4f2a9c1e8b7d6a5f4e3d2c1b0a9f8e7d6c5b4a39"
	testRevLog   = "src/app.py\nsrc/util.py\n\nsrc/app.py\n\nsrc/app.py\nREADME.md\npackage-lock.json\n"
	testNumstat  = "10\t2\tsrc/app.py\n5\t0\tsrc/util.py\n\n3\t3\tsrc/app.py\n\n-\t-\tREADME.md\n"
	testAuthors  = "Alice\nsrc/app.py\nsrc/util.py\n\nBob\nsrc/app.py\n\nAlice\nsrc/app.py\nREADME.md\n"
	testCommits  = "COMMIT:c3|Alice|2024-03-01|Tidy app\nsrc/app.py\nREADME.md\n\nCOMMIT:b2|Bob|2024-02-01|Fix app\nsrc/app.py\n\nCOMMIT:a1|Alice|2024-01-01|Initial\nsrc/app.py\nsrc/util.py\n"
	testCommitCt = 3
)

// writeLines creates files with the given number of lines under dir.
func writeLines(t *testing.T, dir string, files map[string]int) {
	t.Helper()
	for path, lines := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(strings.Repeat("line\n", lines)), 0o644))
	}
}

// newTestRepo lays out a small work tree and a git mock describing its history.
func newTestRepo(t *testing.T) (*contract.Config, *contract.MockGitClient) {
	t.Helper()
	dir := t.TempDir()
	writeLines(t, dir, map[string]int{
		"src/app.py":        50,
		"src/util.py":       20,
		"README.md":         5,
		"package-lock.json": 400,
	})

	cfg := &contract.Config{
		RepoPath:    dir,
		Since:       "2024-01-01",
		Excludes:    match.DefaultExclusions(),
		Workers:     2,
		ResultLimit: 10,
		Precision:   4,
		Output:      schema.TextOut,
		OutputDir:   filepath.Join(t.TempDir(), "bundle"),
		NoServe:     true,
		NoOpen:      true,
	}

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, dir).Return(testHead, nil)
	client.On("GetCommitCount", mock.Anything, dir, "2024-01-01").Return(testCommitCt, nil)
	client.On("RevisionLog", mock.Anything, dir, "2024-01-01").Return([]byte(testRevLog), nil).Maybe()
	client.On("NumstatLog", mock.Anything, dir, "2024-01-01").Return([]byte(testNumstat), nil).Maybe()
	client.On("AuthorLog", mock.Anything, dir, "2024-01-01").Return([]byte(testAuthors), nil).Maybe()
	client.On("CommitLog", mock.Anything, dir, "2024-01-01").Return([]byte(testCommits), nil).Maybe()
	client.On("ListTrackedFiles", mock.Anything, dir).
		Return([]string{"src/app.py", "src/util.py", "README.md", "package-lock.json"}, nil).Maybe()
	return cfg, client
}
