package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock of GitClient.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetCommitCount implements the GitClient interface.
func (m *MockGitClient) GetCommitCount(ctx context.Context, repoPath string, since string) (int, error) {
	ret := m.Called(ctx, repoPath, since)
	return ret.Int(0), ret.Error(1)
}

// RevisionLog implements the GitClient interface.
func (m *MockGitClient) RevisionLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, since)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// NumstatLog implements the GitClient interface.
func (m *MockGitClient) NumstatLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, since)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// AuthorLog implements the GitClient interface.
func (m *MockGitClient) AuthorLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, since)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// CommitLog implements the GitClient interface.
func (m *MockGitClient) CommitLog(ctx context.Context, repoPath string, since string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, since)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// ListTrackedFiles implements the GitClient interface.
func (m *MockGitClient) ListTrackedFiles(ctx context.Context, repoPath string) ([]string, error) {
	ret := m.Called(ctx, repoPath)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}
