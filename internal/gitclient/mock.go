package gitclient

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// MockCommitSource is a testify mock for the contract.CommitSource type.
type MockCommitSource struct {
	mock.Mock
}

var _ contract.CommitSource = &MockCommitSource{} // Compile-time check

// Resolve implements the contract.CommitSource interface.
func (m *MockCommitSource) Resolve(ctx context.Context, identity string) (string, func(), error) {
	ret := m.Called(ctx, identity)
	path, _ := ret.Get(0).(string)
	cleanup, _ := ret.Get(1).(func())
	if cleanup == nil {
		cleanup = func() {}
	}
	return path, cleanup, ret.Error(2)
}

// Events implements the contract.CommitSource interface.
func (m *MockCommitSource) Events(ctx context.Context, repoPath, repoID string) (*schema.EventSet, error) {
	ret := m.Called(ctx, repoPath, repoID)
	set, _ := ret.Get(0).(*schema.EventSet)
	return set, ret.Error(1)
}

// RepoHash implements the contract.CommitSource interface.
func (m *MockCommitSource) RepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	hash, _ := ret.Get(0).(string)
	return hash, ret.Error(1)
}
