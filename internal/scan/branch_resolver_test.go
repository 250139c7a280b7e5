package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chronicle-cli/chronicle/internal/scan"
)

const (
	resolverTestRepositoryPathConstant = "/workspace/ProjectOne"
	resolverTestCurrentBranchConstant  = "feature/report-rework"
	resolverTestRemoteHeadConstant     = "main"
)

type stubRepositoryInspector struct {
	worktreeClean       bool
	cleanlinessError    error
	currentBranch       string
	currentBranchError  error
	remoteHeadBranch    string
	remoteHeadCallCount int
}

func (inspector *stubRepositoryInspector) CheckCleanWorktree(_ context.Context, _ string) (bool, error) {
	return inspector.worktreeClean, inspector.cleanlinessError
}

func (inspector *stubRepositoryInspector) GetCurrentBranch(_ context.Context, _ string) (string, error) {
	return inspector.currentBranch, inspector.currentBranchError
}

func (inspector *stubRepositoryInspector) ResolveRemoteHeadBranch(_ context.Context, _ string) string {
	inspector.remoteHeadCallCount++
	return inspector.remoteHeadBranch
}

func TestNewBranchResolverRequiresInspector(testInstance *testing.T) {
	_, creationError := scan.NewBranchResolver(nil, zap.NewNop())
	require.ErrorIs(testInstance, creationError, scan.ErrRepositoryInspectorNotConfigured)
}

func TestBranchResolverResolve(testInstance *testing.T) {
	testCases := []struct {
		name                      string
		inspector                 *stubRepositoryInspector
		expectedReferenceName     string
		expectedDirty             bool
		expectRemoteHeadConsulted bool
	}{
		{
			name: "dirty_worktree_pins_current_branch",
			inspector: &stubRepositoryInspector{
				worktreeClean:    false,
				currentBranch:    resolverTestCurrentBranchConstant,
				remoteHeadBranch: resolverTestRemoteHeadConstant,
			},
			expectedReferenceName: resolverTestCurrentBranchConstant,
			expectedDirty:         true,
		},
		{
			name: "clean_worktree_prefers_remote_head",
			inspector: &stubRepositoryInspector{
				worktreeClean:    true,
				currentBranch:    resolverTestCurrentBranchConstant,
				remoteHeadBranch: resolverTestRemoteHeadConstant,
			},
			expectedReferenceName:     resolverTestRemoteHeadConstant,
			expectRemoteHeadConsulted: true,
		},
		{
			name: "clean_worktree_without_remote_head_keeps_current_branch",
			inspector: &stubRepositoryInspector{
				worktreeClean: true,
				currentBranch: resolverTestCurrentBranchConstant,
			},
			expectedReferenceName:     resolverTestCurrentBranchConstant,
			expectRemoteHeadConsulted: true,
		},
		{
			name: "detached_head_without_remote_falls_back",
			inspector: &stubRepositoryInspector{
				worktreeClean: true,
				currentBranch: "",
			},
			expectedReferenceName:     "detached",
			expectRemoteHeadConsulted: true,
		},
		{
			name: "cleanliness_error_degrades_to_clean",
			inspector: &stubRepositoryInspector{
				cleanlinessError: errors.New("status unavailable"),
				currentBranch:    resolverTestCurrentBranchConstant,
				remoteHeadBranch: resolverTestRemoteHeadConstant,
			},
			expectedReferenceName:     resolverTestRemoteHeadConstant,
			expectRemoteHeadConsulted: true,
		},
		{
			name: "current_branch_error_uses_fallback_name",
			inspector: &stubRepositoryInspector{
				worktreeClean:      false,
				currentBranchError: errors.New("rev-parse failed"),
			},
			expectedReferenceName: "detached",
			expectedDirty:         true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			branchResolver, creationError := scan.NewBranchResolver(testCase.inspector, zap.NewNop())
			require.NoError(testInstance, creationError)

			branchInfo := branchResolver.Resolve(context.Background(), resolverTestRepositoryPathConstant)

			require.Equal(testInstance, testCase.expectedReferenceName, branchInfo.ReferenceName)
			require.Equal(testInstance, testCase.expectedDirty, branchInfo.IsDirty)
			if testCase.expectRemoteHeadConsulted {
				require.Equal(testInstance, 1, testCase.inspector.remoteHeadCallCount)
			} else {
				require.Zero(testInstance, testCase.inspector.remoteHeadCallCount)
			}
		})
	}
}
