package scan

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	repositoryInspectorMissingMessageConstant = "repository inspector not configured"
	fallbackReferenceNameConstant             = "detached"
	branchResolutionDebugMessageConstant      = "resolved scan branch"
	logFieldRepositoryPathConstant            = "repository_path"
	logFieldReferenceNameConstant             = "reference_name"
	logFieldWorktreeDirtyConstant             = "worktree_dirty"
)

// ErrRepositoryInspectorNotConfigured indicates the branch resolver was constructed without an inspector.
var ErrRepositoryInspectorNotConfigured = errors.New(repositoryInspectorMissingMessageConstant)

// RepositoryInspector exposes the git operations branch resolution depends on.
type RepositoryInspector interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	ResolveRemoteHeadBranch(executionContext context.Context, repositoryPath string) string
}

// BranchResolver determines which ref a repository scan should query.
type BranchResolver struct {
	inspector RepositoryInspector
	logger    *zap.Logger
}

// NewBranchResolver constructs a BranchResolver around the provided inspector.
func NewBranchResolver(inspector RepositoryInspector, logger *zap.Logger) (*BranchResolver, error) {
	if inspector == nil {
		return nil, ErrRepositoryInspectorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchResolver{inspector: inspector, logger: logger}, nil
}

// Resolve selects the target ref for a repository and reports working-tree dirtiness.
//
// A dirty working tree pins the scan to the checked-out branch. A clean tree
// prefers the remote's designated default branch, falling back to the
// checked-out branch. Lookup failures degrade to best-effort fallbacks;
// resolution never aborts a scan.
func (resolver *BranchResolver) Resolve(executionContext context.Context, repositoryPath string) BranchInfo {
	worktreeClean, cleanlinessError := resolver.inspector.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanlinessError != nil {
		worktreeClean = true
	}

	currentBranch, currentBranchError := resolver.inspector.GetCurrentBranch(executionContext, repositoryPath)
	if currentBranchError != nil || len(strings.TrimSpace(currentBranch)) == 0 {
		currentBranch = fallbackReferenceNameConstant
	}

	referenceName := currentBranch
	if worktreeClean {
		remoteHeadBranch := resolver.inspector.ResolveRemoteHeadBranch(executionContext, repositoryPath)
		if len(strings.TrimSpace(remoteHeadBranch)) > 0 {
			referenceName = remoteHeadBranch
		}
	}

	branchInfo := BranchInfo{ReferenceName: referenceName, IsDirty: !worktreeClean}
	resolver.logger.Debug(
		branchResolutionDebugMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldReferenceNameConstant, branchInfo.ReferenceName),
		zap.Bool(logFieldWorktreeDirtyConstant, branchInfo.IsDirty),
	)
	return branchInfo
}
