package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/chronicle-cli/chronicle/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant      = "git executor not configured"
	gitStatusSubcommandConstant            = "status"
	gitStatusPorcelainFlagConstant         = "--porcelain"
	gitRevParseSubcommandConstant          = "rev-parse"
	gitAbbrevRefFlagConstant               = "--abbrev-ref"
	gitIsInsideWorkTreeFlagConstant        = "--is-inside-work-tree"
	gitHeadReferenceConstant               = "HEAD"
	gitLSRemoteSubcommandConstant          = "ls-remote"
	gitSymrefFlagConstant                  = "--symref"
	gitOriginRemoteNameConstant            = "origin"
	gitTrueOutputConstant                  = "true"
	symbolicReferenceLinePrefixConstant    = "ref:"
	refsHeadsPrefixConstant                = "refs/heads/"
	gitConfigSubcommandConstant            = "config"
	gitConfigGetFlagConstant               = "--get"
	gitConfigUserNameKeyConstant           = "user.name"
	detachedHeadBranchPlaceholderConstant  = "detached"
	gitTerminalPromptEnvironmentName       = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableVal = "0"
)

// ErrGitExecutorNotConfigured indicates the repository manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor exposes the subset of shell execution the repository manager requires.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-level git operations through a GitExecutor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsGitRepository reports whether the path sits inside a git working tree.
func (manager *RepositoryManager) IsGitRepository(executionContext context.Context, repositoryPath string) bool {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitRevParseSubcommandConstant, gitIsInsideWorkTreeFlagConstant})
	if executionError != nil {
		return false
	}
	return strings.TrimSpace(executionResult.StandardOutput) == gitTrueOutputConstant
}

// CheckCleanWorktree reports whether the repository has no uncommitted changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch returns the checked-out branch name, or the detached placeholder when HEAD is not symbolic.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant})
	if executionError != nil {
		return "", executionError
	}

	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if len(branchName) == 0 || branchName == gitHeadReferenceConstant {
		return detachedHeadBranchPlaceholderConstant, nil
	}
	return branchName, nil
}

// ResolveRemoteHeadBranch returns the branch the origin remote designates as its HEAD.
//
// An empty string is returned when the remote or its symbolic HEAD cannot be
// resolved; callers are expected to fall back to the current branch.
func (manager *RepositoryManager) ResolveRemoteHeadBranch(executionContext context.Context, repositoryPath string) string {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitLSRemoteSubcommandConstant, gitSymrefFlagConstant, gitOriginRemoteNameConstant, gitHeadReferenceConstant})
	if executionError != nil {
		return ""
	}

	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		if !strings.HasPrefix(outputLine, symbolicReferenceLinePrefixConstant) {
			continue
		}
		lineFields := strings.Fields(outputLine)
		if len(lineFields) < 2 {
			continue
		}
		return strings.TrimPrefix(lineFields[1], refsHeadsPrefixConstant)
	}
	return ""
}

// ResolveConfiguredUserName returns the git user.name setting visible from the working directory.
func (manager *RepositoryManager) ResolveConfiguredUserName(executionContext context.Context) (string, error) {
	executionResult, executionError := manager.executeGit(executionContext, "", []string{gitConfigSubcommandConstant, gitConfigGetFlagConstant, gitConfigUserNameKeyConstant})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments []string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentName: gitTerminalPromptEnvironmentDisableVal},
	}
	return manager.executor.ExecuteGit(executionContext, commandDetails)
}
