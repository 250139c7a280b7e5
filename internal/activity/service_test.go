package activity_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chronicle-cli/chronicle/internal/activity"
	"github.com/chronicle-cli/chronicle/internal/discovery"
	"github.com/chronicle-cli/chronicle/internal/execshell"
	"github.com/chronicle-cli/chronicle/internal/quarter"
)

const (
	serviceTestUsernameConstant   = "jordan"
	serviceTestCommitHashConstant = "a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0"
)

var serviceTestClock = func() time.Time {
	return time.Date(2026, time.January, 19, 10, 30, 0, 0, time.UTC)
}

func locateGit(string) (string, error) {
	return "/usr/bin/git", nil
}

type fakeDiscoverer struct {
	repositories    []discovery.RepositoryReference
	discoveryError  error
	recordedRoot    string
	recordedFilters discovery.Filters
}

func (discoverer *fakeDiscoverer) DiscoverRepositories(rootPath string, filters discovery.Filters) ([]discovery.RepositoryReference, error) {
	discoverer.recordedRoot = rootPath
	discoverer.recordedFilters = filters
	if discoverer.discoveryError != nil {
		return nil, discoverer.discoveryError
	}
	return discoverer.repositories, nil
}

type fakeGitManager struct {
	configuredUserName      string
	configuredUserNameError error
}

func (manager *fakeGitManager) CheckCleanWorktree(context.Context, string) (bool, error) {
	return true, nil
}

func (manager *fakeGitManager) GetCurrentBranch(context.Context, string) (string, error) {
	return "main", nil
}

func (manager *fakeGitManager) ResolveRemoteHeadBranch(context.Context, string) string {
	return "main"
}

func (manager *fakeGitManager) ResolveConfiguredUserName(context.Context) (string, error) {
	return manager.configuredUserName, manager.configuredUserNameError
}

type fakeLogExecutor struct {
	outputsByDirectory map[string]string
	errorsByDirectory  map[string]error
}

func (executor *fakeLogExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if invocationError, hasError := executor.errorsByDirectory[details.WorkingDirectory]; hasError {
		return execshell.ExecutionResult{}, invocationError
	}
	return execshell.ExecutionResult{StandardOutput: executor.outputsByDirectory[details.WorkingDirectory]}, nil
}

type serviceFixture struct {
	service      *activity.Service
	discoverer   *fakeDiscoverer
	outputBuffer *bytes.Buffer
	errorBuffer  *bytes.Buffer
}

func newServiceFixture(testInstance *testing.T, dependencies activity.ServiceDependencies) serviceFixture {
	testInstance.Helper()

	fixture := serviceFixture{
		outputBuffer: &bytes.Buffer{},
		errorBuffer:  &bytes.Buffer{},
	}

	if dependencies.Discoverer == nil {
		fixture.discoverer = &fakeDiscoverer{
			repositories: []discovery.RepositoryReference{{Path: "/workspace/RepoA", Name: "RepoA"}},
		}
		dependencies.Discoverer = fixture.discoverer
	} else if injectedDiscoverer, isFake := dependencies.Discoverer.(*fakeDiscoverer); isFake {
		fixture.discoverer = injectedDiscoverer
	}
	if dependencies.GitManager == nil {
		dependencies.GitManager = &fakeGitManager{}
	}
	if dependencies.GitExecutor == nil {
		dependencies.GitExecutor = &fakeLogExecutor{}
	}
	if dependencies.Clock == nil {
		dependencies.Clock = serviceTestClock
	}
	if dependencies.ExecutableLocator == nil {
		dependencies.ExecutableLocator = locateGit
	}
	if dependencies.Configuration.OutputDirectory == "" {
		dependencies.Configuration.OutputDirectory = testInstance.TempDir()
	}
	dependencies.OutputWriter = fixture.outputBuffer
	dependencies.ErrorWriter = fixture.errorBuffer

	service, serviceError := activity.NewService(dependencies)
	require.NoError(testInstance, serviceError)
	fixture.service = service
	return fixture
}

func TestServiceRunFailsWithoutGitExecutable(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
		ExecutableLocator: func(string) (string, error) {
			return "", errors.New("not found")
		},
	})

	runError := fixture.service.Run(context.Background(), activity.CommandOptions{Username: serviceTestUsernameConstant})
	require.ErrorIs(testInstance, runError, activity.ErrGitToolMissing)
}

func TestServiceRunDateWindowValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       activity.CommandOptions
		expectedError error
	}{
		{
			name:          "missing_end_date",
			options:       activity.CommandOptions{Username: serviceTestUsernameConstant, DateStart: "2025-04-01"},
			expectedError: activity.ErrIncompleteDateRange,
		},
		{
			name:          "missing_start_date",
			options:       activity.CommandOptions{Username: serviceTestUsernameConstant, DateEnd: "2025-06-30"},
			expectedError: activity.ErrIncompleteDateRange,
		},
		{
			name:          "reversed_dates",
			options:       activity.CommandOptions{Username: serviceTestUsernameConstant, DateStart: "2025-06-30", DateEnd: "2025-04-01"},
			expectedError: activity.ErrInvalidDateOrdering,
		},
		{
			name:          "zero_quarter",
			options:       activity.CommandOptions{Username: serviceTestUsernameConstant, QuarterNumber: 0, QuarterProvided: true},
			expectedError: quarter.ErrInvalidQuarter,
		},
		{
			name:          "out_of_range_quarter",
			options:       activity.CommandOptions{Username: serviceTestUsernameConstant, QuarterNumber: 7, QuarterProvided: true},
			expectedError: quarter.ErrInvalidQuarter,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newServiceFixture(testInstance, activity.ServiceDependencies{})
			runError := fixture.service.Run(context.Background(), testCase.options)
			require.ErrorIs(testInstance, runError, testCase.expectedError)
		})
	}
}

func TestServiceRunRejectsMalformedDates(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, activity.ServiceDependencies{})

	runError := fixture.service.Run(context.Background(), activity.CommandOptions{
		Username:  serviceTestUsernameConstant,
		DateStart: "04/01/2025",
		DateEnd:   "2025-06-30",
	})
	require.ErrorContains(testInstance, runError, "invalid calendar date")
}

func TestServiceRunUsernameResolutionOrder(testInstance *testing.T) {
	testInstance.Run("flag_wins_over_configuration", func(testInstance *testing.T) {
		fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
			Configuration: activity.Configuration{DefaultUsername: "configured"},
			GitManager:    &fakeGitManager{configuredUserName: "git-config"},
		})

		runError := fixture.service.Run(context.Background(), activity.CommandOptions{
			Username:  "flagged",
			DateStart: "2025-04-01",
			DateEnd:   "2025-06-30",
		})
		require.NoError(testInstance, runError)
		require.Contains(testInstance, fixture.outputBuffer.String(), "flagged.md")
	})

	testInstance.Run("git_config_fallback", func(testInstance *testing.T) {
		fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
			GitManager: &fakeGitManager{configuredUserName: "git-config"},
		})

		runError := fixture.service.Run(context.Background(), activity.CommandOptions{
			DateStart: "2025-04-01",
			DateEnd:   "2025-06-30",
		})
		require.NoError(testInstance, runError)
		require.Contains(testInstance, fixture.outputBuffer.String(), "git-config.md")
	})

	testInstance.Run("unresolvable_username_is_fatal", func(testInstance *testing.T) {
		fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
			GitManager: &fakeGitManager{configuredUserNameError: errors.New("unset")},
		})

		runError := fixture.service.Run(context.Background(), activity.CommandOptions{
			DateStart: "2025-04-01",
			DateEnd:   "2025-06-30",
		})
		require.ErrorIs(testInstance, runError, activity.ErrUsernameUnresolved)
	})
}

func TestServiceRunPropagatesDiscoveryFailures(testInstance *testing.T) {
	testInstance.Run("invalid_root", func(testInstance *testing.T) {
		fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
			Discoverer: &fakeDiscoverer{discoveryError: activity.ErrInvalidRoot},
		})

		runError := fixture.service.Run(context.Background(), activity.CommandOptions{
			Username:  serviceTestUsernameConstant,
			DateStart: "2025-04-01",
			DateEnd:   "2025-06-30",
		})
		require.ErrorIs(testInstance, runError, activity.ErrInvalidRoot)
	})

	testInstance.Run("no_repositories", func(testInstance *testing.T) {
		fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
			Discoverer: &fakeDiscoverer{},
		})

		runError := fixture.service.Run(context.Background(), activity.CommandOptions{
			Username:  serviceTestUsernameConstant,
			DateStart: "2025-04-01",
			DateEnd:   "2025-06-30",
		})
		require.ErrorIs(testInstance, runError, activity.ErrNoRepositoriesFound)
	})
}

func TestServiceRunWritesConsolidatedReport(testInstance *testing.T) {
	outputDirectory := testInstance.TempDir()
	logOutput := serviceTestCommitHashConstant + "\x1f2025-05-14T16:45:10Z\x1fShip feature\x1fdetails\x1e"

	fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
		Configuration: activity.Configuration{OutputDirectory: outputDirectory, Verbose: true},
		Discoverer: &fakeDiscoverer{
			repositories: []discovery.RepositoryReference{
				{Path: "/workspace/RepoA", Name: "RepoA"},
				{Path: "/workspace/RepoB", Name: "RepoB"},
				{Path: "/workspace/RepoC", Name: "RepoC"},
			},
		},
		GitExecutor: &fakeLogExecutor{
			outputsByDirectory: map[string]string{
				"/workspace/RepoA": logOutput,
				"/workspace/RepoB": "",
			},
			errorsByDirectory: map[string]error{
				"/workspace/RepoC": errors.New("object database corrupt"),
			},
		},
	})

	runError := fixture.service.Run(context.Background(), activity.CommandOptions{
		Username:  serviceTestUsernameConstant,
		DateStart: "2025-04-01",
		DateEnd:   "2025-06-30",
	})
	require.NoError(testInstance, runError)

	reportPath := filepath.Join(outputDirectory, "2025-04-01x2025-06-30.jordan.md")
	reportContent, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)

	renderedDocument := string(reportContent)
	require.Contains(testInstance, renderedDocument, "## RepoA")
	require.Contains(testInstance, renderedDocument, serviceTestCommitHashConstant)
	require.NotContains(testInstance, renderedDocument, "## RepoB")
	require.NotContains(testInstance, renderedDocument, "## RepoC")
	require.Contains(testInstance, renderedDocument, "- **Total commits:** 1")
	require.Contains(testInstance, renderedDocument, "- **Repositories scanned:** 3")

	require.Contains(testInstance, fixture.outputBuffer.String(), "Report written to "+reportPath)
	require.Contains(testInstance, fixture.outputBuffer.String(), "1 commits across 1 repositories (3 scanned)")
	require.Contains(testInstance, fixture.errorBuffer.String(), "skipped RepoC")
}

func TestServiceRunWarnsOnFutureQuarterFallback(testInstance *testing.T) {
	outputDirectory := testInstance.TempDir()
	fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
		Configuration: activity.Configuration{OutputDirectory: outputDirectory},
	})

	runError := fixture.service.Run(context.Background(), activity.CommandOptions{
		Username:        serviceTestUsernameConstant,
		QuarterNumber:   3,
		QuarterProvided: true,
	})
	require.NoError(testInstance, runError)

	require.Contains(testInstance, fixture.errorBuffer.String(), "has not started yet")
	_, statError := os.Stat(filepath.Join(outputDirectory, "2025-07-01x2025-09-30.jordan.md"))
	require.NoError(testInstance, statError)
}

func TestServiceRunPassesFiltersAndSourcePath(testInstance *testing.T) {
	discoverer := &fakeDiscoverer{
		repositories: []discovery.RepositoryReference{{Path: "/workspace/RepoA", Name: "RepoA"}},
	}
	fixture := newServiceFixture(testInstance, activity.ServiceDependencies{
		Configuration: activity.Configuration{
			IncludePatterns: []string{"Repo*"},
			ExcludePatterns: []string{"*-archive"},
		},
		Discoverer: discoverer,
	})

	runError := fixture.service.Run(context.Background(), activity.CommandOptions{
		Username:   serviceTestUsernameConstant,
		DateStart:  "2025-04-01",
		DateEnd:    "2025-06-30",
		SourcePath: "/workspace",
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "/workspace", discoverer.recordedRoot)
	require.Equal(testInstance, []string{"Repo*"}, discoverer.recordedFilters.IncludePatterns)
	require.Equal(testInstance, []string{"*-archive"}, discoverer.recordedFilters.ExcludePatterns)
}
