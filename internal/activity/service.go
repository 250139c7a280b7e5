package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chronicle-cli/chronicle/internal/discovery"
	"github.com/chronicle-cli/chronicle/internal/quarter"
	"github.com/chronicle-cli/chronicle/internal/report"
	"github.com/chronicle-cli/chronicle/internal/scan"
)

const (
	gitExecutableNameConstant             = "git"
	calendarDateLayoutConstant            = "2006-01-02"
	homeDirectoryPrefixConstant           = "~"
	defaultSourcePathConstant             = "."
	discovererMissingMessageConstant      = "repository discoverer not configured"
	gitManagerMissingMessageConstant      = "git repository manager not configured"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	invalidDateTemplateConstant           = "invalid calendar date %q: %w"
	scanComponentErrorTemplateConstant    = "assemble scan pipeline: %w"
	scanStartedMessageConstant            = "scan started"
	scanCompletedMessageConstant          = "scan completed"
	logFieldRunIdentifierConstant         = "run_id"
	logFieldAuthorConstant                = "author"
	logFieldSourcePathConstant            = "source_path"
	logFieldRepositoryCountConstant       = "repository_count"
	logFieldDateStartConstant             = "date_start"
	logFieldDateEndConstant               = "date_end"
	logFieldTotalCommitsConstant          = "total_commits"
	logFieldReportPathConstant            = "report_path"
	futureQuarterWarningTemplateConstant  = "Quarter Q%d %d has not started yet; reporting on %s instead.\n"
	reportWrittenTemplateConstant         = "Report written to %s\n"
	summaryLineTemplateConstant           = "%d commits across %d repositories (%d scanned)\n"
	skippedRepositoryTemplateConstant     = "skipped %s: %v\n"
)

// RepositoryDiscoverer finds git repositories beneath a root path.
type RepositoryDiscoverer interface {
	DiscoverRepositories(rootPath string, filters discovery.Filters) ([]discovery.RepositoryReference, error)
}

// GitRepositoryManager exposes the repository-level git operations the service relies on.
type GitRepositoryManager interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	ResolveRemoteHeadBranch(executionContext context.Context, repositoryPath string) string
	ResolveConfiguredUserName(executionContext context.Context) (string, error)
}

// CommandOptions captures the flag values of one report invocation.
type CommandOptions struct {
	Username        string
	DateStart       string
	DateEnd         string
	QuarterNumber   int
	QuarterProvided bool
	SourcePath      string
	Verbose         bool
}

// ServiceDependencies enumerates the collaborators required to run the report service.
type ServiceDependencies struct {
	Logger             *zap.Logger
	Configuration      Configuration
	Discoverer         RepositoryDiscoverer
	GitManager         GitRepositoryManager
	GitExecutor        scan.GitLogExecutor
	OutputWriter       io.Writer
	ErrorWriter        io.Writer
	Clock              func() time.Time
	ExecutableLocator  func(executableName string) (string, error)
	ProgressBarEnabled bool
}

// Service runs the full report workflow: discovery, bounded scan, aggregation, and file placement.
type Service struct {
	logger             *zap.Logger
	configuration      Configuration
	discoverer         RepositoryDiscoverer
	gitManager         GitRepositoryManager
	gitExecutor        scan.GitLogExecutor
	outputWriter       io.Writer
	errorWriter        io.Writer
	clock              func() time.Time
	executableLocator  func(executableName string) (string, error)
	progressBarEnabled bool
}

// NewService validates the dependencies and assembles a report service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, errors.New(discovererMissingMessageConstant)
	}
	if dependencies.GitManager == nil {
		return nil, errors.New(gitManagerMissingMessageConstant)
	}
	if dependencies.GitExecutor == nil {
		return nil, errors.New(gitExecutorMissingMessageConstant)
	}

	service := &Service{
		logger:             dependencies.Logger,
		configuration:      dependencies.Configuration.Sanitize(),
		discoverer:         dependencies.Discoverer,
		gitManager:         dependencies.GitManager,
		gitExecutor:        dependencies.GitExecutor,
		outputWriter:       dependencies.OutputWriter,
		errorWriter:        dependencies.ErrorWriter,
		clock:              dependencies.Clock,
		executableLocator:  dependencies.ExecutableLocator,
		progressBarEnabled: dependencies.ProgressBarEnabled,
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.outputWriter == nil {
		service.outputWriter = io.Discard
	}
	if service.errorWriter == nil {
		service.errorWriter = io.Discard
	}
	if service.clock == nil {
		service.clock = time.Now
	}
	if service.executableLocator == nil {
		service.executableLocator = exec.LookPath
	}
	return service, nil
}

type dateWindow struct {
	dateStart   time.Time
	dateEnd     time.Time
	periodLabel string
}

// Run executes one report workflow and writes the consolidated report file.
func (service *Service) Run(executionContext context.Context, options CommandOptions) error {
	if _, lookupError := service.executableLocator(gitExecutableNameConstant); lookupError != nil {
		return ErrGitToolMissing
	}

	resolvedWindow, windowError := service.resolveDateWindow(options)
	if windowError != nil {
		return windowError
	}

	authorUsername, usernameError := service.resolveUsername(executionContext, options)
	if usernameError != nil {
		return usernameError
	}

	sourcePath := service.resolveSourcePath(options)
	repositories, discoveryError := service.discoverer.DiscoverRepositories(sourcePath, discovery.Filters{
		IncludePatterns: service.configuration.IncludePatterns,
		ExcludePatterns: service.configuration.ExcludePatterns,
	})
	if discoveryError != nil {
		return discoveryError
	}
	if len(repositories) == 0 {
		return ErrNoRepositoriesFound
	}

	runIdentifier := uuid.NewString()
	runLogger := service.logger.With(zap.String(logFieldRunIdentifierConstant, runIdentifier))

	scanTasks := make([]scan.ScanTask, 0, len(repositories))
	for repositoryIndex, repositoryReference := range repositories {
		scanTasks = append(scanTasks, scan.ScanTask{
			Repository:    repositoryReference,
			SequenceIndex: repositoryIndex,
			Author:        authorUsername,
			DateStart:     resolvedWindow.dateStart,
			DateEnd:       resolvedWindow.dateEnd,
		})
	}

	scanCoordinator, pipelineError := service.assembleCoordinator(runLogger)
	if pipelineError != nil {
		return fmt.Errorf(scanComponentErrorTemplateConstant, pipelineError)
	}

	runLogger.Info(
		scanStartedMessageConstant,
		zap.String(logFieldAuthorConstant, authorUsername),
		zap.String(logFieldSourcePathConstant, sourcePath),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
		zap.String(logFieldDateStartConstant, resolvedWindow.dateStart.Format(calendarDateLayoutConstant)),
		zap.String(logFieldDateEndConstant, resolvedWindow.dateEnd.Format(calendarDateLayoutConstant)),
	)

	scanResults := scanCoordinator.Run(executionContext, scanTasks, service.buildProgressReporter(len(scanTasks), runLogger))

	reportMetadata := report.Metadata{
		Author:        authorUsername,
		DateStart:     resolvedWindow.dateStart,
		DateEnd:       resolvedWindow.dateEnd,
		PeriodLabel:   resolvedWindow.periodLabel,
		GeneratedAt:   service.clock(),
		RunIdentifier: runIdentifier,
	}
	renderedDocument, scanSummary := report.NewAggregator(runLogger).Aggregate(scanResults, reportMetadata)

	reportFileName := report.BuildReportFileName(resolvedWindow.dateStart, resolvedWindow.dateEnd, authorUsername)
	reportPath, writeError := report.WriteReportFile(service.configuration.OutputDirectory, reportFileName, renderedDocument)
	if writeError != nil {
		return writeError
	}

	runLogger.Info(
		scanCompletedMessageConstant,
		zap.Int(logFieldTotalCommitsConstant, scanSummary.TotalCommits),
		zap.Int(logFieldRepositoryCountConstant, scanSummary.RepositoriesScanned),
		zap.String(logFieldReportPathConstant, reportPath),
	)

	service.printSummary(reportPath, scanSummary, scanResults, options.Verbose || service.configuration.Verbose)
	return nil
}

func (service *Service) assembleCoordinator(runLogger *zap.Logger) (*scan.ScanCoordinator, error) {
	branchResolver, resolverError := scan.NewBranchResolver(service.gitManager, runLogger)
	if resolverError != nil {
		return nil, resolverError
	}
	historyExtractor, extractorError := scan.NewHistoryExtractor(service.gitExecutor, service.configuration.ExtraLogArguments, runLogger)
	if extractorError != nil {
		return nil, extractorError
	}
	taskExecutor, executorError := scan.NewRepositoryTaskExecutor(branchResolver, historyExtractor)
	if executorError != nil {
		return nil, executorError
	}
	return scan.NewScanCoordinator(taskExecutor, scan.CoordinatorOptions{
		MaximumConcurrency: service.configuration.MaxParallelJobs,
		TaskTimeout:        service.configuration.TaskTimeout,
	}, runLogger)
}

func (service *Service) buildProgressReporter(taskCount int, runLogger *zap.Logger) scan.ProgressFunc {
	if service.progressBarEnabled && service.configuration.ShowProgress {
		return scan.NewProgressBarReporter(taskCount, service.errorWriter)
	}
	return scan.NewLoggerProgressReporter(runLogger)
}

func (service *Service) resolveUsername(executionContext context.Context, options CommandOptions) (string, error) {
	flagUsername := strings.TrimSpace(options.Username)
	if len(flagUsername) > 0 {
		return flagUsername, nil
	}
	if len(service.configuration.DefaultUsername) > 0 {
		return service.configuration.DefaultUsername, nil
	}
	configuredUserName, configError := service.gitManager.ResolveConfiguredUserName(executionContext)
	if configError == nil {
		trimmedUserName := strings.TrimSpace(configuredUserName)
		if len(trimmedUserName) > 0 {
			return trimmedUserName, nil
		}
	}
	return "", ErrUsernameUnresolved
}

func (service *Service) resolveDateWindow(options CommandOptions) (dateWindow, error) {
	trimmedDateStart := strings.TrimSpace(options.DateStart)
	trimmedDateEnd := strings.TrimSpace(options.DateEnd)

	if len(trimmedDateStart) > 0 || len(trimmedDateEnd) > 0 {
		if len(trimmedDateStart) == 0 || len(trimmedDateEnd) == 0 {
			return dateWindow{}, ErrIncompleteDateRange
		}
		parsedDateStart, startParseError := time.Parse(calendarDateLayoutConstant, trimmedDateStart)
		if startParseError != nil {
			return dateWindow{}, fmt.Errorf(invalidDateTemplateConstant, trimmedDateStart, startParseError)
		}
		parsedDateEnd, endParseError := time.Parse(calendarDateLayoutConstant, trimmedDateEnd)
		if endParseError != nil {
			return dateWindow{}, fmt.Errorf(invalidDateTemplateConstant, trimmedDateEnd, endParseError)
		}
		if parsedDateStart.After(parsedDateEnd) {
			return dateWindow{}, ErrInvalidDateOrdering
		}
		return dateWindow{dateStart: parsedDateStart, dateEnd: parsedDateEnd}, nil
	}

	referenceDate := service.clock()
	quarterNumber := options.QuarterNumber
	if !options.QuarterProvided {
		quarterNumber = quarter.CurrentQuarter(referenceDate)
	}
	resolvedQuarter, quarterError := quarter.Resolve(quarterNumber, referenceDate)
	if quarterError != nil {
		return dateWindow{}, quarterError
	}
	if resolvedQuarter.FutureFallback {
		color.New(color.FgYellow).Fprintf(
			service.errorWriter,
			futureQuarterWarningTemplateConstant,
			resolvedQuarter.Quarter,
			referenceDate.Year(),
			resolvedQuarter.Label(),
		)
	}
	return dateWindow{
		dateStart:   resolvedQuarter.DateStart,
		dateEnd:     resolvedQuarter.DateEnd,
		periodLabel: resolvedQuarter.Label(),
	}, nil
}

func (service *Service) resolveSourcePath(options CommandOptions) string {
	sourcePath := strings.TrimSpace(options.SourcePath)
	if len(sourcePath) == 0 {
		sourcePath = service.configuration.DefaultSourcePath
	}
	if len(sourcePath) == 0 {
		sourcePath = defaultSourcePathConstant
	}
	return expandHomeDirectory(sourcePath)
}

func expandHomeDirectory(candidatePath string) string {
	if candidatePath != homeDirectoryPrefixConstant && !strings.HasPrefix(candidatePath, homeDirectoryPrefixConstant+string(os.PathSeparator)) {
		return candidatePath
	}
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return candidatePath
	}
	if candidatePath == homeDirectoryPrefixConstant {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, candidatePath[len(homeDirectoryPrefixConstant)+1:])
}

func (service *Service) printSummary(reportPath string, scanSummary report.ScanSummary, scanResults []scan.RepositoryResult, verbose bool) {
	if verbose {
		for _, repositoryResult := range scanResults {
			if repositoryResult.Status == scan.ResultStatusFailed {
				color.New(color.FgYellow).Fprintf(
					service.errorWriter,
					skippedRepositoryTemplateConstant,
					repositoryResult.Repository.Name,
					repositoryResult.FailureReason,
				)
			}
		}
	}

	color.New(color.FgGreen).Fprintf(service.outputWriter, reportWrittenTemplateConstant, reportPath)
	fmt.Fprintf(
		service.outputWriter,
		summaryLineTemplateConstant,
		scanSummary.TotalCommits,
		scanSummary.RepositoriesWithCommits,
		scanSummary.RepositoriesScanned,
	)
}
