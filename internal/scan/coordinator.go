package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	taskExecutorMissingMessageConstant = "task executor not configured"
	invalidConcurrencyMessageConstant  = "maximum concurrency must be at least 1"
	taskPanicReasonTemplateConstant    = "repository task panicked: %v"
	taskCompletedDebugMessageConstant  = "repository task completed"
	logFieldRepositoryNameConstant     = "repository_name"
	logFieldSequenceIndexConstant      = "sequence_index"
	logFieldResultStatusConstant       = "result_status"
	logFieldCompletedCountConstant     = "completed_count"
	logFieldTotalCountConstant         = "total_count"
)

// Coordinator construction errors.
var (
	ErrTaskExecutorNotConfigured = errors.New(taskExecutorMissingMessageConstant)
	ErrInvalidConcurrency        = errors.New(invalidConcurrencyMessageConstant)
)

// ProgressFunc receives one serialized notification per completed task.
type ProgressFunc func(completedCount int, totalCount int, repositoryName string)

// TaskExecutor performs the work of a single scan task and always yields a terminal result.
type TaskExecutor interface {
	Execute(executionContext context.Context, task ScanTask) RepositoryResult
}

// CoordinatorOptions bound the coordinator's parallelism and per-task runtime.
//
// A zero TaskTimeout disables per-task deadlines.
type CoordinatorOptions struct {
	MaximumConcurrency int
	TaskTimeout        time.Duration
}

// ScanCoordinator dispatches scan tasks across a bounded pool of workers.
type ScanCoordinator struct {
	executor TaskExecutor
	options  CoordinatorOptions
	logger   *zap.Logger
}

// NewScanCoordinator constructs a ScanCoordinator around the provided executor.
func NewScanCoordinator(executor TaskExecutor, options CoordinatorOptions, logger *zap.Logger) (*ScanCoordinator, error) {
	if executor == nil {
		return nil, ErrTaskExecutorNotConfigured
	}
	if options.MaximumConcurrency < 1 {
		return nil, ErrInvalidConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanCoordinator{executor: executor, options: options, logger: logger}, nil
}

// Run executes every task and returns exactly one result per task, ordered by sequence index.
//
// At most MaximumConcurrency tasks run at once; dispatch acquires pool slots
// in sequence order. Each worker writes its result into its own slot and
// signals completion, so Run returns only after every task has finished.
// Progress notifications are serialized under a single mutex and carry
// monotonically increasing completion counts.
func (coordinator *ScanCoordinator) Run(executionContext context.Context, tasks []ScanTask, onProgress ProgressFunc) []RepositoryResult {
	scanResults := make([]RepositoryResult, len(tasks))
	workerSlots := make(chan struct{}, coordinator.options.MaximumConcurrency)
	var waitGroup sync.WaitGroup
	var progressMutex sync.Mutex
	completedCount := 0

	for _, scanTask := range tasks {
		workerSlots <- struct{}{}
		waitGroup.Add(1)
		go func(scanTask ScanTask) {
			defer waitGroup.Done()
			defer func() { <-workerSlots }()

			repositoryResult := coordinator.executeTask(executionContext, scanTask)
			scanResults[scanTask.SequenceIndex] = repositoryResult

			progressMutex.Lock()
			completedCount++
			if onProgress != nil {
				onProgress(completedCount, len(tasks), scanTask.Repository.Name)
			}
			coordinator.logger.Debug(
				taskCompletedDebugMessageConstant,
				zap.String(logFieldRepositoryNameConstant, scanTask.Repository.Name),
				zap.Int(logFieldSequenceIndexConstant, scanTask.SequenceIndex),
				zap.String(logFieldResultStatusConstant, string(repositoryResult.Status)),
				zap.Int(logFieldCompletedCountConstant, completedCount),
				zap.Int(logFieldTotalCountConstant, len(tasks)),
			)
			progressMutex.Unlock()
		}(scanTask)
	}

	waitGroup.Wait()
	return scanResults
}

// executeTask runs one task under the optional per-task deadline and contains panics.
func (coordinator *ScanCoordinator) executeTask(executionContext context.Context, scanTask ScanTask) (repositoryResult RepositoryResult) {
	defer func() {
		if recovered := recover(); recovered != nil {
			repositoryResult = RepositoryResult{
				Repository:    scanTask.Repository,
				SequenceIndex: scanTask.SequenceIndex,
				Status:        ResultStatusFailed,
				FailureReason: fmt.Errorf(taskPanicReasonTemplateConstant, recovered),
			}
		}
	}()

	taskContext := executionContext
	if coordinator.options.TaskTimeout > 0 {
		timeoutContext, cancelTask := context.WithTimeout(executionContext, coordinator.options.TaskTimeout)
		defer cancelTask()
		taskContext = timeoutContext
	}

	return coordinator.executor.Execute(taskContext, scanTask)
}

// RepositoryTaskExecutor performs the full per-repository scan: branch resolution then history extraction.
type RepositoryTaskExecutor struct {
	branchResolver   *BranchResolver
	historyExtractor *HistoryExtractor
}

// NewRepositoryTaskExecutor constructs a RepositoryTaskExecutor.
func NewRepositoryTaskExecutor(branchResolver *BranchResolver, historyExtractor *HistoryExtractor) (*RepositoryTaskExecutor, error) {
	if branchResolver == nil {
		return nil, ErrRepositoryInspectorNotConfigured
	}
	if historyExtractor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryTaskExecutor{branchResolver: branchResolver, historyExtractor: historyExtractor}, nil
}

// Execute scans one repository and classifies the outcome.
func (taskExecutor *RepositoryTaskExecutor) Execute(executionContext context.Context, scanTask ScanTask) RepositoryResult {
	branchInfo := taskExecutor.branchResolver.Resolve(executionContext, scanTask.Repository.Path)

	commitRecords, extractionError := taskExecutor.historyExtractor.Extract(
		executionContext,
		scanTask.Repository.Path,
		branchInfo.ReferenceName,
		scanTask.Author,
		scanTask.DateStart,
		scanTask.DateEnd,
	)
	if extractionError != nil {
		return RepositoryResult{
			Repository:    scanTask.Repository,
			SequenceIndex: scanTask.SequenceIndex,
			Status:        ResultStatusFailed,
			FailureReason: extractionError,
		}
	}

	resultStatus := ResultStatusHasCommits
	if len(commitRecords) == 0 {
		resultStatus = ResultStatusEmpty
	}

	return RepositoryResult{
		Repository:    scanTask.Repository,
		SequenceIndex: scanTask.SequenceIndex,
		Status:        resultStatus,
		Branch:        branchInfo,
		Commits:       commitRecords,
	}
}
