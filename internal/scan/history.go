package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chronicle-cli/chronicle/internal/execshell"
	"go.uber.org/zap"
)

const (
	gitExecutorMissingMessageConstant     = "git executor not configured"
	historyQueryErrorTemplateConstant     = "history query failed for %s: %v"
	gitLogSubcommandConstant            = "log"
	gitLogNoMergesFlagConstant          = "--no-merges"
	gitLogAuthorFlagTemplateConstant    = "--author=%s"
	gitLogSinceFlagTemplateConstant     = "--since=%s 00:00:00"
	gitLogUntilFlagTemplateConstant     = "--until=%s 23:59:59"
	gitLogPrettyFormatFlagConstant      = "--pretty=format:%H%x1f%aI%x1f%s%x1f%b%x1e"
	calendarDateLayoutConstant          = "2006-01-02"
	recordSeparatorConstant             = "\x1e"
	fieldSeparatorConstant              = "\x1f"
	recordFieldCountConstant            = 4
	commitHashLengthConstant            = 40
	malformedRecordDebugMessageConstant = "skipped malformed history record"
	logFieldRecordPreviewConstant       = "record_preview"
	recordPreviewLengthConstant         = 64
)

// ErrGitExecutorNotConfigured indicates the history extractor was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// QueryError reports a failed history query for a single repository.
type QueryError struct {
	RepositoryPath string
	Cause          error
}

// Error describes the failed query.
func (queryError *QueryError) Error() string {
	return fmt.Sprintf(historyQueryErrorTemplateConstant, queryError.RepositoryPath, queryError.Cause)
}

// Unwrap exposes the underlying failure.
func (queryError *QueryError) Unwrap() error {
	return queryError.Cause
}

// GitLogExecutor runs git commands for history extraction.
type GitLogExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// HistoryExtractor queries commit history for one repository and parses it into records.
type HistoryExtractor struct {
	executor          GitLogExecutor
	extraLogArguments []string
	logger            *zap.Logger
}

// NewHistoryExtractor constructs a HistoryExtractor.
//
// extraLogArguments are appended verbatim to every log invocation after the
// built-in filters, so operator-supplied flags can narrow or widen the query.
func NewHistoryExtractor(executor GitLogExecutor, extraLogArguments []string, logger *zap.Logger) (*HistoryExtractor, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryExtractor{
		executor:          executor,
		extraLogArguments: append([]string(nil), extraLogArguments...),
		logger:            logger,
	}, nil
}

// Extract queries the commit history of one repository within an inclusive date window.
//
// Merge commits are excluded and authorship filtering is delegated to git's
// own --author matching. An empty history is a successful extraction with no
// records; only a failed git invocation produces an error.
func (extractor *HistoryExtractor) Extract(
	executionContext context.Context,
	repositoryPath string,
	referenceName string,
	author string,
	dateStart time.Time,
	dateEnd time.Time,
) ([]CommitRecord, error) {
	commandArguments := []string{gitLogSubcommandConstant}
	if len(strings.TrimSpace(referenceName)) > 0 {
		commandArguments = append(commandArguments, referenceName)
	}
	commandArguments = append(commandArguments,
		gitLogNoMergesFlagConstant,
		fmt.Sprintf(gitLogAuthorFlagTemplateConstant, author),
		fmt.Sprintf(gitLogSinceFlagTemplateConstant, dateStart.Format(calendarDateLayoutConstant)),
		fmt.Sprintf(gitLogUntilFlagTemplateConstant, dateEnd.Format(calendarDateLayoutConstant)),
		gitLogPrettyFormatFlagConstant,
	)
	commandArguments = append(commandArguments, extractor.extraLogArguments...)

	executionResult, executionError := extractor.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, &QueryError{RepositoryPath: repositoryPath, Cause: executionError}
	}

	return extractor.parseRecords(executionResult.StandardOutput), nil
}

func (extractor *HistoryExtractor) parseRecords(rawOutput string) []CommitRecord {
	var commitRecords []CommitRecord
	for _, rawRecord := range strings.Split(rawOutput, recordSeparatorConstant) {
		trimmedRecord := strings.TrimLeft(rawRecord, "\r\n")
		if len(trimmedRecord) == 0 {
			continue
		}

		recordFields := strings.SplitN(trimmedRecord, fieldSeparatorConstant, recordFieldCountConstant)
		if len(recordFields) < recordFieldCountConstant || !isCommitHash(recordFields[0]) {
			extractor.logger.Debug(
				malformedRecordDebugMessageConstant,
				zap.String(logFieldRecordPreviewConstant, previewRecord(trimmedRecord)),
			)
			continue
		}

		authorTimestamp, timestampError := time.Parse(time.RFC3339, recordFields[1])
		if timestampError != nil {
			extractor.logger.Debug(
				malformedRecordDebugMessageConstant,
				zap.String(logFieldRecordPreviewConstant, previewRecord(trimmedRecord)),
			)
			continue
		}

		commitRecords = append(commitRecords, CommitRecord{
			Hash:            recordFields[0],
			AuthorTimestamp: authorTimestamp,
			Subject:         recordFields[2],
			Body:            strings.TrimRight(recordFields[3], "\r\n"),
		})
	}
	return commitRecords
}

func isCommitHash(candidate string) bool {
	if len(candidate) != commitHashLengthConstant {
		return false
	}
	for _, character := range candidate {
		isDigit := character >= '0' && character <= '9'
		isLowerHexLetter := character >= 'a' && character <= 'f'
		if !isDigit && !isLowerHexLetter {
			return false
		}
	}
	return true
}

func previewRecord(record string) string {
	if len(record) > recordPreviewLengthConstant {
		return record[:recordPreviewLengthConstant]
	}
	return record
}
