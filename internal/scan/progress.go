package scan

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/chronicle-cli/chronicle/internal/utils"
)

const (
	progressBarDescriptionConstant = "Scanning repositories"
	progressDebugMessageConstant   = "scan progress"
	progressRenderThrottleConstant = 65 * time.Millisecond
)

// NewProgressBarReporter builds a ProgressFunc rendering a terminal progress bar.
//
// Writes go through a flushing writer so interleaved worker completions render
// as whole lines.
func NewProgressBarReporter(totalCount int, outputWriter io.Writer) ProgressFunc {
	progressBar := progressbar.NewOptions(totalCount,
		progressbar.OptionSetWriter(utils.NewFlushingWriter(outputWriter)),
		progressbar.OptionSetDescription(progressBarDescriptionConstant),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(progressRenderThrottleConstant),
		progressbar.OptionClearOnFinish(),
	)
	return func(completedCount int, totalCount int, repositoryName string) {
		_ = progressBar.Add(1)
	}
}

// NewLoggerProgressReporter builds a ProgressFunc emitting structured progress events.
func NewLoggerProgressReporter(logger *zap.Logger) ProgressFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(completedCount int, totalCount int, repositoryName string) {
		logger.Info(
			progressDebugMessageConstant,
			zap.Int(logFieldCompletedCountConstant, completedCount),
			zap.Int(logFieldTotalCountConstant, totalCount),
			zap.String(logFieldRepositoryNameConstant, repositoryName),
		)
	}
}
