package execshell

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	consoleCommandStartedTemplateConstant          = "Running %s"
	consoleCommandCompletedTemplateConstant        = "Completed %s"
	consoleCommandFailedExitCodeTemplateConstant   = "%s failed with exit code %d"
	consoleCommandExecutionFailureTemplateConstant = "%s failed: %s"
)

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// ConsoleCommandEventLogger renders command lifecycle events through a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger *zap.Logger
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted implements CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Debug(fmt.Sprintf(consoleCommandStartedTemplateConstant, formatCommandLabel(command)))
}

// CommandCompleted implements CommandEventObserver by logging command completion notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode != 0 {
		eventLogger.logger.Debug(fmt.Sprintf(consoleCommandFailedExitCodeTemplateConstant, formatCommandLabel(command), result.ExitCode))
		return
	}
	eventLogger.logger.Debug(fmt.Sprintf(consoleCommandCompletedTemplateConstant, formatCommandLabel(command)))
}

// CommandExecutionFailed implements CommandEventObserver by logging unexpected execution failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	failureMessage := unknownExecutionFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	eventLogger.logger.Debug(fmt.Sprintf(consoleCommandExecutionFailureTemplateConstant, formatCommandLabel(command), failureMessage))
}
