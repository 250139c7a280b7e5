package activity

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chronicle-cli/chronicle/internal/discovery"
	"github.com/chronicle-cli/chronicle/internal/execshell"
	"github.com/chronicle-cli/chronicle/internal/gitrepo"
)

const (
	commandNameConstant             = "report"
	commandShortDescriptionConstant = "Generate a commit-activity report across discovered repositories"
	commandLongDescriptionConstant  = "report walks the source path for git repositories, extracts commit history " +
		"authored by the selected username within the requested window, and writes one consolidated markdown report."

	flagUsernameName         = "username"
	flagUsernameShorthand    = "u"
	flagUsernameDescription  = "Author identity passed to git's --author filter."
	flagDateStartName        = "dateStart"
	flagDateStartShorthand   = "s"
	flagDateStartDescription = "Window start as YYYY-MM-DD (requires --dateEnd)."
	flagDateEndName          = "dateEnd"
	flagDateEndShorthand     = "e"
	flagDateEndDescription   = "Window end as YYYY-MM-DD (requires --dateStart)."
	flagQuarterName          = "qNumber"
	flagQuarterShorthand     = "q"
	flagQuarterDescription   = "Quarter selector in [-4,4]; positive picks a quarter of this year, negative steps back."
	flagSourcePathName       = "sourcePath"
	flagSourcePathShorthand  = "p"
	flagSourcePathDescription = "Root directory to scan for git repositories."
	flagVerboseName          = "verbose"
	flagVerboseShorthand     = "v"
	flagVerboseDescription   = "Report skipped repositories on stderr."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// HumanReadableLoggingProvider reports whether console-oriented output is active.
type HumanReadableLoggingProvider func() bool

// ConfigurationProvider supplies the report configuration resolved by the CLI bootstrap.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the report cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ConfigurationProvider        ConfigurationProvider
	Discoverer                   RepositoryDiscoverer
	GitManager                   GitRepositoryManager
	GitExecutor                  gitrepo.GitExecutor
}

// Build constructs the cobra command for the report workflow.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagUsernameName, flagUsernameShorthand, "", flagUsernameDescription)
	command.Flags().StringP(flagDateStartName, flagDateStartShorthand, "", flagDateStartDescription)
	command.Flags().StringP(flagDateEndName, flagDateEndShorthand, "", flagDateEndDescription)
	command.Flags().IntP(flagQuarterName, flagQuarterShorthand, 0, flagQuarterDescription)
	command.Flags().StringP(flagSourcePathName, flagSourcePathShorthand, "", flagSourcePathDescription)
	command.Flags().BoolP(flagVerboseName, flagVerboseShorthand, false, flagVerboseDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	options := builder.parseOptions(command)
	logger := builder.resolveLogger()

	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}
	gitManager, managerError := builder.resolveGitManager(gitExecutor)
	if managerError != nil {
		return managerError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:             logger,
		Configuration:      builder.resolveConfiguration(),
		Discoverer:         builder.resolveDiscoverer(),
		GitManager:         gitManager,
		GitExecutor:        gitExecutor,
		OutputWriter:       command.OutOrStdout(),
		ErrorWriter:        command.ErrOrStderr(),
		ProgressBarEnabled: builder.humanReadableLoggingEnabled(),
	})
	if serviceError != nil {
		return serviceError
	}

	return service.Run(command.Context(), options)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) CommandOptions {
	usernameValue, _ := command.Flags().GetString(flagUsernameName)
	dateStartValue, _ := command.Flags().GetString(flagDateStartName)
	dateEndValue, _ := command.Flags().GetString(flagDateEndName)
	quarterValue, _ := command.Flags().GetInt(flagQuarterName)
	sourcePathValue, _ := command.Flags().GetString(flagSourcePathName)
	verboseValue, _ := command.Flags().GetBool(flagVerboseName)

	return CommandOptions{
		Username:        usernameValue,
		DateStart:       dateStartValue,
		DateEnd:         dateEndValue,
		QuarterNumber:   quarterValue,
		QuarterProvided: command.Flags().Changed(flagQuarterName),
		SourcePath:      sourcePathValue,
		Verbose:         verboseValue,
	}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return Configuration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveDiscoverer() RepositoryDiscoverer {
	if builder.Discoverer != nil {
		return builder.Discoverer
	}
	return discovery.NewFilesystemRepositoryDiscoverer()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}
	if builder.humanReadableLoggingEnabled() {
		return execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), execshell.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}

func (builder *CommandBuilder) resolveGitManager(executor gitrepo.GitExecutor) (GitRepositoryManager, error) {
	if builder.GitManager != nil {
		return builder.GitManager, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}
