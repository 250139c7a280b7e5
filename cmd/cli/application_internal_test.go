package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chronicle-cli/chronicle/internal/utils"
)

func TestNewApplicationRegistersReportCommand(testInstance *testing.T) {
	application := NewApplication()
	require.NotNil(testInstance, application.rootCommand)
	require.Equal(testInstance, applicationNameConstant, application.rootCommand.Use)

	var commandNames []string
	for _, subCommand := range application.rootCommand.Commands() {
		commandNames = append(commandNames, subCommand.Name())
	}
	require.Contains(testInstance, commandNames, "report")
}

func TestNewApplicationRegistersPersistentFlags(testInstance *testing.T) {
	application := NewApplication()

	for _, persistentFlagName := range []string{configFileFlagNameConstant, logLevelFlagNameConstant, logFormatFlagNameConstant} {
		require.NotNil(testInstance, application.rootCommand.PersistentFlags().Lookup(persistentFlagName), persistentFlagName)
	}
}

func TestInitializeConfigurationAppliesEmbeddedDefaults(testInstance *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, 5, application.configuration.Report.MaxParallelJobs)
	require.Equal(testInstance, []string{"*"}, application.configuration.Report.IncludePatterns)
	require.Equal(testInstance, "reports", application.configuration.Report.OutputDirectory)
	require.True(testInstance, application.configuration.Report.ShowProgress)
	require.NotNil(testInstance, application.logger)
}

func TestHumanReadableLoggingFollowsLogFormat(testInstance *testing.T) {
	application := NewApplication()

	application.configuration.Common.LogFormat = string(utils.LogFormatConsole)
	require.True(testInstance, application.humanReadableLoggingEnabled())

	application.configuration.Common.LogFormat = string(utils.LogFormatStructured)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}
