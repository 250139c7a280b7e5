package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chronicle-cli/chronicle/internal/utils"
)

const (
	testSupportedLevelCaseNameConstant    = "supported_level"
	testUnsupportedLevelCaseNameConstant  = "unsupported_level"
	testUnsupportedFormatCaseNameConstant = "unsupported_format"
	testUnsupportedLevelValueConstant     = "loud"
	testUnsupportedFormatValueConstant    = "binary"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logLevel      utils.LogLevel
		logFormat     utils.LogFormat
		expectSuccess bool
	}{
		{
			name:          testSupportedLevelCaseNameConstant,
			logLevel:      utils.LogLevelDebug,
			logFormat:     utils.LogFormatConsole,
			expectSuccess: true,
		},
		{
			name:      testUnsupportedLevelCaseNameConstant,
			logLevel:  utils.LogLevel(testUnsupportedLevelValueConstant),
			logFormat: utils.LogFormatStructured,
		},
		{
			name:      testUnsupportedFormatCaseNameConstant,
			logLevel:  utils.LogLevelInfo,
			logFormat: utils.LogFormat(testUnsupportedFormatValueConstant),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			loggerFactory := utils.NewLoggerFactory()
			logger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, logger)
			} else {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
			}
		})
	}
}
