package activity

import (
	"strings"
	"time"
)

const (
	defaultMaximumParallelJobsConstant = 5
	defaultIncludePatternConstant      = "*"
	defaultOutputDirectoryConstant     = "reports"
	defaultShowProgressConstant        = true

	usernameConfigurationKeyConstant          = "default_username"
	sourcePathConfigurationKeyConstant        = "default_source_path"
	includePatternsConfigurationKeyConstant   = "include_patterns"
	excludePatternsConfigurationKeyConstant   = "exclude_patterns"
	maxParallelJobsConfigurationKeyConstant   = "max_parallel_jobs"
	extraLogArgumentsConfigurationKeyConstant = "extra_log_arguments"
	outputDirectoryConfigurationKeyConstant   = "output_dir"
	showProgressConfigurationKeyConstant      = "show_progress"
	verboseConfigurationKeyConstant           = "verbose"
	taskTimeoutConfigurationKeyConstant       = "task_timeout"
	configurationKeySeparatorConstant         = "."
)

// Configuration captures the persisted settings of the report command.
type Configuration struct {
	DefaultUsername   string        `mapstructure:"default_username"`
	DefaultSourcePath string        `mapstructure:"default_source_path"`
	IncludePatterns   []string      `mapstructure:"include_patterns"`
	ExcludePatterns   []string      `mapstructure:"exclude_patterns"`
	MaxParallelJobs   int           `mapstructure:"max_parallel_jobs"`
	ExtraLogArguments []string      `mapstructure:"extra_log_arguments"`
	OutputDirectory   string        `mapstructure:"output_dir"`
	ShowProgress      bool          `mapstructure:"show_progress"`
	Verbose           bool          `mapstructure:"verbose"`
	TaskTimeout       time.Duration `mapstructure:"task_timeout"`
}

// DefaultConfigurationValues exposes the command defaults keyed under the provided configuration prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	prefixedKey := func(configurationKey string) string {
		return configurationPrefix + configurationKeySeparatorConstant + configurationKey
	}
	return map[string]any{
		prefixedKey(includePatternsConfigurationKeyConstant): []string{defaultIncludePatternConstant},
		prefixedKey(maxParallelJobsConfigurationKeyConstant): defaultMaximumParallelJobsConstant,
		prefixedKey(outputDirectoryConfigurationKeyConstant): defaultOutputDirectoryConstant,
		prefixedKey(showProgressConfigurationKeyConstant):    defaultShowProgressConstant,
	}
}

// Sanitize normalizes configuration values and applies defaults for unusable entries.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.DefaultUsername = strings.TrimSpace(configuration.DefaultUsername)
	sanitized.DefaultSourcePath = strings.TrimSpace(configuration.DefaultSourcePath)
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)

	if sanitized.MaxParallelJobs < 1 {
		sanitized.MaxParallelJobs = defaultMaximumParallelJobsConstant
	}
	if len(sanitized.OutputDirectory) == 0 {
		sanitized.OutputDirectory = defaultOutputDirectoryConstant
	}

	sanitized.IncludePatterns = sanitizePatternList(configuration.IncludePatterns)
	if len(sanitized.IncludePatterns) == 0 {
		sanitized.IncludePatterns = []string{defaultIncludePatternConstant}
	}
	sanitized.ExcludePatterns = sanitizePatternList(configuration.ExcludePatterns)

	if sanitized.TaskTimeout < 0 {
		sanitized.TaskTimeout = 0
	}

	return sanitized
}

func sanitizePatternList(patterns []string) []string {
	var sanitizedPatterns []string
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if len(trimmedPattern) > 0 {
			sanitizedPatterns = append(sanitizedPatterns, trimmedPattern)
		}
	}
	return sanitizedPatterns
}
