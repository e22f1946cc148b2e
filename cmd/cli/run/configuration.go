package run

import (
	"strings"

	"github.com/temirov/cmdpilot/internal/execshell"
	"github.com/temirov/cmdpilot/internal/workflow"
)

const (
	configurationMinimumRunTimeKeyConstant      = "minimum_run_time"
	configurationMaximumRunTimeKeyConstant      = "maximum_run_time"
	configurationMaximumOutputLengthKeyConstant = "maximum_output_length"
	configurationMaximumDebugAttemptsKeyConst   = "maximum_debug_attempts"
	configurationForceKeyConstant               = "force"
	configurationReplayKeyConstant              = "replay"
	configurationWorkingDirectoryKeyConstant    = "working_directory"
	configurationProjectScopeKeyConstant        = "project"
	configurationDatabasePathKeyConstant        = "database_path"
	configurationKeySeparatorConstant           = "."
	defaultHistoryDatabasePathConstant          = "~/.cmdpilot/history.db"
	defaultProjectScopeConstant                 = "default"
)

// CommandConfiguration captures configuration values for the run command.
type CommandConfiguration struct {
	MinimumRunTimeMilliseconds int64  `mapstructure:"minimum_run_time"`
	MaximumRunTimeMilliseconds int64  `mapstructure:"maximum_run_time"`
	MaximumOutputLength        int    `mapstructure:"maximum_output_length"`
	MaximumDebugAttempts       int    `mapstructure:"maximum_debug_attempts"`
	Force                      bool   `mapstructure:"force"`
	Replay                     bool   `mapstructure:"replay"`
	WorkingDirectory           string `mapstructure:"working_directory"`
	ProjectScope               string `mapstructure:"project"`
	DatabasePath               string `mapstructure:"database_path"`
}

// DefaultCommandConfiguration provides baseline run command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		MinimumRunTimeMilliseconds: execshell.DefaultMinimumRunTimeMilliseconds,
		MaximumRunTimeMilliseconds: execshell.DefaultMaximumRunTimeMilliseconds,
		MaximumOutputLength:        execshell.DefaultMaximumOutputLength,
		MaximumDebugAttempts:       workflow.DefaultMaximumDebugAttempts,
		Force:                      false,
		Replay:                     false,
		WorkingDirectory:           "",
		ProjectScope:               defaultProjectScopeConstant,
		DatabasePath:               defaultHistoryDatabasePathConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the run command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationMinimumRunTimeKeyConstant:      defaults.MinimumRunTimeMilliseconds,
		rootKey + configurationKeySeparatorConstant + configurationMaximumRunTimeKeyConstant:      defaults.MaximumRunTimeMilliseconds,
		rootKey + configurationKeySeparatorConstant + configurationMaximumOutputLengthKeyConstant: defaults.MaximumOutputLength,
		rootKey + configurationKeySeparatorConstant + configurationMaximumDebugAttemptsKeyConst:   defaults.MaximumDebugAttempts,
		rootKey + configurationKeySeparatorConstant + configurationForceKeyConstant:               defaults.Force,
		rootKey + configurationKeySeparatorConstant + configurationReplayKeyConstant:              defaults.Replay,
		rootKey + configurationKeySeparatorConstant + configurationWorkingDirectoryKeyConstant:    defaults.WorkingDirectory,
		rootKey + configurationKeySeparatorConstant + configurationProjectScopeKeyConstant:        defaults.ProjectScope,
		rootKey + configurationKeySeparatorConstant + configurationDatabasePathKeyConstant:        defaults.DatabasePath,
	}
}

// ExecutorConfiguration converts the command configuration into the
// supervised executor's tunables.
func (configuration CommandConfiguration) ExecutorConfiguration() execshell.ExecutorConfiguration {
	return execshell.ExecutorConfiguration{
		TimeoutPolicy: execshell.TimeoutPolicy{
			MinimumRunTimeMilliseconds: configuration.MinimumRunTimeMilliseconds,
			MaximumRunTimeMilliseconds: configuration.MaximumRunTimeMilliseconds,
		},
		MaximumOutputLength:   configuration.MaximumOutputLength,
		ReplayPreviousResults: configuration.Replay,
	}
}

// RunnerConfiguration converts the command configuration into the workflow
// runner's tunables for callers embedding the retry loop.
func (configuration CommandConfiguration) RunnerConfiguration() workflow.RunnerConfiguration {
	return workflow.RunnerConfiguration{MaximumDebugAttempts: configuration.MaximumDebugAttempts}
}

// sanitize normalizes configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)
	sanitized.ProjectScope = strings.TrimSpace(configuration.ProjectScope)
	sanitized.DatabasePath = strings.TrimSpace(configuration.DatabasePath)
	return sanitized
}
