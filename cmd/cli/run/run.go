// Package run assembles the Cobra command executing one supervised shell
// command with confirmation, history replay, and live output rendering.
package run

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/cmdpilot/internal/execshell"
	"github.com/temirov/cmdpilot/internal/history"
	"github.com/temirov/cmdpilot/internal/ui"
	flagutils "github.com/temirov/cmdpilot/internal/utils/flags"
	pathutils "github.com/temirov/cmdpilot/internal/utils/path"
)

const (
	commandUseConstant                    = "run [--] <command> [arguments...]"
	commandShortDescriptionConstant       = "Execute a shell command under supervision"
	commandLongDescriptionConstant        = "run spawns the command through the platform shell in its own process group, streams its output live, enforces the configured timeout, and records the labeled result for replay."
	commandExecutionErrorTemplateConstant = "command execution failed: %w"
	historyStoreErrorTemplateConstant     = "unable to open command history: %w"
	missingCommandMessageConstant         = "run requires a command to execute"
	flagTimeoutNameConstant               = "timeout"
	flagTimeoutDescriptionConstant        = "Maximum run time in milliseconds (0 runs to natural completion)"
	flagWorkingDirectoryNameConstant      = "workdir"
	flagWorkingDirectoryDescription       = "Working directory for the command"
	flagProjectScopeNameConstant          = "project"
	flagProjectScopeDescriptionConstant   = "Project scope for history lookups"
	flagForceNameConstant                 = "force"
	flagForceShorthandConstant            = "f"
	flagForceDescriptionConstant          = "Skip the interactive confirmation prompt"
	flagReplayNameConstant                = "replay"
	flagReplayDescriptionConstant         = "Reuse the stored result of a previous identical run"
	flagNoHistoryNameConstant             = "no-history"
	flagNoHistoryDescriptionConstant      = "Disable history persistence for this run"
)

var errMissingCommand = errors.New(missingCommandMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the run command configuration.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for supervised execution.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	// History overrides the SQLite store resolved from configuration, primarily for tests.
	History execshell.CommandHistory

	forceFlagValue  bool
	replayFlagValue bool
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().Int64(flagTimeoutNameConstant, 0, flagTimeoutDescriptionConstant)
	command.Flags().String(flagWorkingDirectoryNameConstant, "", flagWorkingDirectoryDescription)
	command.Flags().String(flagProjectScopeNameConstant, "", flagProjectScopeDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.forceFlagValue, flagForceNameConstant, flagForceShorthandConstant, false, flagForceDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.replayFlagValue, flagReplayNameConstant, "", false, flagReplayDescriptionConstant)
	command.Flags().Bool(flagNoHistoryNameConstant, false, flagNoHistoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	commandText := strings.TrimSpace(strings.Join(arguments, " "))
	if len(commandText) == 0 {
		return errMissingCommand
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	invocation := builder.buildInvocation(command, configuration, commandText)

	if command.Flags().Changed(flagReplayNameConstant) {
		configuration.Replay = builder.replayFlagValue
	}

	commandHistory, closeHistory, historyError := builder.resolveHistory(command, configuration, logger)
	if historyError != nil {
		return historyError
	}
	if closeHistory != nil {
		defer closeHistory()
	}

	executor, executorError := execshell.NewShellExecutor(logger, configuration.ExecutorConfiguration(), execshell.ExecutorDependencies{
		Prompter:       ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout()),
		History:        commandHistory,
		StreamObserver: ui.NewConsoleStreamRenderer(command.OutOrStdout()),
		EventObserver:  builder.resolveEventObserver(logger),
	})
	if executorError != nil {
		return executorError
	}

	executionContext, stopSignalHandling := signal.NotifyContext(command.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignalHandling()

	result, executionError := executor.Execute(executionContext, invocation)
	if executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}

	fmt.Fprintln(command.OutOrStdout(), result.ResultText)
	return nil
}

func (builder *CommandBuilder) buildInvocation(command *cobra.Command, configuration CommandConfiguration, commandText string) execshell.CommandInvocation {
	invocation := execshell.CommandInvocation{
		CommandText:      commandText,
		WorkingDirectory: configuration.WorkingDirectory,
		ProjectScope:     configuration.ProjectScope,
		Force:            configuration.Force,
	}

	timeoutValue, _ := command.Flags().GetInt64(flagTimeoutNameConstant)
	invocation.TimeoutMilliseconds = timeoutValue

	if command.Flags().Changed(flagWorkingDirectoryNameConstant) {
		workingDirectoryValue, _ := command.Flags().GetString(flagWorkingDirectoryNameConstant)
		invocation.WorkingDirectory = strings.TrimSpace(workingDirectoryValue)
	}
	if len(invocation.WorkingDirectory) > 0 {
		invocation.WorkingDirectory = pathutils.NewHomeExpander().Expand(invocation.WorkingDirectory)
	}

	if command.Flags().Changed(flagProjectScopeNameConstant) {
		projectScopeValue, _ := command.Flags().GetString(flagProjectScopeNameConstant)
		invocation.ProjectScope = strings.TrimSpace(projectScopeValue)
	}

	if command.Flags().Changed(flagForceNameConstant) {
		invocation.Force = builder.forceFlagValue
	}

	return invocation
}

func (builder *CommandBuilder) resolveHistory(command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger) (execshell.CommandHistory, func(), error) {
	historyDisabled, _ := command.Flags().GetBool(flagNoHistoryNameConstant)
	if historyDisabled {
		return nil, nil, nil
	}

	if builder.History != nil {
		return builder.History, nil, nil
	}

	if len(configuration.DatabasePath) == 0 {
		return nil, nil, nil
	}

	databasePath := pathutils.NewHomeExpander().Expand(configuration.DatabasePath)
	runStore, storeError := history.NewSQLiteRunStore(command.Context(), databasePath, logger)
	if storeError != nil {
		return nil, nil, fmt.Errorf(historyStoreErrorTemplateConstant, storeError)
	}

	return runStore, func() {
		closeError := runStore.Close()
		_ = closeError
	}, nil
}

func (builder *CommandBuilder) resolveEventObserver(logger *zap.Logger) execshell.CommandEventObserver {
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return ui.NewConsoleCommandEventLogger(logger)
	}
	return nil
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}
