package execshell

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	confirmationFailedTemplateConstant      = "unable to confirm command execution: %w"
	historyLookupFailedMessageConstant      = "history lookup failed"
	historyPersistenceFailedMessageConstant = "history persistence failed"
	historyReplayMessageConstant            = "restoring result of previous identical run"
	executionFinishedMessageConstant        = "command execution finished"
	logFieldInvocationCommandTextConstant   = "command_text"
	logFieldEffectiveTimeoutConstant        = "timeout_milliseconds"
	logFieldFinalExecutionStateConstant     = "execution_state"
	logFieldRetainedOutputLengthConstant    = "retained_output_length"
	logFieldHistoryLookupProjectKeyConstant = "project_scope"
	logFieldHistoryLookupCommandKeyConstant = "command_text"
	confirmationDeclinedLogMessageConstant  = "command execution declined by confirmation hook"
	logFieldDeclinedCommandTextKeyConstant  = "command_text"
	logFieldSupervisedProcessNumberConstant = "process_identifier"
	supervisionStartedDebugMessageConstant  = "supervision loop started"
)

// ConfirmationPrompter obtains explicit interactive acknowledgment before a
// command is spawned. Implementations block until the operator answers.
type ConfirmationPrompter interface {
	ConfirmExecution(commandText string, timeoutMilliseconds int64) (bool, error)
}

// CommandHistory restores and persists command results keyed by project scope
// and command text. Lookup returns the stored result text and whether a prior
// run exists.
type CommandHistory interface {
	LookupRun(executionContext context.Context, projectScope string, commandText string) (string, bool, error)
	RecordRun(executionContext context.Context, projectScope string, commandText string, resultText string) error
}

// ExecutorConfiguration carries the tunables of the supervised executor.
type ExecutorConfiguration struct {
	// TimeoutPolicy clamps requested timeouts.
	TimeoutPolicy TimeoutPolicy
	// MaximumOutputLength caps the retained characters per stream.
	MaximumOutputLength int
	// ReplayPreviousResults returns persisted results for identical invocations without spawning.
	ReplayPreviousResults bool
}

// DefaultExecutorConfiguration returns the baseline executor tunables.
func DefaultExecutorConfiguration() ExecutorConfiguration {
	return ExecutorConfiguration{
		TimeoutPolicy:       DefaultTimeoutPolicy(),
		MaximumOutputLength: DefaultMaximumOutputLength,
	}
}

// ExecutorDependencies groups the optional collaborators of ShellExecutor.
// Absent collaborators degrade gracefully: no prompter means no confirmation
// gate, no history means no replay or persistence, no observers means silent
// execution.
type ExecutorDependencies struct {
	Supervisor     *ProcessSupervisor
	Terminator     ProcessTerminator
	Prompter       ConfirmationPrompter
	History        CommandHistory
	StreamObserver StreamObserver
	EventObserver  CommandEventObserver
}

// ShellExecutor coordinates confirmation, history replay, spawning,
// supervision, and result assembly for shell command invocations.
type ShellExecutor struct {
	logger         *zap.Logger
	configuration  ExecutorConfiguration
	supervisor     *ProcessSupervisor
	terminator     ProcessTerminator
	prompter       ConfirmationPrompter
	history        CommandHistory
	streamObserver StreamObserver
	eventObserver  CommandEventObserver
}

// NewShellExecutor assembles an executor around the provided logger,
// configuration, and collaborators.
func NewShellExecutor(logger *zap.Logger, configuration ExecutorConfiguration, dependencies ExecutorDependencies) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	if configuration.MaximumOutputLength <= 0 {
		configuration.MaximumOutputLength = DefaultMaximumOutputLength
	}

	executor := &ShellExecutor{
		logger:         logger,
		configuration:  configuration,
		supervisor:     dependencies.Supervisor,
		terminator:     dependencies.Terminator,
		prompter:       dependencies.Prompter,
		history:        dependencies.History,
		streamObserver: dependencies.StreamObserver,
		eventObserver:  dependencies.EventObserver,
	}

	if executor.supervisor == nil {
		executor.supervisor = NewProcessSupervisor(logger)
	}
	if executor.terminator == nil {
		executor.terminator = NewPlatformTerminator()
	}
	if executor.streamObserver == nil {
		executor.streamObserver = noopStreamObserver{}
	}
	if executor.eventObserver == nil {
		executor.eventObserver = noopCommandEventObserver{}
	}

	return executor, nil
}

// Execute runs one supervised command invocation to a terminal state.
//
// Timeout and external interruption are folded into the returned result so
// callers always receive labeled output text to reason about; only spawn
// failures, declined confirmations, and blank commands surface as errors.
func (executor *ShellExecutor) Execute(invocationContext context.Context, invocation CommandInvocation) (ExecutionResult, error) {
	commandText := invocation.SanitizedCommandText()
	if len(commandText) == 0 {
		return ExecutionResult{}, ErrEmptyCommand
	}

	effectiveTimeout := executor.configuration.TimeoutPolicy.Normalize(invocation.TimeoutMilliseconds)

	if !invocation.Force && executor.prompter != nil {
		confirmed, confirmationError := executor.prompter.ConfirmExecution(commandText, effectiveTimeout)
		if confirmationError != nil {
			return ExecutionResult{}, fmt.Errorf(confirmationFailedTemplateConstant, confirmationError)
		}
		if !confirmed {
			executor.logger.Info(
				confirmationDeclinedLogMessageConstant,
				zap.String(logFieldDeclinedCommandTextKeyConstant, commandText),
			)
			return ExecutionResult{}, ErrCommandDeclined
		}
	}

	if replayedResult, replayed := executor.lookupPreviousRun(invocationContext, invocation.ProjectScope, commandText); replayed {
		return replayedResult, nil
	}

	supervisionContext, cancelSupervision := context.WithCancel(invocationContext)
	defer cancelSupervision()

	executor.eventObserver.CommandStarted(invocation)

	process, spawnError := executor.supervisor.Spawn(supervisionContext, commandText, invocation.WorkingDirectory)
	if spawnError != nil {
		wrappedError := CommandSpawnError{CommandText: commandText, Cause: spawnError}
		executor.eventObserver.CommandExecutionFailed(invocation, wrappedError)
		return ExecutionResult{}, wrappedError
	}

	executor.logger.Debug(
		supervisionStartedDebugMessageConstant,
		zap.Int(logFieldSupervisedProcessNumberConstant, process.ProcessIdentifier()),
		zap.Int64(logFieldEffectiveTimeoutConstant, effectiveTimeout),
	)

	controller := NewExecutionController(executor.logger, executor.terminator, executor.streamObserver, executor.configuration.MaximumOutputLength)
	outcome := controller.Supervise(supervisionContext, process, effectiveTimeout)

	result := ExecutionResult{
		ResultText:         buildResultText(outcome.StandardOutputTail, outcome.StandardErrorTail),
		StandardOutputTail: outcome.StandardOutputTail,
		StandardErrorTail:  outcome.StandardErrorTail,
		State:              outcome.State,
	}

	// Only completed runs are recorded so replay never serves a truncated result.
	if result.State == StateCompleted {
		executor.persistRun(invocationContext, invocation.ProjectScope, commandText, result.ResultText)
	}

	executor.logger.Info(
		executionFinishedMessageConstant,
		zap.String(logFieldInvocationCommandTextConstant, commandText),
		zap.String(logFieldFinalExecutionStateConstant, result.State.String()),
		zap.Int(logFieldRetainedOutputLengthConstant, len(result.ResultText)),
	)

	executor.eventObserver.CommandCompleted(invocation, result)

	return result, nil
}

// lookupPreviousRun consults the history collaborator. Lookup failures are
// logged and treated as a miss so a broken store never blocks execution.
func (executor *ShellExecutor) lookupPreviousRun(invocationContext context.Context, projectScope string, commandText string) (ExecutionResult, bool) {
	if executor.history == nil || !executor.configuration.ReplayPreviousResults {
		return ExecutionResult{}, false
	}

	storedResultText, runExists, lookupError := executor.history.LookupRun(invocationContext, projectScope, commandText)
	if lookupError != nil {
		executor.logger.Warn(
			historyLookupFailedMessageConstant,
			zap.String(logFieldHistoryLookupProjectKeyConstant, projectScope),
			zap.String(logFieldHistoryLookupCommandKeyConstant, commandText),
			zap.Error(lookupError),
		)
		return ExecutionResult{}, false
	}
	if !runExists {
		return ExecutionResult{}, false
	}

	executor.logger.Info(
		historyReplayMessageConstant,
		zap.String(logFieldHistoryLookupCommandKeyConstant, commandText),
	)

	return ExecutionResult{
		ResultText:          storedResultText,
		State:               StateCompleted,
		ReplayedFromHistory: true,
	}, true
}

// persistRun records the result text for later replay. Persistence failures
// are logged and swallowed; a broken store must not fail the invocation.
func (executor *ShellExecutor) persistRun(invocationContext context.Context, projectScope string, commandText string, resultText string) {
	if executor.history == nil {
		return
	}

	persistenceError := executor.history.RecordRun(invocationContext, projectScope, commandText, resultText)
	if persistenceError != nil {
		executor.logger.Warn(
			historyPersistenceFailedMessageConstant,
			zap.String(logFieldHistoryLookupCommandKeyConstant, commandText),
			zap.Error(persistenceError),
		)
	}
}
