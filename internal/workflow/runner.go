package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/cmdpilot/internal/execshell"
)

const (
	// DefaultMaximumDebugAttempts bounds the automated debugging rounds per failure.
	DefaultMaximumDebugAttempts = 3
)

const (
	executorNotConfiguredMessageConstant     = "workflow requires a command executor"
	conversationNotConfiguredMessageConstant = "workflow requires an agent conversation"
	commandReviewFailedTemplateConstant      = "unable to review command run: %w"
	checkpointSaveFailedTemplateConstant     = "unable to save conversation checkpoint: %w"
	checkpointRestoreFailedTemplateConstant  = "unable to restore conversation checkpoint: %w"
	debuggingPlanFailedTemplateConstant      = "unable to obtain debugging plan: %w"
	interventionFailedTemplateConstant       = "unable to request human intervention: %w"
	unresolvedInterventionMessageConstant    = "It seems like I cannot debug this problem by myself. Can you please help me and try debugging it yourself?"
	recheckInterventionTemplateConstant      = "Can you check this again:\n%s?"
	unsatisfiedVerdictMessageConstant        = "command run rejected by conversation"
	debuggingRoundMessageConstant            = "starting debugging round"
	debuggingResolvedMessageConstant         = "debugging resolved the failure"
	debuggingExhaustedMessageConstant        = "debugging attempts exhausted"
	logFieldReviewedCommandTextConstant      = "command_text"
	logFieldConversationVerdictConstant      = "verdict"
	logFieldDebugAttemptNumberConstant       = "attempt"
	logFieldDebugCheckpointConstant          = "checkpoint_identifier"
)

// RunnerConfiguration carries the tunables of the retry loop.
type RunnerConfiguration struct {
	// MaximumDebugAttempts caps the debugging rounds spent on one failure.
	MaximumDebugAttempts int
}

// DefaultRunnerConfiguration returns the baseline workflow tunables.
func DefaultRunnerConfiguration() RunnerConfiguration {
	return RunnerConfiguration{MaximumDebugAttempts: DefaultMaximumDebugAttempts}
}

// RunnerDependencies groups the collaborators of CommandRunner. PlanExecutor
// and InterventionRequester are optional; absent collaborators end their
// stage of the loop unsuccessfully without failing it.
type RunnerDependencies struct {
	Executor              CommandExecutor
	Conversation          AgentConversation
	PlanExecutor          DebuggingPlanExecutor
	InterventionRequester HumanInterventionRequester
}

// CommandRunner executes commands and drives the conversational review and
// debugging loop over their results.
type CommandRunner struct {
	logger                *zap.Logger
	configuration         RunnerConfiguration
	executor              CommandExecutor
	conversation          AgentConversation
	planExecutor          DebuggingPlanExecutor
	interventionRequester HumanInterventionRequester
}

// NewCommandRunner assembles a runner around the provided collaborators.
func NewCommandRunner(logger *zap.Logger, configuration RunnerConfiguration, dependencies RunnerDependencies) (*CommandRunner, error) {
	if logger == nil {
		return nil, execshell.ErrLoggerNotConfigured
	}
	if dependencies.Executor == nil {
		return nil, fmt.Errorf(executorNotConfiguredMessageConstant)
	}
	if dependencies.Conversation == nil {
		return nil, fmt.Errorf(conversationNotConfiguredMessageConstant)
	}

	if configuration.MaximumDebugAttempts <= 0 {
		configuration.MaximumDebugAttempts = DefaultMaximumDebugAttempts
	}

	return &CommandRunner{
		logger:                logger,
		configuration:         configuration,
		executor:              dependencies.Executor,
		conversation:          dependencies.Conversation,
		planExecutor:          dependencies.PlanExecutor,
		interventionRequester: dependencies.InterventionRequester,
	}, nil
}

// ExecuteAndReview runs the invocation and submits its labeled result text to
// the conversation. It returns the result text together with the
// conversation's response.
func (runner *CommandRunner) ExecuteAndReview(executionContext context.Context, invocation execshell.CommandInvocation) (string, string, error) {
	result, executionError := runner.executor.Execute(executionContext, invocation)
	if executionError != nil {
		return "", "", executionError
	}

	reviewResponse, reviewError := runner.conversation.SendMessage(executionContext, RanCommandPromptNameConstant, PromptPayload{
		payloadKeyCLIResponseConstant: result.ResultText,
		payloadKeyCommandConstant:     invocation.CommandText,
	})
	if reviewError != nil {
		return result.ResultText, "", fmt.Errorf(commandReviewFailedTemplateConstant, reviewError)
	}

	return result.ResultText, reviewResponse, nil
}

// RunUntilSuccess runs the invocation, asks the conversation for a verdict,
// and on anything but an accepting verdict drives the debugging loop for the
// failing command. The additional message is forwarded to the review prompt
// when present.
func (runner *CommandRunner) RunUntilSuccess(executionContext context.Context, invocation execshell.CommandInvocation, additionalMessage string) error {
	result, executionError := runner.executor.Execute(executionContext, invocation)
	if executionError != nil {
		return executionError
	}

	reviewPayload := PromptPayload{
		payloadKeyCLIResponseConstant: result.ResultText,
		payloadKeyCommandConstant:     invocation.CommandText,
	}
	if len(additionalMessage) > 0 {
		reviewPayload[payloadKeyAdditionalMessageConstant] = additionalMessage
	}

	verdict, reviewError := runner.conversation.SendMessage(executionContext, RanCommandPromptNameConstant, reviewPayload)
	if reviewError != nil {
		return fmt.Errorf(commandReviewFailedTemplateConstant, reviewError)
	}

	if verdict == SuccessVerdictConstant {
		return nil
	}

	runner.logger.Info(
		unsatisfiedVerdictMessageConstant,
		zap.String(logFieldReviewedCommandTextConstant, invocation.CommandText),
		zap.String(logFieldConversationVerdictConstant, verdict),
	)

	_, debuggingError := runner.Debug(executionContext, &invocation, "", "")
	return debuggingError
}

// Debug spends up to MaximumDebugAttempts rounds asking the conversation for
// a debugging plan and applying it. The conversation is rewound to a saved
// checkpoint before each round so every plan starts from the same state. When
// every round fails the configured intervention requester is consulted.
func (runner *CommandRunner) Debug(executionContext context.Context, failingCommand *execshell.CommandInvocation, userInput string, issueDescription string) (bool, error) {
	checkpointIdentifier := uuid.NewString()
	if saveError := runner.conversation.SaveCheckpoint(executionContext, checkpointIdentifier); saveError != nil {
		return false, fmt.Errorf(checkpointSaveFailedTemplateConstant, saveError)
	}

	debuggingPayload := PromptPayload{
		payloadKeyUserInputConstant:        userInput,
		payloadKeyIssueDescriptionConstant: issueDescription,
	}
	if failingCommand != nil {
		debuggingPayload[payloadKeyCommandConstant] = failingCommand.CommandText
	}

	resolved := false
	for attemptNumber := 1; attemptNumber <= runner.configuration.MaximumDebugAttempts && !resolved; attemptNumber++ {
		if restoreError := runner.conversation.RestoreCheckpoint(executionContext, checkpointIdentifier); restoreError != nil {
			return false, fmt.Errorf(checkpointRestoreFailedTemplateConstant, restoreError)
		}

		runner.logger.Info(
			debuggingRoundMessageConstant,
			zap.Int(logFieldDebugAttemptNumberConstant, attemptNumber),
			zap.String(logFieldDebugCheckpointConstant, checkpointIdentifier),
		)

		debuggingPlan, planError := runner.conversation.SendMessage(executionContext, DebugPromptNameConstant, debuggingPayload)
		if planError != nil {
			return false, fmt.Errorf(debuggingPlanFailedTemplateConstant, planError)
		}

		if runner.planExecutor == nil {
			break
		}

		planResolved, planExecutionError := runner.planExecutor.ExecutePlan(executionContext, runner.conversation, debuggingPlan, failingCommand)
		if planExecutionError != nil {
			return false, planExecutionError
		}
		resolved = planResolved
	}

	if resolved {
		runner.logger.Info(debuggingResolvedMessageConstant, zap.String(logFieldDebugCheckpointConstant, checkpointIdentifier))
		return true, nil
	}

	runner.logger.Info(debuggingExhaustedMessageConstant, zap.String(logFieldDebugCheckpointConstant, checkpointIdentifier))

	if runner.interventionRequester != nil {
		interventionMessage := unresolvedInterventionMessageConstant
		if len(issueDescription) > 0 {
			interventionMessage = fmt.Sprintf(recheckInterventionTemplateConstant, issueDescription)
		}
		if interventionError := runner.interventionRequester.RequestIntervention(executionContext, interventionMessage, failingCommand); interventionError != nil {
			return false, fmt.Errorf(interventionFailedTemplateConstant, interventionError)
		}
	}

	return false, nil
}
