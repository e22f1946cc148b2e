package workflow

import (
	"context"

	"github.com/temirov/cmdpilot/internal/execshell"
)

const (
	// RanCommandPromptNameConstant identifies the prompt reviewing a finished command run.
	RanCommandPromptNameConstant = "dev_ops/ran_command"
	// DebugPromptNameConstant identifies the prompt requesting a debugging plan.
	DebugPromptNameConstant = "dev_ops/debug"
	// SuccessVerdictConstant is the conversation response accepting a command run.
	SuccessVerdictConstant = "DONE"
)

const (
	payloadKeyCLIResponseConstant       = "cli_response"
	payloadKeyCommandConstant           = "command"
	payloadKeyAdditionalMessageConstant = "additional_message"
	payloadKeyUserInputConstant         = "user_input"
	payloadKeyIssueDescriptionConstant  = "issue_description"
)

// PromptPayload carries the template values of one prompt exchange.
type PromptPayload map[string]any

// AgentConversation is the language-model transport. SendMessage renders the
// named prompt with the payload and returns the model response. Checkpoints
// allow rewinding the conversation to a saved point between debugging rounds.
type AgentConversation interface {
	SendMessage(conversationContext context.Context, promptName string, payload PromptPayload) (string, error)
	SaveCheckpoint(conversationContext context.Context, checkpointIdentifier string) error
	RestoreCheckpoint(conversationContext context.Context, checkpointIdentifier string) error
}

// CommandExecutor abstracts the supervised executor so the loop can be tested
// without spawning processes.
type CommandExecutor interface {
	Execute(executionContext context.Context, invocation execshell.CommandInvocation) (execshell.ExecutionResult, error)
}

// DebuggingPlanExecutor applies one debugging plan produced by the
// conversation and reports whether it resolved the failure.
type DebuggingPlanExecutor interface {
	ExecutePlan(executionContext context.Context, conversation AgentConversation, debuggingPlan string, failingCommand *execshell.CommandInvocation) (bool, error)
}

// HumanInterventionRequester asks the operator for help once automated
// debugging attempts are exhausted.
type HumanInterventionRequester interface {
	RequestIntervention(interventionContext context.Context, message string, failingCommand *execshell.CommandInvocation) error
}
