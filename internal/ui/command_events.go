package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/cmdpilot/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s"
	commandCompletedMessageTemplateConstant        = "Completed %s"
	commandTimedOutMessageTemplateConstant         = "%s exceeded its timeout and was terminated"
	commandInterruptedMessageTemplateConstant      = "%s was interrupted before completion"
	commandReplayedMessageTemplateConstant         = "Reused the stored result of %s"
	commandExecutionFailureMessageTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant                   = "%s%s"
	workingDirectorySuffixTemplateConstant         = " (in %s)"
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
	emptyStringConstant                            = ""
)

// CommandEventFormatter builds human-readable messages for command lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(invocation execshell.CommandInvocation) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(invocation))
}

// BuildCompletionMessage formats the message describing a finished command
// based on the terminal state of its supervision.
func (formatter CommandEventFormatter) BuildCompletionMessage(invocation execshell.CommandInvocation, result execshell.ExecutionResult) string {
	commandLabel := formatter.formatCommandLabel(invocation)
	if result.ReplayedFromHistory {
		return fmt.Sprintf(commandReplayedMessageTemplateConstant, commandLabel)
	}

	switch result.State {
	case execshell.StateTimedOut:
		return fmt.Sprintf(commandTimedOutMessageTemplateConstant, commandLabel) + formatter.formatStandardErrorSuffix(result.StandardErrorTail)
	case execshell.StateInterrupted:
		return fmt.Sprintf(commandInterruptedMessageTemplateConstant, commandLabel)
	default:
		return fmt.Sprintf(commandCompletedMessageTemplateConstant, commandLabel)
	}
}

// BuildExecutionFailureMessage formats the message describing a spawn failure.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(invocation execshell.CommandInvocation, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(invocation), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(invocation execshell.CommandInvocation) string {
	return fmt.Sprintf(commandLabelTemplateConstant, invocation.SanitizedCommandText(), formatter.formatWorkingDirectorySuffix(invocation))
}

func (formatter CommandEventFormatter) formatWorkingDirectorySuffix(invocation execshell.CommandInvocation) string {
	trimmedWorkingDirectory := strings.TrimSpace(invocation.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardErrorTail string) string {
	trimmedStandardError := strings.TrimSpace(standardErrorTail)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(invocation execshell.CommandInvocation) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(invocation))
}

// CommandCompleted implements execshell.CommandEventObserver by logging terminal supervision states.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(invocation execshell.CommandInvocation, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	completionMessage := eventLogger.formatter.BuildCompletionMessage(invocation, result)
	if result.State == execshell.StateCompleted || result.ReplayedFromHistory {
		eventLogger.logger.Info(completionMessage)
		return
	}
	eventLogger.logger.Warn(completionMessage)
}

// CommandExecutionFailed implements execshell.CommandEventObserver by logging spawn failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(invocation execshell.CommandInvocation, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(invocation, failure))
}
