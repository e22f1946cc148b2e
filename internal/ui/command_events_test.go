package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/cmdpilot/internal/execshell"
	"github.com/temirov/cmdpilot/internal/ui"
)

const (
	testCommandTextConstant                 = "npm install"
	testCommandWorkingDirectoryConstant     = "/tmp/project"
	testCommandLabelExpectationConstant     = "npm install (in /tmp/project)"
	testExecutionFailureReasonConstant      = "spawn failed"
	testStandardErrorTailConstant           = "npm ERR! missing script"
	testStartMessageExpectationConstant     = "Running " + testCommandLabelExpectationConstant
	testSuccessMessageExpectationConstant   = "Completed " + testCommandLabelExpectationConstant
	testTimeoutMessageExpectationConstant   = testCommandLabelExpectationConstant + " exceeded its timeout and was terminated: " + testStandardErrorTailConstant
	testInterruptMessageExpectationConstant = testCommandLabelExpectationConstant + " was interrupted before completion"
	testReplayMessageExpectationConstant    = "Reused the stored result of " + testCommandLabelExpectationConstant
	testExecutionFailureMessageExpectation  = testCommandLabelExpectationConstant + " failed: " + testExecutionFailureReasonConstant
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	invocation := execshell.CommandInvocation{
		CommandText:      testCommandTextConstant,
		WorkingDirectory: testCommandWorkingDirectoryConstant,
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(invocation)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(invocation, execshell.ExecutionResult{State: execshell.StateCompleted})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_timed_out",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(invocation, execshell.ExecutionResult{
					State:             execshell.StateTimedOut,
					StandardErrorTail: testStandardErrorTailConstant,
				})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testTimeoutMessageExpectationConstant,
		},
		{
			name: "command_interrupted",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(invocation, execshell.ExecutionResult{State: execshell.StateInterrupted})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testInterruptMessageExpectationConstant,
		},
		{
			name: "command_replayed",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(invocation, execshell.ExecutionResult{
					State:               execshell.StateCompleted,
					ReplayedFromHistory: true,
				})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testReplayMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(invocation, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}
