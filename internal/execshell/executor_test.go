//go:build !windows

package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/cmdpilot/internal/execshell"
)

const (
	testExecutorEchoCommandConstant           = "echo hello"
	testExecutorEchoResultConstant            = "stdout:\n```\nhello\n\n```"
	testExecutorSilentCommandConstant         = "true"
	testExecutorSilentResultConstant          = "stdout:\n```\n\n```"
	testExecutorSleepCommandConstant          = "sleep 5 && echo done"
	testExecutorPartialOutputCommandConstant  = "echo partial && sleep 5 && echo done"
	testExecutorPartialOutputTextConstant     = "partial"
	testExecutorInterleavedCommandConstant    = "for index in 1 2 3 4 5; do echo out$index; echo err$index 1>&2; done"
	testExecutorLineFloodCommandConstant      = "seq 1 10000"
	testExecutorLineFloodCapConstant          = 100
	testExecutorLineFloodTotalLinesConstant   = 10000
	testExecutorReplayCommandConstant         = "echo replayed-command"
	testExecutorReplayStoredResultConstant    = "stdout:\n```\nstored output\n\n```"
	testExecutorProjectScopeConstant          = "demo-project"
	testExecutorShortTimeoutMillisConstant    = 500
	testExecutorTimeoutUpperBoundConstant     = 4 * time.Second
	testExecutorInterruptionDelayConstant     = 300 * time.Millisecond
	testExecutorMissingDirectoryPathConstant  = "/nonexistent/working/directory"
	testExecutorPrompterFailureTextConstant   = "prompter unavailable"
	testExecutorRecordedRunsExpectedConstant  = 1
	testExecutorStandardErrorSectionTemplate  = "stderr:\n```\n%s\n```\n"
	testExecutorStandardOutputSectionTemplat  = "stdout:\n```\n%s\n```"
	testExecutorUnconstrainedTimeoutMinimum   = 100
	testExecutorUnconstrainedTimeoutMaximum   = 600000
	testExecutorHistoryLookupFailureMessage   = "history store unavailable"
	testExecutorDecliningPrompterCaseName     = "declining_prompter"
	testExecutorFailingPrompterCaseName       = "failing_prompter"
	testExecutorForcedInvocationCaseNameConst = "forced_invocation_skips_prompter"
)

type recordedCommandRun struct {
	projectScope string
	commandText  string
	resultText   string
}

type fakeCommandHistory struct {
	storedResults map[string]string
	lookupError   error
	recordedRuns  []recordedCommandRun
}

func historyKey(projectScope string, commandText string) string {
	return projectScope + "\x00" + commandText
}

func (history *fakeCommandHistory) LookupRun(_ context.Context, projectScope string, commandText string) (string, bool, error) {
	if history.lookupError != nil {
		return "", false, history.lookupError
	}
	storedResult, resultExists := history.storedResults[historyKey(projectScope, commandText)]
	return storedResult, resultExists, nil
}

func (history *fakeCommandHistory) RecordRun(_ context.Context, projectScope string, commandText string, resultText string) error {
	history.recordedRuns = append(history.recordedRuns, recordedCommandRun{
		projectScope: projectScope,
		commandText:  commandText,
		resultText:   resultText,
	})
	return nil
}

type scriptedPrompter struct {
	confirmationAnswer bool
	confirmationError  error
	promptedCommands   []string
}

func (prompter *scriptedPrompter) ConfirmExecution(commandText string, _ int64) (bool, error) {
	prompter.promptedCommands = append(prompter.promptedCommands, commandText)
	return prompter.confirmationAnswer, prompter.confirmationError
}

func newTestExecutor(testInstance *testing.T, configuration execshell.ExecutorConfiguration, dependencies execshell.ExecutorDependencies) *execshell.ShellExecutor {
	testInstance.Helper()

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), configuration, dependencies)
	require.NoError(testInstance, creationError)
	return executor
}

func unconstrainedTimeoutConfiguration() execshell.ExecutorConfiguration {
	configuration := execshell.DefaultExecutorConfiguration()
	configuration.TimeoutPolicy = execshell.TimeoutPolicy{
		MinimumRunTimeMilliseconds: testExecutorUnconstrainedTimeoutMinimum,
		MaximumRunTimeMilliseconds: testExecutorUnconstrainedTimeoutMaximum,
	}
	return configuration
}

func TestShellExecutorRequiresLogger(testInstance *testing.T) {
	_, creationError := execshell.NewShellExecutor(nil, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})
	require.ErrorIs(testInstance, creationError, execshell.ErrLoggerNotConfigured)
}

func TestShellExecutorRejectsBlankCommand(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})

	_, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{CommandText: "   "})
	require.ErrorIs(testInstance, executionError, execshell.ErrEmptyCommand)
}

func TestShellExecutorCompletesSimpleCommand(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{CommandText: testExecutorEchoCommandConstant})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateCompleted, result.State)
	require.Equal(testInstance, testExecutorEchoResultConstant, result.ResultText)
	require.Empty(testInstance, result.StandardErrorTail)
	require.False(testInstance, result.ReplayedFromHistory)
}

func TestShellExecutorTreatsSilentCompletionAsValid(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{CommandText: testExecutorSilentCommandConstant})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateCompleted, result.State)
	require.Equal(testInstance, testExecutorSilentResultConstant, result.ResultText)
}

func TestShellExecutorCapturesBothStreamsInOrder(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{CommandText: testExecutorInterleavedCommandConstant})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateCompleted, result.State)

	expectedStandardOutput := "out1\nout2\nout3\nout4\nout5\n"
	expectedStandardError := "err1\nerr2\nerr3\nerr4\nerr5\n"
	require.Equal(testInstance, expectedStandardOutput, result.StandardOutputTail)
	require.Equal(testInstance, expectedStandardError, result.StandardErrorTail)

	expectedResultText := fmt.Sprintf(testExecutorStandardErrorSectionTemplate, expectedStandardError) +
		fmt.Sprintf(testExecutorStandardOutputSectionTemplat, expectedStandardOutput)
	require.Equal(testInstance, expectedResultText, result.ResultText)
}

func TestShellExecutorRetainsOutputTailUnderCap(testInstance *testing.T) {
	configuration := execshell.DefaultExecutorConfiguration()
	configuration.MaximumOutputLength = testExecutorLineFloodCapConstant
	executor := newTestExecutor(testInstance, configuration, execshell.ExecutorDependencies{})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{CommandText: testExecutorLineFloodCommandConstant})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateCompleted, result.State)

	fullOutputBuilder := strings.Builder{}
	for lineNumber := 1; lineNumber <= testExecutorLineFloodTotalLinesConstant; lineNumber++ {
		fullOutputBuilder.WriteString(fmt.Sprintf("%d\n", lineNumber))
	}
	fullOutput := fullOutputBuilder.String()
	expectedTail := fullOutput[len(fullOutput)-testExecutorLineFloodCapConstant:]

	require.LessOrEqual(testInstance, len(result.StandardOutputTail), testExecutorLineFloodCapConstant)
	require.Equal(testInstance, expectedTail, result.StandardOutputTail)
}

func TestShellExecutorTimesOutLongRunningCommand(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, unconstrainedTimeoutConfiguration(), execshell.ExecutorDependencies{})

	executionStart := time.Now()
	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{
		CommandText:         testExecutorSleepCommandConstant,
		TimeoutMilliseconds: testExecutorShortTimeoutMillisConstant,
	})
	elapsedDuration := time.Since(executionStart)

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateTimedOut, result.State)
	require.NotContains(testInstance, result.StandardOutputTail, "done")
	require.Less(testInstance, elapsedDuration, testExecutorTimeoutUpperBoundConstant)
}

func TestShellExecutorRunsWithoutTimeoutToNaturalExit(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{CommandText: "sleep 1 && echo finished"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateCompleted, result.State)
	require.Equal(testInstance, "finished\n", result.StandardOutputTail)
}

func TestShellExecutorObservesExternalInterruption(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})

	invocationContext, cancelInvocation := context.WithCancel(context.Background())
	go func() {
		time.Sleep(testExecutorInterruptionDelayConstant)
		cancelInvocation()
	}()

	result, executionError := executor.Execute(invocationContext, execshell.CommandInvocation{CommandText: testExecutorSleepCommandConstant})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateInterrupted, result.State)
	require.NotContains(testInstance, result.StandardOutputTail, "done")
}

func TestShellExecutorSurfacesSpawnFailures(testInstance *testing.T) {
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{})

	_, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{
		CommandText:      testExecutorEchoCommandConstant,
		WorkingDirectory: testExecutorMissingDirectoryPathConstant,
	})

	spawnError := execshell.CommandSpawnError{}
	require.ErrorAs(testInstance, executionError, &spawnError)
	require.Equal(testInstance, testExecutorEchoCommandConstant, spawnError.CommandText)
}

func TestShellExecutorConfirmationGate(testInstance *testing.T) {
	testCases := []struct {
		name               string
		prompter           *scriptedPrompter
		force              bool
		expectError        error
		expectPrompted     bool
		expectExecuted     bool
		expectFailureText  string
		expectPromptErrors bool
	}{
		{
			name:           testExecutorDecliningPrompterCaseName,
			prompter:       &scriptedPrompter{confirmationAnswer: false},
			expectError:    execshell.ErrCommandDeclined,
			expectPrompted: true,
		},
		{
			name:               testExecutorFailingPrompterCaseName,
			prompter:           &scriptedPrompter{confirmationError: errors.New(testExecutorPrompterFailureTextConstant)},
			expectPrompted:     true,
			expectPromptErrors: true,
			expectFailureText:  testExecutorPrompterFailureTextConstant,
		},
		{
			name:           testExecutorForcedInvocationCaseNameConst,
			prompter:       &scriptedPrompter{confirmationAnswer: false},
			force:          true,
			expectPrompted: false,
			expectExecuted: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{
				Prompter: testCase.prompter,
			})

			result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{
				CommandText: testExecutorEchoCommandConstant,
				Force:       testCase.force,
			})

			if testCase.expectPrompted {
				require.Len(testInstance, testCase.prompter.promptedCommands, 1)
			} else {
				require.Empty(testInstance, testCase.prompter.promptedCommands)
			}

			switch {
			case testCase.expectError != nil:
				require.ErrorIs(testInstance, executionError, testCase.expectError)
			case testCase.expectPromptErrors:
				require.Error(testInstance, executionError)
				require.Contains(testInstance, executionError.Error(), testCase.expectFailureText)
			default:
				require.NoError(testInstance, executionError)
			}

			if testCase.expectExecuted {
				require.Equal(testInstance, testExecutorEchoResultConstant, result.ResultText)
			}
		})
	}
}

func TestShellExecutorReplaysStoredResults(testInstance *testing.T) {
	commandHistory := &fakeCommandHistory{
		storedResults: map[string]string{
			historyKey(testExecutorProjectScopeConstant, testExecutorReplayCommandConstant): testExecutorReplayStoredResultConstant,
		},
	}

	configuration := execshell.DefaultExecutorConfiguration()
	configuration.ReplayPreviousResults = true
	executor := newTestExecutor(testInstance, configuration, execshell.ExecutorDependencies{History: commandHistory})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{
		CommandText:  testExecutorReplayCommandConstant,
		ProjectScope: testExecutorProjectScopeConstant,
	})

	require.NoError(testInstance, executionError)
	require.True(testInstance, result.ReplayedFromHistory)
	require.Equal(testInstance, testExecutorReplayStoredResultConstant, result.ResultText)
	require.Empty(testInstance, commandHistory.recordedRuns)
}

func TestShellExecutorPersistsResultsAfterExecution(testInstance *testing.T) {
	commandHistory := &fakeCommandHistory{}
	executor := newTestExecutor(testInstance, execshell.DefaultExecutorConfiguration(), execshell.ExecutorDependencies{History: commandHistory})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{
		CommandText:  testExecutorEchoCommandConstant,
		ProjectScope: testExecutorProjectScopeConstant,
	})

	require.NoError(testInstance, executionError)
	require.Len(testInstance, commandHistory.recordedRuns, testExecutorRecordedRunsExpectedConstant)
	require.Equal(testInstance, testExecutorProjectScopeConstant, commandHistory.recordedRuns[0].projectScope)
	require.Equal(testInstance, testExecutorEchoCommandConstant, commandHistory.recordedRuns[0].commandText)
	require.Equal(testInstance, result.ResultText, commandHistory.recordedRuns[0].resultText)
}

func TestShellExecutorDoesNotPersistTimedOutRuns(testInstance *testing.T) {
	commandHistory := &fakeCommandHistory{}
	executor := newTestExecutor(testInstance, unconstrainedTimeoutConfiguration(), execshell.ExecutorDependencies{History: commandHistory})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{
		CommandText:         testExecutorPartialOutputCommandConstant,
		ProjectScope:        testExecutorProjectScopeConstant,
		TimeoutMilliseconds: testExecutorShortTimeoutMillisConstant,
	})

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, execshell.StateTimedOut, result.State)
	require.Contains(testInstance, result.StandardOutputTail, testExecutorPartialOutputTextConstant)
	require.Empty(testInstance, commandHistory.recordedRuns)
}

func TestShellExecutorTreatsHistoryLookupFailureAsMiss(testInstance *testing.T) {
	commandHistory := &fakeCommandHistory{lookupError: errors.New(testExecutorHistoryLookupFailureMessage)}

	configuration := execshell.DefaultExecutorConfiguration()
	configuration.ReplayPreviousResults = true
	executor := newTestExecutor(testInstance, configuration, execshell.ExecutorDependencies{History: commandHistory})

	result, executionError := executor.Execute(context.Background(), execshell.CommandInvocation{CommandText: testExecutorEchoCommandConstant})
	require.NoError(testInstance, executionError)
	require.False(testInstance, result.ReplayedFromHistory)
	require.Equal(testInstance, testExecutorEchoResultConstant, result.ResultText)
}
