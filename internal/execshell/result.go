package execshell

import "fmt"

const (
	executionStateRunningLabelConstant     = "running"
	executionStateCompletedLabelConstant   = "completed"
	executionStateTimedOutLabelConstant    = "timed_out"
	executionStateInterruptedLabelConstant = "interrupted"
	executionStateUnknownLabelConstant     = "unknown"

	standardErrorSectionTemplateConstant  = "stderr:\n```\n%s\n```\n"
	standardOutputSectionTemplateConstant = "stdout:\n```\n%s\n```"
)

// ExecutionState identifies the terminal state of a supervised command.
type ExecutionState int

// Supervision states; StateRunning is the only non-terminal state.
const (
	StateRunning ExecutionState = iota
	StateCompleted
	StateTimedOut
	StateInterrupted
)

// String returns the lowercase label for the execution state.
func (state ExecutionState) String() string {
	switch state {
	case StateRunning:
		return executionStateRunningLabelConstant
	case StateCompleted:
		return executionStateCompletedLabelConstant
	case StateTimedOut:
		return executionStateTimedOutLabelConstant
	case StateInterrupted:
		return executionStateInterruptedLabelConstant
	default:
		return executionStateUnknownLabelConstant
	}
}

// ExecutionResult is the terminal value produced for every invocation that spawned.
type ExecutionResult struct {
	// ResultText is the labeled, tail-truncated combination of both streams.
	ResultText string
	// StandardOutputTail holds the retained tail of standard output.
	StandardOutputTail string
	// StandardErrorTail holds the retained tail of standard error.
	StandardErrorTail string
	// State records how the supervision loop ended.
	State ExecutionState
	// ReplayedFromHistory marks results restored from a prior identical invocation.
	ReplayedFromHistory bool
}

// buildResultText assembles the labeled result sections. The stderr section is
// omitted entirely when standard error produced no output.
func buildResultText(standardOutputTail string, standardErrorTail string) string {
	resultText := ""
	if len(standardErrorTail) > 0 {
		resultText = fmt.Sprintf(standardErrorSectionTemplateConstant, standardErrorTail)
	}
	resultText += fmt.Sprintf(standardOutputSectionTemplateConstant, standardOutputTail)
	return resultText
}
