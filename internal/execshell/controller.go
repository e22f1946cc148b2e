package execshell

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	finalDrainGracePeriodConstant = 100 * time.Millisecond

	terminationRequestedMessageConstant = "terminating process group"
	terminationFailedMessageConstant    = "process termination failed"
	logFieldExecutionStateConstant      = "execution_state"
	logFieldTerminatedProcessConstant   = "process_identifier"
)

// StreamObserver receives drained lines as they arrive so callers can render
// command output incrementally.
type StreamObserver interface {
	// StandardOutputLineReceived is invoked for every standard output line, trailing newline included.
	StandardOutputLineReceived(lineText string)
	// StandardErrorLineReceived is invoked for every standard error line, trailing newline included.
	StandardErrorLineReceived(lineText string)
}

// noopStreamObserver discards all stream notifications.
type noopStreamObserver struct{}

func (noopStreamObserver) StandardOutputLineReceived(string) {}
func (noopStreamObserver) StandardErrorLineReceived(string)  {}

// SupervisionOutcome captures the terminal state and retained output of one
// supervised run.
type SupervisionOutcome struct {
	State              ExecutionState
	StandardOutputTail string
	StandardErrorTail  string
}

// ExecutionController drives the supervision loop for a single running
// process: it receives lines from both stream channels, enforces the timeout,
// observes external interruption, and fires the terminator on abort.
type ExecutionController struct {
	logger              *zap.Logger
	terminator          ProcessTerminator
	streamObserver      StreamObserver
	maximumOutputLength int
}

// NewExecutionController constructs a controller. A nil terminator falls back
// to the platform terminator and a nil observer to a silent one.
func NewExecutionController(logger *zap.Logger, terminator ProcessTerminator, streamObserver StreamObserver, maximumOutputLength int) *ExecutionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if terminator == nil {
		terminator = NewPlatformTerminator()
	}
	if streamObserver == nil {
		streamObserver = noopStreamObserver{}
	}
	return &ExecutionController{
		logger:              logger,
		terminator:          terminator,
		streamObserver:      streamObserver,
		maximumOutputLength: maximumOutputLength,
	}
}

// Supervise runs the control loop until a terminal state is reached.
//
// Each stream channel delivers every line exactly once, in write order, so no
// duplicate suppression is needed when collecting the final batch after
// process exit. Timeout and cancellation both route through the terminator and
// stop draining; the loop finishes in finite time for every invocation.
func (controller *ExecutionController) Supervise(invocationContext context.Context, process *RunningProcess, timeoutMilliseconds int64) SupervisionOutcome {
	standardOutputBuffer := NewTailBuffer(controller.maximumOutputLength)
	standardErrorBuffer := NewTailBuffer(controller.maximumOutputLength)

	standardOutputLines := process.StandardOutputLines()
	standardErrorLines := process.StandardErrorLines()

	var timeoutChannel <-chan time.Time
	if timeoutMilliseconds > 0 {
		timeoutTimer := time.NewTimer(time.Duration(timeoutMilliseconds) * time.Millisecond)
		defer timeoutTimer.Stop()
		timeoutChannel = timeoutTimer.C
	}

	state := StateRunning
	for state == StateRunning {
		select {
		case lineText, channelOpen := <-standardOutputLines:
			if !channelOpen {
				standardOutputLines = nil
				continue
			}
			standardOutputBuffer.Append(lineText)
			controller.streamObserver.StandardOutputLineReceived(lineText)

		case lineText, channelOpen := <-standardErrorLines:
			if !channelOpen {
				standardErrorLines = nil
				continue
			}
			standardErrorBuffer.Append(lineText)
			controller.streamObserver.StandardErrorLineReceived(lineText)

		case <-process.Exited():
			controller.collectFinalLines(standardOutputLines, standardErrorLines, standardOutputBuffer, standardErrorBuffer)
			state = StateCompleted

		case <-timeoutChannel:
			state = StateTimedOut
			controller.terminate(process, state)

		case <-invocationContext.Done():
			state = StateInterrupted
			controller.terminate(process, state)
		}
	}

	process.CloseStreams()

	return SupervisionOutcome{
		State:              state,
		StandardOutputTail: standardOutputBuffer.String(),
		StandardErrorTail:  standardErrorBuffer.String(),
	}
}

// collectFinalLines drains whatever both streams still hold after process
// exit. The drainers close their channels on end-of-data, so the loop normally
// finishes as soon as both channels are closed; the grace timer bounds the
// wait when a surviving descendant keeps a pipe open.
func (controller *ExecutionController) collectFinalLines(standardOutputLines <-chan string, standardErrorLines <-chan string, standardOutputBuffer *TailBuffer, standardErrorBuffer *TailBuffer) {
	graceTimer := time.NewTimer(finalDrainGracePeriodConstant)
	defer graceTimer.Stop()

	for standardOutputLines != nil || standardErrorLines != nil {
		select {
		case lineText, channelOpen := <-standardOutputLines:
			if !channelOpen {
				standardOutputLines = nil
				continue
			}
			standardOutputBuffer.Append(lineText)
			controller.streamObserver.StandardOutputLineReceived(lineText)

		case lineText, channelOpen := <-standardErrorLines:
			if !channelOpen {
				standardErrorLines = nil
				continue
			}
			standardErrorBuffer.Append(lineText)
			controller.streamObserver.StandardErrorLineReceived(lineText)

		case <-graceTimer.C:
			return
		}
	}
}

// terminate fires the platform terminator. Termination failures are logged and
// swallowed: the process is either already gone or cannot be stopped by this
// component, and neither outcome is actionable for the caller.
func (controller *ExecutionController) terminate(process *RunningProcess, state ExecutionState) {
	controller.logger.Debug(
		terminationRequestedMessageConstant,
		zap.Int(logFieldTerminatedProcessConstant, process.ProcessIdentifier()),
		zap.String(logFieldExecutionStateConstant, state.String()),
	)

	terminationError := controller.terminator.Terminate(process.ProcessIdentifier())
	if terminationError != nil {
		controller.logger.Warn(
			terminationFailedMessageConstant,
			zap.Int(logFieldTerminatedProcessConstant, process.ProcessIdentifier()),
			zap.Error(terminationError),
		)
	}
}
