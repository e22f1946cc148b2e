package execshell

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

const (
	processStartedMessageConstant      = "process started"
	logFieldProcessIdentifierConstant  = "process_identifier"
	logFieldSpawnedCommandTextConstant = "command_text"
)

// RunningProcess is the live operating system process owned by the supervisor.
// The handle and identifier are available before any blocking work so the
// terminator can act even if draining stalls.
type RunningProcess struct {
	processIdentifier   int
	processHandle       *os.Process
	standardOutputLines <-chan string
	standardErrorLines  <-chan string
	exited              chan struct{}
	streamClosers       []io.Closer
	closeStreamsOnce    sync.Once
}

// ProcessIdentifier returns the numeric identifier used for termination.
func (process *RunningProcess) ProcessIdentifier() int {
	return process.processIdentifier
}

// StandardOutputLines exposes the drained standard output stream.
func (process *RunningProcess) StandardOutputLines() <-chan string {
	return process.standardOutputLines
}

// StandardErrorLines exposes the drained standard error stream.
func (process *RunningProcess) StandardErrorLines() <-chan string {
	return process.standardErrorLines
}

// Exited is closed once the child process has been reaped.
func (process *RunningProcess) Exited() <-chan struct{} {
	return process.exited
}

// CloseStreams force-closes both pipe handles, unblocking any drainer still
// waiting on a stream that will never produce further data. Safe to call more
// than once.
func (process *RunningProcess) CloseStreams() {
	process.closeStreamsOnce.Do(func() {
		for _, streamCloser := range process.streamClosers {
			_ = streamCloser.Close()
		}
	})
}

// ProcessSupervisor launches shell commands and wires one drainer per output stream.
type ProcessSupervisor struct {
	logger *zap.Logger
}

// NewProcessSupervisor constructs a supervisor logging through the provided logger.
func NewProcessSupervisor(logger *zap.Logger) *ProcessSupervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessSupervisor{logger: logger}
}

// Spawn launches commandText through the platform shell inside its own process
// group and starts draining both output streams immediately. The returned
// RunningProcess carries the identifier needed for later termination. Launch
// failures surface as hard errors; nothing is retried here.
func (supervisor *ProcessSupervisor) Spawn(invocationContext context.Context, commandText string, workingDirectory string) (*RunningProcess, error) {
	shellArguments := shellCommandArguments(commandText)
	command := exec.Command(shellArguments[0], shellArguments[1:]...)
	if len(workingDirectory) > 0 {
		command.Dir = workingDirectory
	}
	configureProcessGroup(command)

	standardOutputStream, standardOutputError := command.StdoutPipe()
	if standardOutputError != nil {
		return nil, standardOutputError
	}
	standardErrorStream, standardErrorError := command.StderrPipe()
	if standardErrorError != nil {
		_ = standardOutputStream.Close()
		return nil, standardErrorError
	}

	if startError := command.Start(); startError != nil {
		_ = standardOutputStream.Close()
		_ = standardErrorStream.Close()
		return nil, startError
	}

	standardOutputDrainer := NewStreamDrainer(standardOutputStream)
	standardErrorDrainer := NewStreamDrainer(standardErrorStream)

	process := &RunningProcess{
		processIdentifier:   command.Process.Pid,
		processHandle:       command.Process,
		standardOutputLines: standardOutputDrainer.Lines(),
		standardErrorLines:  standardErrorDrainer.Lines(),
		exited:              make(chan struct{}),
		streamClosers:       []io.Closer{standardOutputStream, standardErrorStream},
	}

	supervisor.logger.Debug(
		processStartedMessageConstant,
		zap.Int(logFieldProcessIdentifierConstant, process.processIdentifier),
		zap.String(logFieldSpawnedCommandTextConstant, commandText),
	)

	go standardOutputDrainer.Run(invocationContext)
	go standardErrorDrainer.Run(invocationContext)

	go func() {
		_, _ = process.processHandle.Wait()
		close(process.exited)
	}()

	return process, nil
}
