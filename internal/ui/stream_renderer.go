package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/temirov/cmdpilot/internal/utils"
)

const (
	standardOutputLinePrefixConstant = "CLI OUTPUT:"
	standardErrorLinePrefixConstant  = "CLI ERROR:"
)

// ConsoleStreamRenderer echoes drained process output incrementally with a
// per-stream prefix so operators can follow a running command live. It
// implements execshell.StreamObserver.
type ConsoleStreamRenderer struct {
	outputWriter io.Writer
}

// NewConsoleStreamRenderer wraps the provided writer in a flushing writer so
// partial output appears immediately. A nil writer falls back to stdout.
func NewConsoleStreamRenderer(outputWriter io.Writer) *ConsoleStreamRenderer {
	if outputWriter == nil {
		outputWriter = os.Stdout
	}
	return &ConsoleStreamRenderer{outputWriter: utils.NewFlushingWriter(outputWriter)}
}

// StandardOutputLineReceived echoes one stdout line. Lines arrive with their
// trailing newline preserved.
func (renderer *ConsoleStreamRenderer) StandardOutputLineReceived(outputLine string) {
	fmt.Fprintf(renderer.outputWriter, "%s%s", standardOutputLinePrefixConstant, outputLine)
}

// StandardErrorLineReceived echoes one stderr line.
func (renderer *ConsoleStreamRenderer) StandardErrorLineReceived(outputLine string) {
	fmt.Fprintf(renderer.outputWriter, "%s%s", standardErrorLinePrefixConstant, outputLine)
}
