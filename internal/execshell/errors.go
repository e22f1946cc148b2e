package execshell

import (
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant = "logger not configured"
	emptyCommandMessageConstant        = "command text is empty"
	commandDeclinedMessageConstant     = "command execution declined"
	spawnFailureTemplateConstant       = "unable to spawn command %q: %s"
)

// Sentinel errors surfaced by ShellExecutor.
var (
	// ErrLoggerNotConfigured reports a missing zap logger during construction.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrEmptyCommand reports an invocation whose command text is blank.
	ErrEmptyCommand = errors.New(emptyCommandMessageConstant)
	// ErrCommandDeclined reports that the confirmation hook rejected the invocation.
	ErrCommandDeclined = errors.New(commandDeclinedMessageConstant)
)

// CommandSpawnError reports that a command could not be launched at all.
type CommandSpawnError struct {
	CommandText string
	Cause       error
}

// Error describes the spawn failure including the underlying cause.
func (spawnError CommandSpawnError) Error() string {
	causeMessage := ""
	if spawnError.Cause != nil {
		causeMessage = spawnError.Cause.Error()
	}
	return fmt.Sprintf(spawnFailureTemplateConstant, spawnError.CommandText, causeMessage)
}

// Unwrap exposes the underlying launch failure.
func (spawnError CommandSpawnError) Unwrap() error {
	return spawnError.Cause
}
