package execshell

import "strings"

const (
	// DefaultMinimumRunTimeMilliseconds is the smallest timeout honored for a supervised command.
	DefaultMinimumRunTimeMilliseconds int64 = 2000
	// DefaultMaximumRunTimeMilliseconds is the largest timeout honored for a supervised command.
	DefaultMaximumRunTimeMilliseconds int64 = 60000
	// DefaultMaximumOutputLength caps the number of characters retained per output stream.
	DefaultMaximumOutputLength = 50000
)

// CommandInvocation is an immutable request to execute one shell command.
type CommandInvocation struct {
	// CommandText is the full shell command line, interpreted by the platform shell.
	CommandText string
	// WorkingDirectory is the directory the command runs in; empty means the current directory.
	WorkingDirectory string
	// TimeoutMilliseconds bounds the wall-clock run time; zero means no timeout.
	TimeoutMilliseconds int64
	// Force skips the interactive confirmation hook when true.
	Force bool
	// ProjectScope identifies the project for history lookups and persistence.
	ProjectScope string
}

// SanitizedCommandText returns the command text stripped of surrounding whitespace.
func (invocation CommandInvocation) SanitizedCommandText() string {
	return strings.TrimSpace(invocation.CommandText)
}

// TimeoutPolicy clamps requested timeouts into the configured window.
type TimeoutPolicy struct {
	MinimumRunTimeMilliseconds int64
	MaximumRunTimeMilliseconds int64
}

// DefaultTimeoutPolicy returns the baseline timeout clamps.
func DefaultTimeoutPolicy() TimeoutPolicy {
	return TimeoutPolicy{
		MinimumRunTimeMilliseconds: DefaultMinimumRunTimeMilliseconds,
		MaximumRunTimeMilliseconds: DefaultMaximumRunTimeMilliseconds,
	}
}

// Normalize converts a requested timeout into the effective timeout in
// milliseconds. Zero or negative values disable the timeout; everything else
// is clamped into the [minimum, maximum] window.
func (policy TimeoutPolicy) Normalize(requestedTimeoutMilliseconds int64) int64 {
	if requestedTimeoutMilliseconds <= 0 {
		return 0
	}

	effectiveTimeout := requestedTimeoutMilliseconds

	minimumRunTime := policy.MinimumRunTimeMilliseconds
	if minimumRunTime <= 0 {
		minimumRunTime = DefaultMinimumRunTimeMilliseconds
	}
	maximumRunTime := policy.MaximumRunTimeMilliseconds
	if maximumRunTime <= 0 {
		maximumRunTime = DefaultMaximumRunTimeMilliseconds
	}

	if effectiveTimeout < minimumRunTime {
		effectiveTimeout = minimumRunTime
	}
	if effectiveTimeout > maximumRunTime {
		effectiveTimeout = maximumRunTime
	}

	return effectiveTimeout
}
