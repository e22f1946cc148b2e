package history

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound indicates that no stored run matches the requested project
// scope and command text.
var ErrRunNotFound = errors.New("command run not found")

// CommandRun is one persisted command execution.
type CommandRun struct {
	// RunIdentifier uniquely names the stored run.
	RunIdentifier string
	// ProjectScope isolates runs recorded for different projects.
	ProjectScope string
	// CommandText is the sanitized command that was executed.
	CommandText string
	// ResultText is the labeled stdout/stderr text produced by the run.
	ResultText string
	// RecordedAt is the moment the run was persisted.
	RecordedAt time.Time
}

// CommandRunStore persists and restores command runs. Recording an identical
// project scope and command text pair replaces the previously stored run.
type CommandRunStore interface {
	LookupRun(executionContext context.Context, projectScope string, commandText string) (string, bool, error)
	RecordRun(executionContext context.Context, projectScope string, commandText string, resultText string) error
	ListRuns(executionContext context.Context, projectScope string) ([]CommandRun, error)
	RemoveRuns(executionContext context.Context, projectScope string) (int64, error)
	Close() error
}
