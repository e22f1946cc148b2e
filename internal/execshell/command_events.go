package execshell

// CommandEventObserver receives lifecycle notifications for supervised command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(invocation CommandInvocation)
	// CommandCompleted notifies observers that supervision finished and supplies the result.
	CommandCompleted(invocation CommandInvocation, result ExecutionResult)
	// CommandExecutionFailed reports spawn failures occurring before any result exists.
	CommandExecutionFailed(invocation CommandInvocation, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(CommandInvocation) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(CommandInvocation, ExecutionResult) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(CommandInvocation, error) {}
