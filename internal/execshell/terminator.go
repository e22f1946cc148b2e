package execshell

// ProcessTerminator forcefully stops a supervised process and all of its
// descendants. Implementations are idempotent: terminating a process that has
// already exited is success, not an error, because the desired end state is
// already true.
type ProcessTerminator interface {
	Terminate(processIdentifier int) error
}

// NewPlatformTerminator selects the termination strategy for the host
// operating system once, at construction time: a process-group signal on
// POSIX platforms and a recursive tree kill on Windows.
func NewPlatformTerminator() ProcessTerminator {
	return newPlatformTerminator()
}
