// Package execshell supervises external shell commands.
//
// It spawns a command in its own process group, drains standard output and
// standard error concurrently so a full pipe never stalls the child, enforces
// a bounded run time, and guarantees the process tree is terminated on
// timeout, cancellation, or completion. ShellExecutor composes the supervisor,
// the execution controller, and the platform terminator behind a single
// Execute operation consumed by the command-line surface and the debugging
// workflow.
package execshell
