//go:build !windows

package execshell

import (
	"errors"
	"syscall"
)

// processGroupTerminator kills the entire process group with an unrecoverable
// signal. The child was placed in its own session at spawn time, so the
// negative identifier addresses every descendant at once.
type processGroupTerminator struct{}

func newPlatformTerminator() ProcessTerminator {
	return processGroupTerminator{}
}

// Terminate sends SIGKILL to the process group. A group that no longer exists
// is treated as success.
func (processGroupTerminator) Terminate(processIdentifier int) error {
	killError := syscall.Kill(-processIdentifier, syscall.SIGKILL)
	if killError == nil {
		return nil
	}
	if errors.Is(killError, syscall.ESRCH) {
		return nil
	}
	return killError
}
