//go:build windows

package execshell

import (
	"errors"
	"os/exec"
	"strconv"
)

const (
	taskKillExecutableConstant        = "taskkill"
	taskKillForceFlagConstant         = "/F"
	taskKillTreeFlagConstant          = "/T"
	taskKillProcessIdentifierFlagName = "/PID"
)

// taskKillTerminator issues a forceful, recursive kill of the process tree by
// identifier, since process groups are unavailable on Windows.
type taskKillTerminator struct{}

func newPlatformTerminator() ProcessTerminator {
	return taskKillTerminator{}
}

// Terminate invokes taskkill against the whole tree. A non-zero exit from
// taskkill means the tree is already gone, which is treated as success.
func (taskKillTerminator) Terminate(processIdentifier int) error {
	killCommand := exec.Command(
		taskKillExecutableConstant,
		taskKillForceFlagConstant,
		taskKillTreeFlagConstant,
		taskKillProcessIdentifierFlagName,
		strconv.Itoa(processIdentifier),
	)
	runError := killCommand.Run()
	if runError == nil {
		return nil
	}
	exitError := &exec.ExitError{}
	if errors.As(runError, &exitError) {
		return nil
	}
	return runError
}
