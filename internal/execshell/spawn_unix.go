//go:build !windows

package execshell

import (
	"os/exec"
	"strings"
	"syscall"
)

const (
	posixShellExecutableConstant    = "/bin/sh"
	bashShellExecutableConstant     = "bash"
	shellCommandFlagConstant        = "-c"
	bashBuiltinSourceMarkerConstant = "source "
	bashBuiltinChangeDirMarker      = "cd "
)

// shellCommandArguments builds the argv launching commandText through a shell
// so pipes, conjunctions, and built-ins behave as they do interactively.
// Commands relying on bash built-ins run through bash instead of /bin/sh.
func shellCommandArguments(commandText string) []string {
	shellExecutable := posixShellExecutableConstant
	if strings.Contains(commandText, bashBuiltinSourceMarkerConstant) || strings.Contains(commandText, bashBuiltinChangeDirMarker) {
		shellExecutable = bashShellExecutableConstant
	}
	return []string{shellExecutable, shellCommandFlagConstant, commandText}
}

// configureProcessGroup places the child in a new session so the whole
// descendant tree can be signaled atomically on termination.
func configureProcessGroup(command *exec.Cmd) {
	command.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
