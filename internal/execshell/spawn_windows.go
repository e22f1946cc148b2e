//go:build windows

package execshell

import "os/exec"

const (
	windowsShellExecutableConstant  = "cmd"
	windowsShellCommandFlagConstant = "/C"
)

// shellCommandArguments builds the argv launching commandText through the
// Windows command interpreter.
func shellCommandArguments(commandText string) []string {
	return []string{windowsShellExecutableConstant, windowsShellCommandFlagConstant, commandText}
}

// configureProcessGroup is a no-op on Windows; descendant termination relies
// on the tree-kill terminator instead of process groups.
func configureProcessGroup(command *exec.Cmd) {}
