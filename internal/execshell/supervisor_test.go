//go:build !windows

package execshell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/cmdpilot/internal/execshell"
)

const (
	testSupervisorOrderedOutputCommand    = "echo first && echo second"
	testSupervisorExitTimeoutConstant     = 5 * time.Second
	testSupervisorExitMissedMessage       = "process exit was not observed"
	testSupervisorSeparateStreamsCommand  = "echo out-line; echo err-line 1>&2"
	testSupervisorWorkingDirectoryCommand = "ls"
	testSupervisorMarkerFileNameConstant  = "marker.txt"
)

func waitForProcessExit(testInstance *testing.T, process *execshell.RunningProcess) {
	testInstance.Helper()

	select {
	case <-process.Exited():
	case <-time.After(testSupervisorExitTimeoutConstant):
		testInstance.Fatal(testSupervisorExitMissedMessage)
	}
}

func TestProcessSupervisorExposesIdentifierAndStreams(testInstance *testing.T) {
	supervisor := execshell.NewProcessSupervisor(nil)

	process, spawnError := supervisor.Spawn(context.Background(), testSupervisorOrderedOutputCommand, "")
	require.NoError(testInstance, spawnError)
	require.Greater(testInstance, process.ProcessIdentifier(), 0)

	drainedLines := collectDrainedLines(testInstance, process.StandardOutputLines())
	require.Equal(testInstance, []string{"first\n", "second\n"}, drainedLines)

	waitForProcessExit(testInstance, process)
}

func TestProcessSupervisorSeparatesOutputStreams(testInstance *testing.T) {
	supervisor := execshell.NewProcessSupervisor(nil)

	process, spawnError := supervisor.Spawn(context.Background(), testSupervisorSeparateStreamsCommand, "")
	require.NoError(testInstance, spawnError)

	standardOutputLines := collectDrainedLines(testInstance, process.StandardOutputLines())
	standardErrorLines := collectDrainedLines(testInstance, process.StandardErrorLines())

	require.Equal(testInstance, []string{"out-line\n"}, standardOutputLines)
	require.Equal(testInstance, []string{"err-line\n"}, standardErrorLines)

	waitForProcessExit(testInstance, process)
}

func TestProcessSupervisorHonorsWorkingDirectory(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	markerFilePath := filepath.Join(temporaryDirectory, testSupervisorMarkerFileNameConstant)
	require.NoError(testInstance, os.WriteFile(markerFilePath, []byte{}, 0o644))

	supervisor := execshell.NewProcessSupervisor(nil)

	process, spawnError := supervisor.Spawn(context.Background(), testSupervisorWorkingDirectoryCommand, temporaryDirectory)
	require.NoError(testInstance, spawnError)

	drainedLines := collectDrainedLines(testInstance, process.StandardOutputLines())
	require.Contains(testInstance, drainedLines, testSupervisorMarkerFileNameConstant+"\n")

	waitForProcessExit(testInstance, process)
}

func TestProcessSupervisorSpawnFailureSurfacesError(testInstance *testing.T) {
	supervisor := execshell.NewProcessSupervisor(nil)

	_, spawnError := supervisor.Spawn(context.Background(), testSupervisorOrderedOutputCommand, "/nonexistent/working/directory")
	require.Error(testInstance, spawnError)
}
