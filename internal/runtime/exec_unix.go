//go:build unix

package runtime

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// replaceProcess replaces the current process image with path.
func replaceProcess(path string, argv, env []string) error {
	return unix.Exec(path, argv, env)
}

// exitStatus maps a child's exit to a shell-style status (128+n for signals).
func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}
