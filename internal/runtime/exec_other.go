//go:build !unix

package runtime

import (
	"errors"
	"os/exec"
)

// replaceProcess is unavailable without exec(2).
func replaceProcess(path string, argv, env []string) error {
	return errors.New("process replacement is not supported on this platform")
}

func exitStatus(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
