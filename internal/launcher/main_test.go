package launcher

import (
	"bytes"
	"cljloader/internal/loader"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestLauncherHelperProcess is not a real test. It runs Main as a whole
// process when re-executed by runLauncherProcess, with loader.core defined
// as a stub selected by CLJLOADER_HELPER_MODE.
func TestLauncherHelperProcess(t *testing.T) {
	mode := os.Getenv("CLJLOADER_HELPER_MODE")
	if mode == "" {
		return
	}

	args := []string{"cljloader"}
	for i, a := range os.Args {
		if a == "--" {
			args = append(args, os.Args[i+1:]...)
			break
		}
	}
	os.Args = args

	calls := 0
	loader.Current().Define("loader.core", func(ctx context.Context, args []string) (int, error) {
		calls++
		switch mode {
		case "echo":
			fmt.Fprintf(os.Stdout, "%d|%s\n", calls, strings.Join(args, "|"))
			return 0, nil
		case "fault":
			return 1, errors.New("stub runtime fault")
		case "panic":
			panic("stub runtime panic")
		}
		return 0, nil
	})

	os.Exit(Main())
}

func runLauncherProcess(t *testing.T, mode string, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	cmdArgs := append([]string{"-test.run=TestLauncherHelperProcess", "--"}, args...)
	cmd := exec.Command(os.Args[0], cmdArgs...)
	cmd.Env = append(os.Environ(),
		"CLJLOADER_HELPER_MODE="+mode,
		EnvRuntime+"=inprocess",
		EnvConfig+"=",
	)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code = 0
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		t.Fatalf("run helper: %v", err)
	}
	return outBuf.String(), errBuf.String(), code
}

func TestProcessEchoNoArgs(t *testing.T) {
	stdout, stderr, code := runLauncherProcess(t, "echo")
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr: %s)", code, stderr)
	}
	// The namespace unit receives what follows "--main loader.core"
	if stdout != "1|\n" {
		t.Errorf("stdout: got %q", stdout)
	}
}

func TestProcessEchoArgs(t *testing.T) {
	stdout, stderr, code := runLauncherProcess(t, "echo", "-x", "foo")
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr: %s)", code, stderr)
	}
	if stdout != "1|-x|foo\n" {
		t.Errorf("stdout: got %q", stdout)
	}
}

func TestProcessFaultIsReported(t *testing.T) {
	_, stderr, code := runLauncherProcess(t, "fault", "-x")
	if code == 0 {
		t.Fatal("expected non-zero exit status")
	}
	if !strings.Contains(stderr, "cljloader:") || !strings.Contains(stderr, "stub runtime fault") {
		t.Errorf("fault diagnostic missing from stderr: %q", stderr)
	}
}

func TestProcessPanicIsNotSwallowed(t *testing.T) {
	_, stderr, code := runLauncherProcess(t, "panic")
	if code == 0 {
		t.Fatal("expected non-zero exit status")
	}
	if !strings.Contains(stderr, "panic: stub runtime panic") {
		t.Errorf("panic trace missing from stderr: %q", stderr)
	}
}

func TestProcessBadConfig(t *testing.T) {
	cmd := exec.Command(os.Args[0], "-test.run=TestLauncherHelperProcess", "--")
	cmd.Env = append(os.Environ(),
		"CLJLOADER_HELPER_MODE=echo",
		EnvConfig+"=/nonexistent/cljloader.yaml",
	)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if !strings.Contains(errBuf.String(), "read config file") {
		t.Errorf("stderr: %q", errBuf.String())
	}
}
