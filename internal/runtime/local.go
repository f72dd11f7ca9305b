package runtime

import (
	"cljloader/internal/loader"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
)

// JavaConfig describes the JVM invocation.
type JavaConfig struct {
	Binary    string   `yaml:"binary" toml:"binary"`
	MainClass string   `yaml:"main_class" toml:"main_class"`
	Options   []string `yaml:"options,omitempty" toml:"options,omitempty"`
	// Replace execs the JVM in place of the launcher (unix only).
	Replace bool `yaml:"replace,omitempty" toml:"replace,omitempty"`
}

// LocalRuntime runs the JVM as a child process on the host.
type LocalRuntime struct {
	java   JavaConfig
	logger *log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewLocalRuntime creates a host JVM runtime.
func NewLocalRuntime(cfg Config) *LocalRuntime {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[local-runtime] ", log.LstdFlags|log.Lmsgprefix)
	}
	return &LocalRuntime{
		java:   cfg.Java,
		logger: cfg.Logger,
		stdin:  cfg.Stdin,
		stdout: cfg.Stdout,
		stderr: cfg.Stderr,
	}
}

// Command returns the argv the runtime would execute for args.
func (lr *LocalRuntime) Command(scope *loader.Scope, args []string) []string {
	return jvmCommand(lr.java.Binary, lr.java, loader.JoinClasspath(scope.Classpath()), args)
}

// Main runs the JVM and returns its exit status.
func (lr *LocalRuntime) Main(ctx context.Context, scope *loader.Scope, args []string) (int, error) {
	argv := lr.Command(scope, args)

	binPath, err := exec.LookPath(argv[0])
	if err != nil {
		return 1, fmt.Errorf("find java binary %q: %w", argv[0], err)
	}

	lr.logger.Printf("local exec: %s %v", binPath, argv[1:])

	if lr.java.Replace {
		// Only returns on failure.
		if err := replaceProcess(binPath, argv, os.Environ()); err != nil {
			return 1, fmt.Errorf("replace process with %s: %w", binPath, err)
		}
	}

	cmd := exec.CommandContext(ctx, binPath, argv[1:]...)
	cmd.Stdin = lr.stdin
	cmd.Stdout = lr.stdout
	cmd.Stderr = lr.stderr
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("start java: %w", err)
	}

	stop := forwardSignals(cmd.Process)
	defer stop()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitStatus(exitErr), nil
		}
		return 1, fmt.Errorf("wait java: %w", err)
	}
	return 0, nil
}
