// Package runtime implements the entry points the launcher delegates to:
// a local JVM (Local), an ephemeral Docker container (Docker), and a
// Go-native dispatcher over scope units (InProcess).
package runtime

import (
	"cljloader/internal/loader"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/docker/docker/client"
)

// Runtime names accepted by New.
const (
	NameLocal     = "local"
	NameDocker    = "docker"
	NameInProcess = "inprocess"
)

// Runtime is the external runtime's standard main entry point.
type Runtime interface {
	// Main runs the runtime with args and the given loading scope. The int
	// is the runtime's exit status; a non-nil error means it could not run.
	Main(ctx context.Context, scope *loader.Scope, args []string) (int, error)
}

// Config selects and configures a Runtime.
type Config struct {
	Name   string
	Java   JavaConfig
	Docker DockerConfig
	Logger *log.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New builds the runtime named by cfg.Name.
func New(cfg Config) (Runtime, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	switch cfg.Name {
	case "", NameLocal:
		return NewLocalRuntime(cfg), nil
	case NameDocker:
		dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return nil, fmt.Errorf("create docker client: %w", err)
		}
		return NewDockerRuntime(dockerClient, cfg), nil
	case NameInProcess:
		return NewInProcessRuntime(), nil
	default:
		return nil, fmt.Errorf("unknown runtime %q (want %s, %s or %s)", cfg.Name, NameLocal, NameDocker, NameInProcess)
	}
}

// jvmCommand builds the JVM argv shared by the local and docker runtimes.
func jvmCommand(binary string, java JavaConfig, classpath string, args []string) []string {
	cmd := make([]string, 0, len(java.Options)+len(args)+4)
	cmd = append(cmd, binary)
	cmd = append(cmd, java.Options...)
	if classpath != "" {
		cmd = append(cmd, "-cp", classpath)
	}
	cmd = append(cmd, java.MainClass)
	return append(cmd, args...)
}
