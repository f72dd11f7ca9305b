package runtime

import (
	"cljloader/internal/loader"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// containerClasspathRoot is where classpath entries outside the working
// directory are mounted inside the container.
const containerClasspathRoot = "/cljloader/cp"

// DockerConfig describes the ephemeral runtime container.
type DockerConfig struct {
	Image   string   `yaml:"image" toml:"image"`
	Workdir string   `yaml:"workdir" toml:"workdir"`
	Env     []string `yaml:"env,omitempty" toml:"env,omitempty"`
	Network string   `yaml:"network,omitempty" toml:"network,omitempty"`
}

// dockerAPI is the subset of the Docker client used by DockerRuntime.
type dockerAPI interface {
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerKill(ctx context.Context, containerID, signal string) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// DockerRuntime runs the JVM in an ephemeral container. The working
// directory is mounted at the configured workdir, and classpath entries
// outside it are mounted read-only under /cljloader/cp.
type DockerRuntime struct {
	client dockerAPI
	java   JavaConfig
	docker DockerConfig
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewDockerRuntime creates a Docker-based runtime.
func NewDockerRuntime(dockerClient dockerAPI, cfg Config) *DockerRuntime {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[docker-runtime] ", log.LstdFlags|log.Lmsgprefix)
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &DockerRuntime{
		client: dockerClient,
		java:   cfg.Java,
		docker: cfg.Docker,
		logger: cfg.Logger,
		stdout: cfg.Stdout,
		stderr: cfg.Stderr,
	}
}

// ContainerSpec builds the container and host configuration for a run
// started from the host directory cwd.
func (dr *DockerRuntime) ContainerSpec(scope *loader.Scope, cwd string, args []string) (*container.Config, *container.HostConfig) {
	workdir := dr.docker.Workdir
	binds := []string{cwd + ":" + workdir}

	var classpath []string
	for i, entry := range scope.Classpath() {
		abs, err := filepath.Abs(entry)
		if err != nil {
			abs = entry
		}

		if rel, err := filepath.Rel(cwd, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			classpath = append(classpath, path.Join(workdir, filepath.ToSlash(rel)))
			continue
		}

		target := path.Join(containerClasspathRoot, fmt.Sprintf("%d", i), filepath.Base(abs))
		binds = append(binds, abs+":"+target+":ro")
		classpath = append(classpath, target)
	}

	containerConfig := &container.Config{
		Image:      dr.docker.Image,
		Cmd:        jvmCommand("java", dr.java, strings.Join(classpath, ":"), args),
		WorkingDir: workdir,
		Env:        containerEnvironment(os.Environ(), dr.docker.Env),
	}

	hostConfig := &container.HostConfig{
		Binds: binds,
	}
	if dr.docker.Network != "" {
		hostConfig.NetworkMode = container.NetworkMode(dr.docker.Network)
	}

	return containerConfig, hostConfig
}

// Main runs the JVM in a fresh container and returns its exit status.
func (dr *DockerRuntime) Main(ctx context.Context, scope *loader.Scope, args []string) (int, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return 1, fmt.Errorf("get working directory: %w", err)
	}

	containerConfig, hostConfig := dr.ContainerSpec(scope, cwd, args)
	dr.logger.Printf("docker exec: %s %v", containerConfig.Image, containerConfig.Cmd)

	resp, err := dr.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return 1, fmt.Errorf("create runtime container: %w", err)
	}

	defer func() {
		if err := dr.client.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true}); err != nil {
			dr.logger.Printf("remove container %s: %v", resp.ID, err)
		}
	}()

	// Attach before starting so no output is lost
	attachResp, err := dr.client.ContainerAttach(ctx, resp.ID, container.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return 1, fmt.Errorf("attach runtime container: %w", err)
	}
	defer attachResp.Close()

	if err := dr.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return 1, fmt.Errorf("start runtime container: %w", err)
	}

	streamDone := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(dr.stdout, dr.stderr, attachResp.Reader)
		streamDone <- err
	}()

	statusCh, errCh := dr.client.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return 1, fmt.Errorf("wait runtime container: %w", err)
		}
		return 1, fmt.Errorf("wait runtime container: no status")
	case status := <-statusCh:
		if err := <-streamDone; err != nil {
			dr.logger.Printf("stream error: %v", err)
		}
		if status.Error != nil {
			return 1, fmt.Errorf("runtime container: %s", status.Error.Message)
		}
		return int(status.StatusCode), nil
	case <-ctx.Done():
		dr.client.ContainerKill(context.Background(), resp.ID, "SIGKILL")
		return 1, ctx.Err()
	}
}
