package runtime

import (
	"cljloader/internal/loader"
	"context"
	"fmt"
	"io"
	"strings"
)

// Builtin unit names defined by DefineBuiltins.
const (
	UnitEcho      = "cljloader.echo"
	UnitClasspath = "cljloader.classpath"
)

// InProcessRuntime implements the "--main <namespace> args..." convention
// against units defined in the loading scope.
type InProcessRuntime struct{}

// NewInProcessRuntime creates an in-process runtime.
func NewInProcessRuntime() *InProcessRuntime {
	return &InProcessRuntime{}
}

// Main resolves the namespace named after the main flag and runs it with
// the remaining arguments.
func (ir *InProcessRuntime) Main(ctx context.Context, scope *loader.Scope, args []string) (int, error) {
	if len(args) < 2 || (args[0] != "--main" && args[0] != "-m") {
		return 1, fmt.Errorf("usage: --main <namespace> [args...], got %q", args)
	}

	ns := args[1]
	fn, ok := scope.Resolve(ns)
	if !ok {
		return 1, fmt.Errorf("namespace %q not found in loading scope", ns)
	}
	return fn(ctx, args[2:])
}

// DefineBuiltins registers the diagnostic units in scope.
func DefineBuiltins(scope *loader.Scope, stdout io.Writer) error {
	if err := scope.Define(UnitEcho, func(ctx context.Context, args []string) (int, error) {
		_, err := fmt.Fprintln(stdout, strings.Join(args, " "))
		return 0, err
	}); err != nil {
		return err
	}

	return scope.Define(UnitClasspath, func(ctx context.Context, args []string) (int, error) {
		for _, entry := range loader.Current().Classpath() {
			if _, err := fmt.Fprintln(stdout, entry); err != nil {
				return 1, err
			}
		}
		return 0, nil
	})
}
