package runtime

import (
	"bytes"
	"cljloader/internal/loader"
	"context"
	"strings"
	"testing"
)

func TestInProcessDispatch(t *testing.T) {
	scope := loader.NewScope(nil)
	var got []string
	scope.Define("loader.core", func(ctx context.Context, args []string) (int, error) {
		got = args
		return 5, nil
	})

	rt := NewInProcessRuntime()
	for _, flag := range []string{"--main", "-m"} {
		code, err := rt.Main(context.Background(), loader.NewScope(scope), []string{flag, "loader.core", "-x", "foo"})
		if err != nil {
			t.Fatalf("%s: Main: %v", flag, err)
		}
		if code != 5 {
			t.Errorf("%s: exit code %d, want 5", flag, code)
		}
		if strings.Join(got, " ") != "-x foo" {
			t.Errorf("%s: args %q", flag, got)
		}
	}
}

func TestInProcessErrors(t *testing.T) {
	rt := NewInProcessRuntime()
	scope := loader.NewScope(nil)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no args", args: nil, want: "usage"},
		{name: "missing namespace", args: []string{"--main"}, want: "usage"},
		{name: "wrong flag", args: []string{"--repl", "x"}, want: "usage"},
		{name: "unknown namespace", args: []string{"--main", "loader.core"}, want: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rt.Main(context.Background(), scope, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestBuiltins(t *testing.T) {
	var out bytes.Buffer
	scope := loader.NewScope(nil)
	if err := DefineBuiltins(scope, &out); err != nil {
		t.Fatalf("DefineBuiltins: %v", err)
	}

	rt := NewInProcessRuntime()
	code, err := rt.Main(context.Background(), scope, []string{"--main", UnitEcho, "a", "b"})
	if err != nil || code != 0 {
		t.Fatalf("echo: code=%d err=%v", code, err)
	}
	if out.String() != "a b\n" {
		t.Errorf("echo output: %q", out.String())
	}

	if err := DefineBuiltins(scope, &out); err == nil {
		t.Error("expected error defining builtins twice in one scope")
	}
}

func TestBuiltinClasspath(t *testing.T) {
	scope := loader.NewScope(nil)
	scope.AddEntry("src")
	prev := loader.SetCurrent(scope)
	defer loader.SetCurrent(prev)

	var out bytes.Buffer
	if err := DefineBuiltins(scope, &out); err != nil {
		t.Fatalf("DefineBuiltins: %v", err)
	}

	code, err := NewInProcessRuntime().Main(context.Background(), scope, []string{"--main", UnitClasspath})
	if err != nil || code != 0 {
		t.Fatalf("classpath: code=%d err=%v", code, err)
	}
	if out.String() != "src\n" {
		t.Errorf("classpath output: %q", out.String())
	}
}
