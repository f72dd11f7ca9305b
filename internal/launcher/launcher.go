// Package launcher prepares a loading scope and hands the process over to
// a runtime's main entry point with "--main loader.core" prepended to the
// process arguments.
package launcher

import (
	"cljloader/internal/loader"
	"cljloader/internal/runtime"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Launcher runs one delegated launch.
type Launcher struct {
	config  Config
	runtime runtime.Runtime
	journal *Journal
	logger  *log.Logger
}

// New creates a launcher. A nil rt builds the runtime named in cfg.
func New(cfg Config, rt runtime.Runtime, logger *log.Logger) (*Launcher, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if rt == nil {
		var err error
		rt, err = runtime.New(runtime.Config{
			Name:   cfg.Runtime,
			Java:   cfg.Java,
			Docker: cfg.Docker,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create runtime: %w", err)
		}
	}

	journal, err := OpenJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}

	return &Launcher{
		config:  cfg,
		runtime: rt,
		journal: journal,
		logger:  logger,
	}, nil
}

// BuildArgs returns prefix followed by args, in order.
func BuildArgs(prefix [2]string, args []string) []string {
	combined := make([]string, 0, len(args)+2)
	combined = append(combined, prefix[0], prefix[1])
	return append(combined, args...)
}

// Run installs a child of the current scope as the active scope, then calls
// the runtime once with the combined argument list and returns its result.
// The previous scope is not restored.
func (l *Launcher) Run(ctx context.Context, args []string) (int, error) {
	parent := loader.Current()
	scope := loader.NewScope(parent)
	for _, entry := range loader.ExpandEntries(l.config.Classpath) {
		scope.AddEntry(entry)
	}
	loader.SetCurrent(scope)

	if l.config.Watch {
		stop := l.watch(ctx, scope)
		defer stop()
	}

	combined := BuildArgs(l.config.Prefix(), args)
	l.logger.Printf("delegating to %s runtime: %v", l.config.Runtime, combined)

	start := time.Now()
	code, err := l.runtime.Main(ctx, scope, combined)

	entry := JournalEntry{
		Runtime:   l.config.Runtime,
		Args:      combined,
		Classpath: scope.Classpath(),
		ExitCode:  code,
		Duration:  float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if jerr := l.journal.Record(entry); jerr != nil {
		l.logger.Printf("warning: %v", jerr)
	}

	if err != nil {
		return code, fmt.Errorf("%s runtime: %w", l.config.Runtime, err)
	}
	return code, nil
}

// Close releases the journal.
func (l *Launcher) Close() error {
	return l.journal.Close()
}

// watch starts a classpath watcher on the scope's directories. Failures
// are logged and leave the classpath static.
func (l *Launcher) watch(ctx context.Context, scope *loader.Scope) (stop func()) {
	w, err := loader.NewWatcher(scope, l.logger)
	if err != nil {
		l.logger.Printf("warning: classpath watcher disabled: %v", err)
		return func() {}
	}

	var wildcardDirs []string
	for _, entry := range l.config.Classpath {
		if filepath.Base(entry) == "*" {
			wildcardDirs = append(wildcardDirs, filepath.Dir(entry))
		}
	}
	if err := w.WatchScopeDirs(wildcardDirs); err != nil {
		l.logger.Printf("warning: %v", err)
	}

	w.Start(ctx)
	return func() { w.Stop() }
}

// Main is the process entry point; it returns the status for os.Exit.
func Main() int {
	logger := log.New(io.Discard, "", 0)
	if os.Getenv(EnvDebug) != "" {
		logger = log.New(os.Stderr, "[cljloader] ", log.LstdFlags|log.Lmsgprefix)
	}

	cfg, err := ConfigFromEnv()
	if err != nil {
		reportFault(os.Stderr, err)
		return 1
	}

	if cfg.Runtime == runtime.NameInProcess {
		if err := runtime.DefineBuiltins(loader.Current(), os.Stdout); err != nil {
			reportFault(os.Stderr, err)
			return 1
		}
	}

	l, err := New(cfg, nil, logger)
	if err != nil {
		reportFault(os.Stderr, err)
		return 1
	}
	defer l.Close()

	code, err := l.Run(context.Background(), os.Args[1:])
	if err != nil {
		reportFault(os.Stderr, err)
		if code == 0 {
			code = 1
		}
	}
	return code
}
