package runtime

import (
	"os"
	"os/signal"
	"syscall"
)

// forwardSignals relays SIGINT and SIGTERM to proc until stop is called.
// The launcher itself keeps running so it can report the child's status.
func forwardSignals(proc *os.Process) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				// Best-effort: the child may already be gone
				_ = proc.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
