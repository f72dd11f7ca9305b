package loader

import (
	"os"
	"sync"
)

var (
	currentMu sync.Mutex
	current   *Scope
)

// Current returns the process-wide active scope. The first call builds a
// root scope from the CLASSPATH environment variable.
func Current() *Scope {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		current = NewScope(nil)
		for _, e := range ExpandEntries(ParseClasspath(os.Getenv("CLASSPATH"))) {
			current.AddEntry(e)
		}
	}
	return current
}

// SetCurrent installs s as the active scope and returns the previous one.
func SetCurrent(s *Scope) *Scope {
	currentMu.Lock()
	defer currentMu.Unlock()
	prev := current
	current = s
	return prev
}
