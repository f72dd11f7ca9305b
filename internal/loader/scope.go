// Package loader implements the code-loading scope handed to a runtime.
// A Scope holds classpath entries and named code units, and delegates
// lookups it cannot satisfy to its parent.
package loader

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MainFunc is the entry point of a code unit.
type MainFunc func(ctx context.Context, args []string) (int, error)

// Scope is a mutable, parent-delegating loading scope.
type Scope struct {
	parent *Scope

	mu      sync.RWMutex
	entries []string
	units   map[string]MainFunc
}

// NewScope creates a scope that delegates unresolved lookups to parent.
// A nil parent makes a root scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		units:  make(map[string]MainFunc),
	}
}

// Parent returns the scope lookups are delegated to, or nil for a root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsAncestor reports whether s is other or one of its parents.
func (s *Scope) IsAncestor(other *Scope) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == s {
			return true
		}
	}
	return false
}

// AddEntry appends a classpath entry. Returns false if the entry is empty
// or already visible through this scope.
func (s *Scope) AddEntry(entry string) bool {
	if entry == "" {
		return false
	}
	entry = filepath.Clean(entry)
	if s.parent != nil && contains(s.parent.Classpath(), entry) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.entries, entry) {
		return false
	}
	s.entries = append(s.entries, entry)
	return true
}

// Entries returns the entries added to this scope only.
func (s *Scope) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Classpath returns the effective entry list: ancestors first, then own.
func (s *Scope) Classpath() []string {
	var cp []string
	if s.parent != nil {
		cp = s.parent.Classpath()
	}
	for _, e := range s.Entries() {
		if !contains(cp, e) {
			cp = append(cp, e)
		}
	}
	return cp
}

// Define registers a named code unit in this scope.
func (s *Scope) Define(name string, fn MainFunc) error {
	if name == "" {
		return fmt.Errorf("define: empty unit name")
	}
	if fn == nil {
		return fmt.Errorf("define %s: nil entry point", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.units[name]; exists {
		return fmt.Errorf("define %s: already defined in this scope", name)
	}
	s.units[name] = fn
	return nil
}

// Resolve looks name up in this scope, then in its ancestors.
func (s *Scope) Resolve(name string) (MainFunc, bool) {
	s.mu.RLock()
	fn, ok := s.units[name]
	s.mu.RUnlock()
	if ok {
		return fn, true
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return nil, false
}

// FindResource locates a slash-separated resource name in the scope's own
// entries, then in its ancestors. Directory hits return a file path; jar
// hits return "<jar>!/<name>".
func (s *Scope) FindResource(name string) (string, bool) {
	name = strings.TrimPrefix(name, "/")
	for _, entry := range s.Entries() {
		if loc, ok := findIn(entry, name); ok {
			return loc, true
		}
	}
	if s.parent != nil {
		return s.parent.FindResource(name)
	}
	return "", false
}

func findIn(entry, name string) (string, bool) {
	info, err := os.Stat(entry)
	if err != nil {
		return "", false
	}

	if info.IsDir() {
		p := filepath.Join(entry, filepath.FromSlash(name))
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, true
		}
		return "", false
	}

	if !isArchive(entry) {
		return "", false
	}
	zr, err := zip.OpenReader(entry)
	if err != nil {
		return "", false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == name {
			return entry + "!/" + name, true
		}
	}
	return "", false
}

func isArchive(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jar" || ext == ".zip"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
