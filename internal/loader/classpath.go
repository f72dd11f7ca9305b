package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ParseClasspath splits a classpath string on the OS list separator,
// dropping empty elements.
func ParseClasspath(cp string) []string {
	var out []string
	for _, e := range filepath.SplitList(cp) {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// JoinClasspath renders entries as a classpath string.
func JoinClasspath(entries []string) string {
	return strings.Join(entries, string(os.PathListSeparator))
}

// ExpandEntries replaces "dir/*" wildcard entries with the jars directly
// inside dir, sorted by name. Other entries pass through. A wildcard over a
// missing directory expands to nothing, matching the JVM.
func ExpandEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if filepath.Base(e) != "*" {
			out = append(out, e)
			continue
		}
		out = append(out, jarsIn(filepath.Dir(e))...)
	}
	return out
}

func jarsIn(dir string) []string {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var jars []string
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(item.Name()), ".jar") {
			jars = append(jars, filepath.Join(dir, item.Name()))
		}
	}
	sort.Strings(jars)
	return jars
}
