package runtime

import (
	"strings"
)

// Environment passed into runtime containers.
// Host variables are filtered so credentials and host-only paths stay out.

// containerEnvAllowlist contains variables that are safe to pass through.
var containerEnvAllowlist = map[string]bool{
	"LANG":              true,
	"LANGUAGE":          true,
	"LC_ALL":            true,
	"TERM":              true,
	"TZ":                true,
	"JAVA_OPTS":         true,
	"JAVA_TOOL_OPTIONS": true,
	"JDK_JAVA_OPTIONS":  true,
	"CLJ_CONFIG":        true,
	"LEIN_JVM_OPTS":     true,
}

// containerEnvBlocklist contains variables that must never be passed through,
// even when listed as extra entries in the config.
var containerEnvBlocklist = map[string]bool{
	"LD_PRELOAD":                     true,
	"LD_LIBRARY_PATH":                true,
	"DOCKER_HOST":                    true,
	"KUBECONFIG":                     true,
	"AWS_ACCESS_KEY_ID":              true,
	"AWS_SECRET_ACCESS_KEY":          true,
	"AWS_SESSION_TOKEN":              true,
	"GOOGLE_APPLICATION_CREDENTIALS": true,
	"CLASSPATH":                      true, // Rebuilt from the scope with container paths
}

// containerEnvironment filters host through the allowlist and appends the
// configured extra "KEY=VALUE" entries, which override host values.
func containerEnvironment(host, extra []string) []string {
	env := make([]string, 0, len(host)+len(extra))
	index := make(map[string]int)

	add := func(entry string) {
		key := envKey(entry)
		if containerEnvBlocklist[key] {
			return
		}
		if i, ok := index[key]; ok {
			env[i] = entry
			return
		}
		index[key] = len(env)
		env = append(env, entry)
	}

	for _, entry := range host {
		if containerEnvAllowlist[envKey(entry)] {
			add(entry)
		}
	}
	for _, entry := range extra {
		add(entry)
	}
	return env
}

// envKey extracts the key from a "KEY=VALUE" environment entry.
func envKey(entry string) string {
	if idx := strings.IndexByte(entry, '='); idx >= 0 {
		return entry[:idx]
	}
	return entry
}
