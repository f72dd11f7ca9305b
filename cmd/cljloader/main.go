// Command cljloader establishes a loading scope and hands the process to
// the Clojure runtime as "clojure.main --main loader.core <args...>".
// Runtime selection and classpath come from CLJLOADER_CONFIG and the
// environment; every command-line argument is forwarded unchanged.
package main

import (
	"cljloader/internal/launcher"
	"os"
)

func main() {
	os.Exit(launcher.Main())
}
