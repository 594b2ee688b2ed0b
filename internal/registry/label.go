package registry

import (
	"path/filepath"
	"strings"
)

// DisplayName derives a short label from a JVM command line. A leading jar
// path is reduced to its base name; anything else is returned unchanged.
func DisplayName(command string) string {
	first, rest, hasRest := strings.Cut(command, " ")
	if !strings.HasSuffix(first, ".jar") {
		return command
	}
	name := filepath.Base(first)
	if hasRest {
		name += " " + rest
	}
	return name
}
