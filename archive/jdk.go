package archive

import (
	"os"
	"path/filepath"
)

// LocateJDKSources finds the JDK's bundled source archive, checked at
// the two locations the original's scan_java_src_zip implicitly
// assumed: the modern JAVA_HOME/lib/src.zip and the older top-level
// JAVA_HOME/src.zip.
func LocateJDKSources(javaHome string) (string, bool) {
	if javaHome == "" {
		return "", false
	}
	candidates := []string{
		filepath.Join(javaHome, "lib", "src.zip"),
		filepath.Join(javaHome, "src.zip"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// RegisterJDK wires the JDK source archive found under javaHome (if
// any) into registry under the jrsls-std scheme (spec.md §6).
func RegisterJDK(registry *Registry, javaHome string) bool {
	path, ok := LocateJDKSources(javaHome)
	if !ok {
		return false
	}
	registry.Register("jrsls-std", NewZipSourceProvider(path))
	return true
}
