// Package config holds the server's command-line configuration and
// the Java keyword set it derives from --java-version, per spec.md §6.
package config

import "strings"

// Config is the resolved set of CLI flags the server runs with.
type Config struct {
	Mode         string // "tcp-socket" or "stdin"
	Port         uint16
	JavaHome     string
	JavaVersion  uint16
	JavaKeywords []string // non-nil only when --java-keywords overrides the default set
}

// Default returns the flag defaults named in spec.md §6.
func Default() Config {
	return Config{
		Mode:        "tcp-socket",
		Port:        9257,
		JavaVersion: 17,
	}
}

// baseKeywords is the Java 8 keyword set every supported version carries.
var baseKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while",
}

// Keywords returns the keyword set for this config: cfg.JavaKeywords
// verbatim if the CLI override was given, otherwise the base set plus
// every version-gated addition up to cfg.JavaVersion (spec.md §6: "≥10
// adds var; ≥14 adds yield; ≥16 adds record sealed non-sealed permits").
func (cfg Config) Keywords() []string {
	if cfg.JavaKeywords != nil {
		return cfg.JavaKeywords
	}
	kws := append([]string(nil), baseKeywords...)
	if cfg.JavaVersion >= 10 {
		kws = append(kws, "var")
	}
	if cfg.JavaVersion >= 14 {
		kws = append(kws, "yield")
	}
	if cfg.JavaVersion >= 16 {
		kws = append(kws, "record", "sealed", "non-sealed", "permits")
	}
	return kws
}

// ParseKeywordsCSV splits a --java-keywords flag value into a keyword
// list, trimming whitespace and dropping empty entries.
func ParseKeywordsCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
