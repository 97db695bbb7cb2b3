package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// candidatePaths returns the four discovery paths in precedence order: user
// config first under both the ISC name and the short name, then their
// system-wide equivalents under /etc. home may be "" if it could not be
// determined, in which case the two user-scoped candidates are omitted.
func candidatePaths(home string) []string {
	paths := []string{}
	if home != "" {
		paths = append(paths, home+"/.isc-dnsdb-query.conf", home+"/.dnsdb-query.conf")
	}
	return append(paths, "/etc/isc-dnsdb-query.conf", "/etc/dnsdb-query.conf")
}

// Discover returns the first readable config path in precedence order, or
// "" if none exist. A missing config file is never an error: unauthenticated
// requests simply fail at the backend later.
func Discover() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	for _, path := range candidatePaths(home) {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ParseShellAssignments parses a file of shell `KEY=VALUE` (optionally
// `export KEY=VALUE`) lines into a map. Quoting with single or double quotes
// is honored; unquoted values are taken verbatim. Blank lines and lines
// starting with `#` are skipped. This is a deliberately narrow grammar: it
// does not evaluate shell expansion, command substitution, or variable
// references, only literal assignment.
func ParseShellAssignments(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("config: %s:%d: not a KEY=VALUE assignment: %q", path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("config: %s:%d: empty key", path, lineNo)
		}
		out[key] = unquote(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return out, nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
