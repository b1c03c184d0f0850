package scan

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Dependency is one resolved (or unresolved) dynamic dependency of an
// artifact, as reported by the loader.
type Dependency struct {
	Name   string
	Target string // resolved path; empty when not found
	Found  bool
}

// runLdd resolves the dynamic dependencies of path by invoking ldd.
func runLdd(ctx context.Context, path string) ([]Dependency, error) {
	out, err := exec.CommandContext(ctx, "ldd", path).Output()
	if err != nil {
		return nil, fmt.Errorf("ldd %s: %w", path, err)
	}
	return parseLdd(string(out)), nil
}

// parseLdd extracts dependencies from ldd output. Lines without "=>" are
// the vdso, the loader itself, or "statically linked"; none of them name a
// dependency we can act on.
func parseLdd(output string) []Dependency {
	var deps []Dependency
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, rest, ok := strings.Cut(line, "=>")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		rest = strings.TrimSpace(rest)
		if name == "" {
			continue
		}
		if rest == "not found" {
			deps = append(deps, Dependency{Name: name})
			continue
		}
		// strip the trailing load address: "/lib/libz.so.1 (0x00007f...)"
		if idx := strings.LastIndex(rest, " ("); idx >= 0 {
			rest = strings.TrimSpace(rest[:idx])
		}
		if rest == "" {
			// "libfoo.so => (0x...)" — resolved without a file path
			// (e.g. linker-provided); nothing to classify.
			continue
		}
		deps = append(deps, Dependency{Name: name, Target: rest, Found: true})
	}
	return deps
}
