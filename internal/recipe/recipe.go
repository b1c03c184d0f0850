// Package recipe loads the recipe.toml build metadata describing the
// package under construction.
package recipe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// defaultAllow lists system prefixes whose libraries are never treated as
// external linkage. Overridable via [linkage].allow.
var defaultAllow = []string{"/lib", "/lib64", "/usr/lib", "/usr/lib64"}

// DefaultAllow returns a copy of the default allowed system prefixes, for
// callers auditing a bare directory without a recipe.
func DefaultAllow() []string { return append([]string(nil), defaultAllow...) }

// Recipe is a loaded recipe.toml plus its location.
type Recipe struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Linkage LinkageConfig `toml:"linkage"`
}

type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type BuildConfig struct {
	// Root is the staged-artifact directory, relative to the recipe.
	Root string `toml:"root"`
}

type LinkageConfig struct {
	// Allow lists path prefixes exempt from the external-linkage check.
	Allow []string `toml:"allow"`
}

// Find walks up from startDir looking for recipe.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "recipe.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates a recipe.toml.
func Load(path string) (*Recipe, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("build", "root") || strings.TrimSpace(cfg.Build.Root) == "" {
		cfg.Build.Root = "build"
	}
	if !meta.IsDefined("linkage", "allow") {
		cfg.Linkage.Allow = append([]string(nil), defaultAllow...)
	}
	return &Recipe{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// FindAndLoad combines Find and Load. The second return is false when no
// recipe.toml exists above startDir.
func FindAndLoad(startDir string) (*Recipe, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	r, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return r, true, nil
}

// BuildRoot returns the absolute staged-artifact directory.
func (r *Recipe) BuildRoot() string {
	return filepath.Join(r.Root, filepath.FromSlash(r.Config.Build.Root))
}

// Label returns "name-version" (or just the name) for report context.
func (r *Recipe) Label() string {
	if v := strings.TrimSpace(r.Config.Package.Version); v != "" {
		return r.Config.Package.Name + "-" + v
	}
	return r.Config.Package.Name
}
