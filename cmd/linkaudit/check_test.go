package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveAuditTargetWithRecipe(t *testing.T) {
	root := t.TempDir()
	data := `[package]
name = "zlib"
version = "1.3.1"

[build]
root = "stage"
`
	if err := os.WriteFile(filepath.Join(root, "recipe.toml"), []byte(data), 0o600); err != nil {
		t.Fatalf("write recipe.toml: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "stage"), 0o755); err != nil {
		t.Fatalf("mkdir stage: %v", err)
	}

	target, err := resolveAuditTarget(root, false)
	if err != nil {
		t.Fatalf("resolveAuditTarget: %v", err)
	}
	if target.label != "zlib-1.3.1" {
		t.Fatalf("label = %q, want zlib-1.3.1", target.label)
	}
	if target.buildRoot != filepath.Join(root, "stage") {
		t.Fatalf("buildRoot = %q", target.buildRoot)
	}
	if target.meta == nil {
		t.Fatalf("meta is nil, want the loaded recipe")
	}
}

func TestResolveAuditTargetMissingBuildRoot(t *testing.T) {
	root := t.TempDir()
	data := "[package]\nname = \"demo\"\n"
	if err := os.WriteFile(filepath.Join(root, "recipe.toml"), []byte(data), 0o600); err != nil {
		t.Fatalf("write recipe.toml: %v", err)
	}
	if _, err := resolveAuditTarget(root, false); err == nil {
		t.Fatalf("resolveAuditTarget accepted a recipe whose build root does not exist")
	}
}

func TestResolveAuditTargetBareDirectory(t *testing.T) {
	dir := t.TempDir()
	target, err := resolveAuditTarget(dir, true)
	if err != nil {
		t.Fatalf("resolveAuditTarget: %v", err)
	}
	if target.label != filepath.Base(dir) {
		t.Fatalf("label = %q, want directory base name", target.label)
	}
	if len(target.allow) == 0 {
		t.Fatalf("allow empty, want default system prefixes")
	}
	if target.meta != nil {
		t.Fatalf("meta = %v, want nil without a recipe", target.meta)
	}
}

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
	}{
		{"", uiModeAuto},
		{"auto", uiModeAuto},
		{"ON", uiModeOn},
		{"off", uiModeOff},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.input)
		if err != nil {
			t.Fatalf("readUIMode(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("readUIMode accepted an invalid value")
	}
}
