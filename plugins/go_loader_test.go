package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const goPluginSource = `package main

func ProfileDefinitions() ([]map[string]any, error) {
	return []map[string]any{
		{
			"id":            "radiant",
			"required_vars": []string{"device"},
			"flags": map[string]any{
				"src": []string{"lib"},
			},
		},
	}, nil
}`

const goSinglePluginSource = `package main

func ProfileDefinitions() map[string]any {
	return map[string]any{"id": "lint"}
}`

func TestLoadGoDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "radiant.go"), []byte(goPluginSource), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lint.go"), []byte(goSinglePluginSource), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	defs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load go defs: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Definition.ID != "lint" || defs[1].Definition.ID != "radiant" {
		t.Fatalf("unexpected definitions: %+v", defs)
	}
	if defs[1].Path != filepath.Join(dir, "radiant.go")+"#1" {
		t.Fatalf("unexpected path %s", defs[1].Path)
	}
	if got := defs[1].Definition.Flags["src"]; len(got) != 1 || got[0] != "lib" {
		t.Fatalf("unexpected flags: %v", defs[1].Definition.Flags)
	}
}

func TestLoadGoDefinitionDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatalf("write broken plugin: %v", err)
	}
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatalf("expected error for missing ProfileDefinitions function")
	}
}

func TestLoadGoDefinitionDirPropagatesError(t *testing.T) {
	dir := t.TempDir()
	src := "package main\n\nimport \"errors\"\n\nfunc ProfileDefinitions() ([]map[string]any, error) {\n\treturn nil, errors.New(\"no licence\")\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "failing.go"), []byte(src), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatalf("expected plugin error to propagate")
	}
}
