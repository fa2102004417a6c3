package plugins

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleDefinition = `id: quartus
name: Quartus
required_vars: [device_family, device]
flags:
  src: [lib, vhdl2008]
  setup: [finalize]
`

const sampleTOML = `id = "ghdl"
description = "GHDL simulation"

[flags]
src = ["lib", "std"]
`

const sampleHCL = `
profile "yosys" {
  name  = "Yosys"
  flags = {
    src = ["lib"]
  }
}

profile "nextpnr" {
  required_vars = ["device"]
}
`

func TestParseDefinitionYAML(t *testing.T) {
	def, err := ParseDefinitionYAML([]byte(sampleDefinition))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.ID != "quartus" || !reflect.DeepEqual(def.Flags["src"], []string{"lib", "vhdl2008"}) {
		t.Fatalf("unexpected definition: %+v", def)
	}
}

func TestParseDefinitionYAMLErrors(t *testing.T) {
	if _, err := ParseDefinitionYAML([]byte("")); err == nil {
		t.Fatalf("expected empty payload to fail validation")
	}
	if _, err := ParseDefinitionYAML([]byte("id: x\nflags:\n  src: [bogus]\n")); err == nil {
		t.Fatalf("expected unknown flag to fail validation")
	}
}

func TestParseDefinitionTOML(t *testing.T) {
	def, err := ParseDefinitionTOML([]byte(sampleTOML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.ID != "ghdl" || def.Description != "GHDL simulation" {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if !reflect.DeepEqual(def.Flags["src"], []string{"lib", "std"}) {
		t.Fatalf("unexpected flags: %v", def.Flags)
	}
	if _, err := ParseDefinitionTOML([]byte("id = ")); err == nil {
		t.Fatalf("expected malformed toml to fail")
	}
}

func TestParseDefinitionHCL(t *testing.T) {
	defs, err := ParseDefinitionHCL("profiles.hcl", []byte(sampleHCL))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].ID != "yosys" || defs[0].Name != "Yosys" || !reflect.DeepEqual(defs[0].Flags["src"], []string{"lib"}) {
		t.Fatalf("unexpected first definition: %+v", defs[0])
	}
	if defs[1].ID != "nextpnr" || !reflect.DeepEqual(defs[1].RequiredVars, []string{"device"}) {
		t.Fatalf("unexpected second definition: %+v", defs[1])
	}
	if _, err := ParseDefinitionHCL("empty.hcl", []byte("# nothing\n")); err == nil {
		t.Fatalf("expected file without profile blocks to fail")
	}
	if _, err := ParseDefinitionHCL("bad.hcl", []byte("profile {")); err == nil {
		t.Fatalf("expected malformed hcl to fail")
	}
}

func TestLoadDefinitionDir(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"quartus.yaml": sampleDefinition,
		"ghdl.toml":    sampleTOML,
		"open.hcl":     sampleHCL,
		"notes.txt":    "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	defs, err := LoadDefinitionDir(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var ids []string
	for _, def := range defs {
		ids = append(ids, def.Definition.ID)
	}
	if !reflect.DeepEqual(ids, []string{"ghdl", "yosys", "nextpnr", "quartus"}) {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if defs[0].Path != filepath.Join(root, "ghdl.toml") {
		t.Fatalf("unexpected path %s", defs[0].Path)
	}
	if defs[1].Path != filepath.Join(root, "open.hcl")+"#1" {
		t.Fatalf("unexpected path %s", defs[1].Path)
	}
}

func TestLoadDefinitionDirMissing(t *testing.T) {
	defs, err := LoadDefinitionDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected nil slice for missing dir, got %v", defs)
	}
}
