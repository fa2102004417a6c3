package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWorkConfigDefaultsWhenMissing(t *testing.T) {
	workArea := t.TempDir()
	c, err := NewConfig(workArea)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Work.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Work.Version)
	}
	if c.DefaultDepFile() != defaultDepFile || c.DefaultProfile() != defaultProfileID {
		t.Fatalf("unexpected defaults: %+v", c.Work)
	}
	if c.SourceRoot() != filepath.Join(c.WorkArea, "src") {
		t.Fatalf("unexpected source root %s", c.SourceRoot())
	}
}

func TestInitWorkAreaWritesLoadableConfig(t *testing.T) {
	workArea := t.TempDir()
	if err := InitWorkArea(workArea); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, dir := range []string{".hdldep/logs", ".hdldep/profiles", "src", "proj"} {
		if info, err := os.Stat(filepath.Join(workArea, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s to exist", dir)
		}
	}
	c, err := NewConfig(workArea)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.DefaultProfile() != "vivado" || c.Work.Layout != nil {
		t.Fatalf("unexpected config: %+v", c.Work)
	}
	if err := InitWorkArea(workArea); err != nil {
		t.Fatalf("second init should be a no-op: %v", err)
	}
}

func TestLoadWorkConfigParsesYaml(t *testing.T) {
	workArea := t.TempDir()
	stateDir := filepath.Join(workArea, WorkDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
source_root: firmware
default_dep_file: board.dep
default_profile: " Sim "
layout:
  SRC: hdl
  include: cfg
`)
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(workArea)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.SourceRoot() != filepath.Join(c.WorkArea, "firmware") {
		t.Fatalf("unexpected source root %s", c.SourceRoot())
	}
	if c.DefaultDepFile() != "board.dep" || c.DefaultProfile() != "sim" {
		t.Fatalf("unexpected config: %+v", c.Work)
	}
	pm, err := c.Pathmaker()
	if err != nil {
		t.Fatalf("pathmaker: %v", err)
	}
	if pm.Subdir("src") != "hdl" || pm.Subdir("include") != "cfg" {
		t.Fatalf("layout not applied: src=%s include=%s", pm.Subdir("src"), pm.Subdir("include"))
	}
}

func TestLoadWorkConfigValidation(t *testing.T) {
	cases := map[string]string{
		"unknown kind":  "layout:\n  bitstream: bit\n",
		"absolute dir":  "layout:\n  src: /abs\n",
		"dep file path": "default_dep_file: cfg/top.dep\n",
		"negative":      "version: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			workArea := t.TempDir()
			stateDir := filepath.Join(workArea, WorkDir)
			if err := os.MkdirAll(stateDir, 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewConfig(workArea); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestSourceRootEnvOverride(t *testing.T) {
	workArea := t.TempDir()
	if err := os.WriteFile(filepath.Join(workArea, ".env"), []byte("HDLDEP_SRC=from-dotenv\nOTHER=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(workArea)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if os.Getenv(SourceRootEnv) == "" {
		if c.SourceRoot() != filepath.Join(c.WorkArea, "from-dotenv") {
			t.Fatalf("expected .env override, got %s", c.SourceRoot())
		}
	}
	if c.Getenv("OTHER") != "1" {
		t.Fatalf("expected .env variable to be visible")
	}

	t.Setenv(SourceRootEnv, "/opt/fw")
	if c.SourceRoot() != filepath.Clean("/opt/fw") {
		t.Fatalf("expected process env to win, got %s", c.SourceRoot())
	}
}
