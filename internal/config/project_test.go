package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newWorkArea(t *testing.T) *Config {
	t.Helper()
	workArea := t.TempDir()
	if err := InitWorkArea(workArea); err != nil {
		t.Fatalf("init: %v", err)
	}
	dep := filepath.Join(workArea, "src", "fw", "top", "include", "top.dep")
	if err := os.MkdirAll(filepath.Dir(dep), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dep, []byte("src top.vhd\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(workArea)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	return c
}

func TestCreateAndLoadProject(t *testing.T) {
	t.Setenv(SourceRootEnv, "")
	c := newWorkArea(t)
	created, err := c.CreateProject("kc705", "", "fw:top", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := ProjectConfig{Name: "kc705", Toolset: "vivado", TopPackage: "fw", TopComponent: "top", TopDep: "top.dep"}
	if created != want {
		t.Fatalf("created = %+v", created)
	}
	loaded, err := c.LoadProject("kc705")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != want {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Top().Key() != "fw:top" {
		t.Fatalf("top = %s", loaded.Top())
	}
	names, err := c.Projects()
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"kc705"}) {
		t.Fatalf("projects = %v", names)
	}
}

func TestCreateProjectRejects(t *testing.T) {
	t.Setenv(SourceRootEnv, "")
	c := newWorkArea(t)
	if _, err := c.CreateProject("existing", "sim", "fw:top", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	tests := []struct {
		name      string
		project   string
		component string
		topDep    string
		msg       string
	}{
		{name: "existing area", project: "existing", component: "fw:top", msg: "already exists"},
		{name: "bare component", project: "p1", component: "top", msg: "<package>:<component>"},
		{name: "too many separators", project: "p2", component: "fw:top:x", msg: "malformed"},
		{name: "missing dep file", project: "p3", component: "fw:top", topDep: "sim.dep", msg: "not found"},
		{name: "missing component", project: "p4", component: "fw:nope", msg: "not found"},
		{name: "bad project name", project: "../up", component: "fw:top", msg: "invalid project name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CreateProject(tc.project, "sim", tc.component, tc.topDep)
			if err == nil || !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected error containing %q, got %v", tc.msg, err)
			}
		})
	}
}

func TestLoadProjectFillsDefaults(t *testing.T) {
	c := newWorkArea(t)
	dir := c.ProjectDir("legacy")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	body := "top_package: fw\ntop_component: top\n"
	if err := os.WriteFile(filepath.Join(dir, "project.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	project, err := c.LoadProject("legacy")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if project.Name != "legacy" || project.Toolset != "vivado" || project.TopDep != "top.dep" {
		t.Fatalf("defaults not applied: %+v", project)
	}
	if _, err := c.LoadProject("absent"); err == nil {
		t.Fatalf("expected missing project to fail")
	}
}
