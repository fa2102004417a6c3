package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/hdldep/internal/config"
	"github.com/kingrea/hdldep/internal/logging"
)

func setupWorkArea(t *testing.T, topDep string) string {
	t.Helper()
	t.Setenv(config.SourceRootEnv, "")
	workArea := t.TempDir()
	files := map[string]string{
		"src/fw/top/include/top.dep": topDep,
		"src/fw/top/src/top.vhd":     "",
	}
	for rel, content := range files {
		path := filepath.Join(workArea, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(workArea); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevDir) })
	return workArea
}

func readLog(t *testing.T, workArea string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(workArea, config.WorkDir, "logs", logging.FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestRunCreatesAndResolvesProject(t *testing.T) {
	workArea := setupWorkArea(t, "src top.vhd\n")
	if code := run([]string{"-create", "fw:top", "-toolset", "sim", "blinky"}); code != 0 {
		t.Fatalf("create exit code = %d", code)
	}
	if _, err := os.Stat(filepath.Join(workArea, "proj", "blinky", "project.yaml")); err != nil {
		t.Fatalf("project area not written: %v", err)
	}
	if code := run([]string{"-plain"}); code != 0 {
		t.Fatalf("resolve exit code = %d", code)
	}
	log := readLog(t, workArea)
	for _, want := range []string{"INFO project blinky: resolving fw:top with profile sim", "INFO depparser: visit fw:top"} {
		if !strings.Contains(log, want) {
			t.Fatalf("log missing %q:\n%s", want, log)
		}
	}
}

func TestRunLogsFailureBeforeExit(t *testing.T) {
	workArea := setupWorkArea(t, "src top.vhd\n")
	if code := run([]string{"-create", "fw:top", "-toolset", "nope", "blinky"}); code != 0 {
		t.Fatalf("create exit code = %d", code)
	}
	if code := run([]string{"-plain", "blinky"}); code != 1 {
		t.Fatalf("unknown profile exit code = %d, want 1", code)
	}
	if log := readLog(t, workArea); !strings.Contains(log, "WARN project blinky:") {
		t.Fatalf("failure not logged:\n%s", log)
	}
}

func TestRunBlockedBuildExitsNonZero(t *testing.T) {
	workArea := setupWorkArea(t, "src top.vhd missing.vhd\n")
	if code := run([]string{"-create", "fw:top", "-toolset", "sim", "blinky"}); code != 0 {
		t.Fatalf("create exit code = %d", code)
	}
	if code := run([]string{"-plain", "blinky"}); code != 1 {
		t.Fatalf("blocked exit code = %d, want 1", code)
	}
	if log := readLog(t, workArea); !strings.Contains(log, "WARN project blinky: depparser: 0 unresolved packages, 0 unresolved components, 1 unresolved paths") {
		t.Fatalf("blocked build not logged:\n%s", log)
	}
}

func TestRunRequiresProjectChoice(t *testing.T) {
	setupWorkArea(t, "")
	if code := run([]string{"-plain"}); code != 1 {
		t.Fatalf("exit code without projects = %d, want 1", code)
	}
}
