package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/hdldep/internal/config"
	"github.com/kingrea/hdldep/internal/depfile"
	"github.com/kingrea/hdldep/internal/profile"
)

const sampleYAML = `id: diamond
required_vars: [device]
flags:
  src: [lib]
`

func TestRegisterProfilePlugins(t *testing.T) {
	cfg := initTestConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.ProfilesDir(), "diamond.yaml"), []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	reg := profile.NewRegistry()
	profile.RegisterBuiltins(reg)
	if err := RegisterProfilePlugins(reg, cfg); err != nil {
		t.Fatalf("register plugins: %v", err)
	}
	p, err := reg.Lookup("diamond")
	if err != nil {
		t.Fatalf("lookup plugin: %v", err)
	}
	if !p.Vocabulary().Allows(depfile.KindSrc, depfile.FlagLib) {
		t.Fatalf("plugin vocabulary not applied: %+v", p.Flags)
	}
	if err := p.CheckVars(map[string]string{}); err == nil {
		t.Fatalf("expected plugin required vars to apply")
	}
}

func TestRegisterProfilePluginsRejectsDuplicates(t *testing.T) {
	cfg := initTestConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.ProfilesDir(), "a.yaml"), []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.ProfilesDir(), "b.toml"), []byte(`id = "diamond"`), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	err := RegisterProfilePlugins(profile.NewRegistry(), cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate profile id diamond") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestRegisterProfilePluginsCannotShadowBuiltins(t *testing.T) {
	cfg := initTestConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.ProfilesDir(), "vivado.yaml"), []byte("id: vivado\n"), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	reg := profile.NewRegistry()
	profile.RegisterBuiltins(reg)
	if err := RegisterProfilePlugins(reg, cfg); err == nil {
		t.Fatalf("expected builtin id to be protected")
	}
}

func initTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	if err := config.InitWorkArea(root); err != nil {
		t.Fatalf("init work area: %v", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}
