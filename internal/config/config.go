// internal/config/config.go
//
// This package handles configuration and the work area layout. A work area
// is any directory holding a .hdldep/ folder next to the source tree and the
// project areas.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/hdldep/internal/pathmaker"
)

const (
	// WorkDir is the name of the directory we create in each work area
	WorkDir = ".hdldep"

	// SourceRootEnv overrides source_root from the environment or .env
	SourceRootEnv = "HDLDEP_SRC"

	defaultSourceRoot = "src"
	defaultDepFile    = "top.dep"
	defaultProfileID  = "vivado"
)

const defaultWorkConfigYAML = `# hdldep work area configuration
version: 1

# Source tree holding <package>/<component>/ directories, relative to the work area.
source_root: src

# Declaration file used for includes that do not name one.
default_dep_file: top.dep

# Toolchain profile used when a project does not name one.
default_profile: vivado

# Override the per-kind subdirectory of a component, e.g.
# layout:
#   src: firmware/hdl
#   include: firmware/cfg
`

// WorkConfig models .hdldep/config.yaml.
type WorkConfig struct {
	Version        int               `yaml:"version"`
	SourceRoot     string            `yaml:"source_root"`
	DefaultDepFile string            `yaml:"default_dep_file"`
	DefaultProfile string            `yaml:"default_profile"`
	Layout         map[string]string `yaml:"layout,omitempty"`
}

// Config holds the runtime configuration for a work area.
type Config struct {
	// WorkArea is the directory hdldep was started in
	WorkArea string

	// StateDir is WorkArea/.hdldep
	StateDir string

	Work WorkConfig

	// dotenv holds variables read from WorkArea/.env
	dotenv map[string]string
}

// InitWorkArea creates the work area structure in the given directory.
//
// Structure created:
// .hdldep/
// ├── config.yaml
// ├── logs/       <- hdldep.log
// └── profiles/   <- user toolchain profiles (.yaml, .toml, .hcl, .go)
// src/            <- source tree
// proj/           <- project areas
func InitWorkArea(workArea string) error {
	stateDir := filepath.Join(workArea, WorkDir)
	dirs := []string{
		filepath.Join(stateDir, "logs"),
		filepath.Join(stateDir, "profiles"),
		filepath.Join(workArea, defaultSourceRoot),
		filepath.Join(workArea, projectsDirName),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return ensureWorkConfig(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig loads the work area configuration. A missing config.yaml yields
// the defaults.
func NewConfig(workArea string) (*Config, error) {
	abs, err := filepath.Abs(workArea)
	if err != nil {
		return nil, fmt.Errorf("config: resolve work area: %w", err)
	}
	cfg := &Config{
		WorkArea: abs,
		StateDir: filepath.Join(abs, WorkDir),
		Work:     defaultWorkConfig(),
	}
	if err := cfg.loadDotenv(); err != nil {
		return nil, err
	}
	if err := cfg.loadWorkConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// ProfilesDir returns the directory scanned for user toolchain profiles
func (c *Config) ProfilesDir() string {
	return filepath.Join(c.StateDir, "profiles")
}

// WorkConfigPath returns the on-disk location for the work area config file.
func (c *Config) WorkConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// Getenv returns a variable from the process environment, falling back to
// the work area .env file.
func (c *Config) Getenv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return c.dotenv[key]
}

// SourceRoot returns the absolute source root. HDLDEP_SRC wins over
// source_root.
func (c *Config) SourceRoot() string {
	if override := strings.TrimSpace(c.Getenv(SourceRootEnv)); override != "" {
		return resolvePath(c.WorkArea, override)
	}
	return resolvePath(c.WorkArea, c.Work.SourceRoot)
}

// DefaultDepFile returns the declaration file used for includes without one.
func (c *Config) DefaultDepFile() string {
	return c.Work.DefaultDepFile
}

// DefaultProfile returns the profile id used when a project names none.
func (c *Config) DefaultProfile() string {
	return c.Work.DefaultProfile
}

// Pathmaker returns a path resolver over the configured source root and
// layout.
func (c *Config) Pathmaker() (*pathmaker.Pathmaker, error) {
	pm, err := pathmaker.New(c.SourceRoot(), c.Work.Layout)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return pm, nil
}

func (c *Config) loadDotenv() error {
	path := filepath.Join(c.WorkArea, ".env")
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	c.dotenv = values
	return nil
}

func (c *Config) loadWorkConfig() error {
	path := c.WorkConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed WorkConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Work = parsed
	return nil
}

func defaultWorkConfig() WorkConfig {
	return WorkConfig{
		Version:        1,
		SourceRoot:     defaultSourceRoot,
		DefaultDepFile: defaultDepFile,
		DefaultProfile: defaultProfileID,
	}
}

func (wc *WorkConfig) applyDefaults() {
	if wc.Version == 0 {
		wc.Version = 1
	}
	if strings.TrimSpace(wc.SourceRoot) == "" {
		wc.SourceRoot = defaultSourceRoot
	}
	if strings.TrimSpace(wc.DefaultDepFile) == "" {
		wc.DefaultDepFile = defaultDepFile
	}
	if strings.TrimSpace(wc.DefaultProfile) == "" {
		wc.DefaultProfile = defaultProfileID
	}
}

func (wc *WorkConfig) normalize() {
	wc.SourceRoot = strings.TrimSpace(wc.SourceRoot)
	wc.DefaultDepFile = strings.TrimSpace(wc.DefaultDepFile)
	wc.DefaultProfile = strings.ToLower(strings.TrimSpace(wc.DefaultProfile))
	if len(wc.Layout) == 0 {
		wc.Layout = nil
		return
	}
	layout := make(map[string]string, len(wc.Layout))
	for kind, dir := range wc.Layout {
		layout[strings.ToLower(strings.TrimSpace(kind))] = strings.TrimSpace(dir)
	}
	wc.Layout = layout
}

func (wc *WorkConfig) validate() error {
	if wc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if strings.ContainsAny(wc.DefaultDepFile, `/\`) {
		return fmt.Errorf("default_dep_file must be a file name, got %q", wc.DefaultDepFile)
	}
	for kind, dir := range wc.Layout {
		if _, ok := pathmaker.DefaultLayout[pathmaker.Kind(kind)]; !ok {
			return fmt.Errorf("layout[%s]: unknown kind", kind)
		}
		if dir == "" || filepath.IsAbs(dir) {
			return fmt.Errorf("layout[%s]: must be a relative directory", kind)
		}
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureWorkConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultWorkConfigYAML), 0644)
}
