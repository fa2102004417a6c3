package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/hdldep/internal/depfile"
	"github.com/kingrea/hdldep/internal/pathmaker"
)

const (
	projectsDirName = "proj"
	projectFileName = "project.yaml"
)

// ProjectConfig models proj/<name>/project.yaml: the toolchain profile and
// the top-level component a project area builds.
type ProjectConfig struct {
	Name         string `yaml:"name"`
	Toolset      string `yaml:"toolset"`
	TopPackage   string `yaml:"top_package"`
	TopComponent string `yaml:"top_component"`
	TopDep       string `yaml:"top_dep"`
}

// Top returns the top-level component reference.
func (pc ProjectConfig) Top() depfile.ComponentRef {
	return depfile.ComponentRef{Package: pc.TopPackage, Component: pc.TopComponent}
}

func (pc *ProjectConfig) normalize() {
	pc.Name = strings.TrimSpace(pc.Name)
	pc.Toolset = strings.ToLower(strings.TrimSpace(pc.Toolset))
	pc.TopPackage = strings.TrimSpace(pc.TopPackage)
	pc.TopComponent = strings.TrimSpace(pc.TopComponent)
	pc.TopDep = strings.TrimSpace(pc.TopDep)
}

func (pc ProjectConfig) validate() error {
	if err := validateProjectName(pc.Name); err != nil {
		return err
	}
	if pc.Toolset == "" {
		return fmt.Errorf("project %s: toolset is required", pc.Name)
	}
	if _, err := depfile.ParseComponentRef(pc.TopPackage+":"+pc.TopComponent, ""); err != nil {
		return fmt.Errorf("project %s: top component: %w", pc.Name, err)
	}
	if pc.TopDep == "" || strings.ContainsAny(pc.TopDep, `/\`) {
		return fmt.Errorf("project %s: top_dep must be a file name", pc.Name)
	}
	return nil
}

// ProjectsDir returns the directory holding project areas
func (c *Config) ProjectsDir() string {
	return filepath.Join(c.WorkArea, projectsDirName)
}

// ProjectDir returns the area of a single project
func (c *Config) ProjectDir(name string) string {
	return filepath.Join(c.ProjectsDir(), name)
}

// CreateProject creates proj/<name>/project.yaml. component is a
// `<package>:<component>` token; topDep defaults to the work area default
// declaration file. The area must not exist yet and the top declaration file
// must be present in the source tree.
func (c *Config) CreateProject(name, toolset, component, topDep string) (ProjectConfig, error) {
	if err := validateProjectName(name); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: %w", err)
	}
	component = strings.TrimSpace(component)
	if !strings.Contains(component, ":") {
		return ProjectConfig{}, fmt.Errorf("config: component %q must be <package>:<component>", component)
	}
	ref, err := depfile.ParseComponentRef(component, "")
	if err != nil {
		return ProjectConfig{}, fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(topDep) == "" {
		topDep = c.DefaultDepFile()
	}
	if strings.TrimSpace(toolset) == "" {
		toolset = c.DefaultProfile()
	}
	project := ProjectConfig{
		Name:         name,
		Toolset:      toolset,
		TopPackage:   ref.Package,
		TopComponent: ref.Component,
		TopDep:       topDep,
	}
	project.normalize()
	if err := project.validate(); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: %w", err)
	}

	dir := c.ProjectDir(project.Name)
	if _, err := os.Stat(dir); err == nil {
		return ProjectConfig{}, fmt.Errorf("config: project area %s already exists", dir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ProjectConfig{}, fmt.Errorf("config: stat %s: %w", dir, err)
	}

	pm, err := c.Pathmaker()
	if err != nil {
		return ProjectConfig{}, err
	}
	depPath := pm.Path(project.TopPackage, project.TopComponent, pathmaker.KindInclude, project.TopDep)
	if info, err := os.Stat(depPath); err != nil || info.IsDir() {
		return ProjectConfig{}, fmt.Errorf("config: top declaration file %s not found", depPath)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: create project area: %w", err)
	}
	data, err := yaml.Marshal(project)
	if err != nil {
		return ProjectConfig{}, fmt.Errorf("config: encode project: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, projectFileName), data, 0644); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: write project config: %w", err)
	}
	return project, nil
}

// LoadProject reads proj/<name>/project.yaml.
func (c *Config) LoadProject(name string) (ProjectConfig, error) {
	if err := validateProjectName(name); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: %w", err)
	}
	path := filepath.Join(c.ProjectDir(name), projectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return ProjectConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var project ProjectConfig
	if err := yaml.Unmarshal(data, &project); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if project.Name == "" {
		project.Name = name
	}
	if project.Toolset == "" {
		project.Toolset = c.DefaultProfile()
	}
	if project.TopDep == "" {
		project.TopDep = c.DefaultDepFile()
	}
	project.normalize()
	if err := project.validate(); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return project, nil
}

// Projects lists the project areas holding a project.yaml, sorted by name.
func (c *Config) Projects() ([]string, error) {
	entries, err := os.ReadDir(c.ProjectsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", c.ProjectsDir(), err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(c.ProjectsDir(), entry.Name(), projectFileName)); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func validateProjectName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("project name is required")
	}
	if trimmed == "." || trimmed == ".." || strings.ContainsAny(trimmed, `/\ `) {
		return fmt.Errorf("invalid project name %q", name)
	}
	return nil
}
