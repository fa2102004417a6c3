package plugins

import (
	"fmt"

	"github.com/kingrea/hdldep/internal/config"
	"github.com/kingrea/hdldep/internal/profile"
)

// RegisterProfilePlugins discovers YAML, TOML, HCL and Go profile definitions
// under .hdldep/profiles and registers them. A plugin may not reuse the id of
// a built-in or of another plugin.
func RegisterProfilePlugins(reg *profile.Registry, cfg *config.Config) error {
	if reg == nil || cfg == nil {
		return nil
	}
	defs, err := loadAllDefinitionFiles(cfg.ProfilesDir())
	if err != nil {
		return err
	}
	seen := make(map[string]string, len(defs))
	for _, file := range defs {
		def := file.Definition
		if existing, ok := seen[def.ID]; ok {
			return fmt.Errorf("plugin: duplicate profile id %s (%s and %s)", def.ID, existing, file.Path)
		}
		seen[def.ID] = file.Path
		p, err := def.Profile()
		if err != nil {
			return fmt.Errorf("plugin: %s: %w", file.Path, err)
		}
		if err := reg.Register(p); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", def.ID, file.Path, err)
		}
	}
	return nil
}

func loadAllDefinitionFiles(dir string) ([]DefinitionFile, error) {
	declarative, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	scripted, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	return append(declarative, scripted...), nil
}
