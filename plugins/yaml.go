package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionFile pairs a parsed profile definition with its on-disk source.
type DefinitionFile struct {
	Definition ProfileDefinition
	Path       string
}

// ParseDefinitionYAML decodes and validates a single profile definition payload.
func ParseDefinitionYAML(data []byte) (ProfileDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ProfileDefinition{}, fmt.Errorf("plugin: definition payload is empty")
	}
	var def ProfileDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return ProfileDefinition{}, fmt.Errorf("plugin: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return ProfileDefinition{}, err
	}
	return def.Normalized(), nil
}

// decoder parses one definition file. Formats holding a single definition
// return a one-element slice.
type decoder func(path string, data []byte) ([]ProfileDefinition, error)

var decoders = map[string]decoder{
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".toml": decodeTOML,
	".hcl":  decodeHCL,
}

func decodeYAML(_ string, data []byte) ([]ProfileDefinition, error) {
	def, err := ParseDefinitionYAML(data)
	if err != nil {
		return nil, err
	}
	return []ProfileDefinition{def}, nil
}

// LoadDefinitionFile reads a YAML, TOML or HCL file from disk and returns the
// parsed profile definitions. Files with several definitions get a `#n`
// suffix on their path.
func LoadDefinitionFile(path string) ([]DefinitionFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plugin: %s is a directory", path)
	}
	decode, ok := decoders[definitionExt(path)]
	if !ok {
		return nil, fmt.Errorf("plugin: %s: unsupported definition format", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	defs, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}
	cleaned := filepath.Clean(path)
	files := make([]DefinitionFile, 0, len(defs))
	for idx, def := range defs {
		source := cleaned
		if len(defs) > 1 {
			source = fmt.Sprintf("%s#%d", cleaned, idx+1)
		}
		files = append(files, DefinitionFile{Definition: def, Path: source})
	}
	return files, nil
}

// LoadDefinitionDir scans a directory for declarative profile files and
// returns the parsed definitions. Missing directories are treated as "no
// plugins" to simplify startup.
func LoadDefinitionDir(dir string) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var defs []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isDefinitionFile(name) {
			continue
		}
		files, err := LoadDefinitionFile(filepath.Join(trimmed, name))
		if err != nil {
			return nil, err
		}
		defs = append(defs, files...)
	}
	if len(defs) == 0 {
		return nil, nil
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs, nil
}

func definitionExt(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}

func isDefinitionFile(name string) bool {
	_, ok := decoders[definitionExt(name)]
	return ok
}
