package plugins

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ParseDefinitionTOML decodes a TOML profile definition. The document is
// re-encoded as YAML so both formats share one schema and one validator.
func ParseDefinitionTOML(data []byte) (ProfileDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ProfileDefinition{}, fmt.Errorf("plugin: definition payload is empty")
	}
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return ProfileDefinition{}, fmt.Errorf("plugin: decode toml: %w", err)
	}
	payload, err := yaml.Marshal(tree.ToMap())
	if err != nil {
		return ProfileDefinition{}, fmt.Errorf("plugin: re-encode toml: %w", err)
	}
	return ParseDefinitionYAML(payload)
}

func decodeTOML(_ string, data []byte) ([]ProfileDefinition, error) {
	def, err := ParseDefinitionTOML(data)
	if err != nil {
		return nil, err
	}
	return []ProfileDefinition{def}, nil
}
