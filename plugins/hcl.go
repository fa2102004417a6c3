package plugins

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclProfileFile is the top-level structure of an HCL profile file.
type hclProfileFile struct {
	Profiles []ProfileDefinition `hcl:"profile,block"`
}

// ParseDefinitionHCL decodes every `profile "<id>" { ... }` block in src.
// filename is only used in diagnostics.
func ParseDefinitionHCL(filename string, src []byte) ([]ProfileDefinition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin: parse hcl: %w", diags)
	}
	var parsed hclProfileFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin: decode hcl: %w", diags)
	}
	if len(parsed.Profiles) == 0 {
		return nil, fmt.Errorf("plugin: no profile blocks")
	}
	defs := make([]ProfileDefinition, 0, len(parsed.Profiles))
	for _, def := range parsed.Profiles {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, def.Normalized())
	}
	return defs, nil
}

func decodeHCL(path string, data []byte) ([]ProfileDefinition, error) {
	return ParseDefinitionHCL(path, data)
}
