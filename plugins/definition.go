package plugins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/hdldep/internal/depfile"
	"github.com/kingrea/hdldep/internal/profile"
)

// ProfileDefinition describes a toolchain profile loaded from the work area.
//
// The struct mirrors the on-disk schema under .hdldep/profiles/. YAML and TOML
// files hold one definition at the top level; HCL files hold any number of
// `profile "<id>" { ... }` blocks.
type ProfileDefinition struct {
	ID           string              `json:"id" yaml:"id" hcl:"id,label"`
	Name         string              `json:"name,omitempty" yaml:"name,omitempty" hcl:"name,optional"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty" hcl:"description,optional"`
	RequiredVars []string            `json:"required_vars,omitempty" yaml:"required_vars,omitempty" hcl:"required_vars,optional"`
	Flags        map[string][]string `json:"flags,omitempty" yaml:"flags,omitempty" hcl:"flags,optional"`
}

// Normalized returns a trimmed copy of the definition. Flag names may carry
// leading dashes in the file; they are stripped here.
func (def ProfileDefinition) Normalized() ProfileDefinition {
	clone := ProfileDefinition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
	}
	for _, name := range def.RequiredVars {
		clone.RequiredVars = append(clone.RequiredVars, strings.TrimSpace(name))
	}
	if len(def.Flags) > 0 {
		clone.Flags = make(map[string][]string, len(def.Flags))
		for kind, flags := range def.Flags {
			trimmed := strings.TrimSpace(kind)
			if trimmed == "" {
				continue
			}
			names := make([]string, 0, len(flags))
			for _, flag := range flags {
				names = append(names, strings.TrimLeft(strings.TrimSpace(flag), "-"))
			}
			clone.Flags[trimmed] = names
		}
	}
	return clone
}

// Profile converts the definition into a registrable profile.
func (def ProfileDefinition) Profile() (profile.Profile, error) {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return profile.Profile{}, fmt.Errorf("plugin: id is required")
	}
	vocab := make(depfile.Vocabulary, len(normalized.Flags))
	kinds := make([]string, 0, len(normalized.Flags))
	for kind := range normalized.Flags {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, name := range kinds {
		kind, ok := depfile.LookupKind(name)
		if !ok {
			return profile.Profile{}, fmt.Errorf("plugin %s: unknown directive kind %q", normalized.ID, name)
		}
		for _, flagName := range normalized.Flags[name] {
			flag, ok := resolveFlag(flagName)
			if !ok {
				return profile.Profile{}, fmt.Errorf("plugin %s: unknown flag %q on %s", normalized.ID, flagName, kind)
			}
			vocab[kind] = append(vocab[kind], flag)
		}
	}
	p := profile.Profile{
		ID:           normalized.ID,
		Name:         normalized.Name,
		Description:  normalized.Description,
		RequiredVars: normalized.RequiredVars,
		Flags:        vocab,
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, fmt.Errorf("plugin: %w", err)
	}
	return p, nil
}

// Validate ensures the definition converts into a usable profile.
func (def ProfileDefinition) Validate() error {
	_, err := def.Profile()
	return err
}

// resolveFlag accepts canonical flag names as well as any alias with its
// dashes removed, so `l`, `lib` and `--lib` all name the library flag.
func resolveFlag(name string) (depfile.Flag, bool) {
	if flag, ok := depfile.LookupFlag(name); ok {
		return flag, true
	}
	for _, prefix := range []string{"--", "-"} {
		if flag, ok := depfile.LookupAlias(prefix + name); ok {
			return flag, true
		}
	}
	return "", false
}
