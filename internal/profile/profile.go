// Package profile describes toolchain profiles: which directive flags each
// declaration kind accepts and which variables a toolchain requires before a
// build script can be generated.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/hdldep/internal/depfile"
)

// Profile is a toolchain profile.
type Profile struct {
	ID           string
	Name         string
	Description  string
	RequiredVars []string
	Flags        depfile.Vocabulary
}

// Vocabulary returns the flag vocabulary used while parsing declaration
// files. Include directives always accept -c.
func (p Profile) Vocabulary() depfile.Vocabulary {
	v := make(depfile.Vocabulary, len(p.Flags)+1)
	for kind, flags := range p.Flags {
		v[kind] = append([]depfile.Flag(nil), flags...)
	}
	if !v.Allows(depfile.KindInclude, depfile.FlagComponent) {
		v[depfile.KindInclude] = append(v[depfile.KindInclude], depfile.FlagComponent)
	}
	return v
}

// Validate ensures the profile is usable.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("profile: id is required")
	}
	if err := p.Flags.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.ID, err)
	}
	seen := make(map[string]struct{}, len(p.RequiredVars))
	for _, name := range p.RequiredVars {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("profile %s: empty required variable", p.ID)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("profile %s: duplicate required variable %s", p.ID, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// MissingVarsError lists the required variables a resolution did not bind.
type MissingVarsError struct {
	Profile string
	Missing []string
}

func (e *MissingVarsError) Error() string {
	return fmt.Sprintf("profile %s: missing required variables: %s", e.Profile, strings.Join(e.Missing, ", "))
}

// CheckVars returns a *MissingVarsError when vars lacks any required
// variable. Script generators call it before emitting anything.
func (p Profile) CheckVars(vars map[string]string) error {
	var missing []string
	for _, name := range p.RequiredVars {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingVarsError{Profile: p.ID, Missing: missing}
}
