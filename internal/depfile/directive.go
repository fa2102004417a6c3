// Package depfile parses dependency declaration files: one directive per
// line, `<kind> [flags] <path-expression>...`, `include <pkg>:<cmp> [file]`
// or `name=value`.
package depfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind is a directive kind.
type Kind string

const (
	KindSetup   Kind = "setup"
	KindSrc     Kind = "src"
	KindHLSSrc  Kind = "hlssrc"
	KindUtil    Kind = "util"
	KindAddrtab Kind = "addrtab"
	KindIPRepo  Kind = "iprepo"
	KindInclude Kind = "include"
	KindVar     Kind = "var"
)

// CommandKinds lists the kinds that produce command entries, in the order
// reports display them.
var CommandKinds = []Kind{KindSetup, KindSrc, KindHLSSrc, KindUtil, KindAddrtab, KindIPRepo}

// LookupKind returns the directive kind named by s. Variable assignments are
// not named kinds and are never returned.
func LookupKind(s string) (Kind, bool) {
	kind := Kind(strings.TrimSpace(s))
	if kind == KindInclude {
		return kind, true
	}
	for _, k := range CommandKinds {
		if k == kind {
			return kind, true
		}
	}
	return "", false
}

// IsCommand reports whether the kind produces command entries.
func (k Kind) IsCommand() bool {
	for _, c := range CommandKinds {
		if c == k {
			return true
		}
	}
	return false
}

var (
	ErrUnknownKind        = errors.New("unknown directive")
	ErrUnknownFlag        = errors.New("unknown flag")
	ErrFlagNotAllowed     = errors.New("flag not allowed")
	ErrMissingValue       = errors.New("missing flag value")
	ErrMissingPath        = errors.New("missing path expression")
	ErrTooManyArgs        = errors.New("too many arguments")
	ErrMalformedComponent = errors.New("malformed component")
	ErrBadVariable        = errors.New("invalid variable assignment")
	ErrUnterminatedQuote  = errors.New("unterminated quote")
)

// ComponentRef identifies a component by package and name.
type ComponentRef struct {
	Package   string
	Component string
}

// IsZero reports whether the reference is unset.
func (r ComponentRef) IsZero() bool {
	return r.Package == "" && r.Component == ""
}

// Key is the canonical `<pkg>:<cmp>` form.
func (r ComponentRef) Key() string {
	return r.Package + ":" + r.Component
}

func (r ComponentRef) String() string {
	return r.Key()
}

// ParseComponentRef parses `<pkg>:<cmp>` or `<cmp>`. A bare component name
// belongs to defaultPkg. More than one separator is malformed.
func ParseComponentRef(token, defaultPkg string) (ComponentRef, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ":") > 1 {
		return ComponentRef{}, fmt.Errorf("%w %q: expected <package>:<component>", ErrMalformedComponent, token)
	}
	pkg, cmp, found := strings.Cut(token, ":")
	if !found {
		pkg, cmp = defaultPkg, token
	}
	pkg, cmp = strings.TrimSpace(pkg), strings.TrimSpace(cmp)
	if !validName(pkg) || !validName(cmp) {
		return ComponentRef{}, fmt.Errorf("%w %q: expected <package>:<component>", ErrMalformedComponent, token)
	}
	return ComponentRef{Package: pkg, Component: cmp}, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`+string(os.PathSeparator)) && !strings.ContainsAny(name, " \t")
}

// Flags is the fixed set of annotations a directive may carry. Which of
// them are legal for a kind is decided by the active Vocabulary.
type Flags struct {
	Lib               string
	Standard          string
	Finalize          bool
	Testbench         bool
	CFlags            string
	CSimFlags         string
	IncludeComponents []ComponentRef
	NoInclude         bool
}

// Include reports whether the entry should be added to the build.
func (f Flags) Include() bool {
	return !f.NoInclude
}

// VHDL2008 reports whether the entry overrides the language standard to
// VHDL-2008.
func (f Flags) VHDL2008() bool {
	return f.Standard == "2008"
}

// Clone returns a deep copy.
func (f Flags) Clone() Flags {
	clone := f
	if len(f.IncludeComponents) > 0 {
		clone.IncludeComponents = append([]ComponentRef(nil), f.IncludeComponents...)
	}
	return clone
}

// Directive is one parsed declaration line.
type Directive struct {
	Kind Kind
	// Paths holds the path expressions of a command directive.
	Paths []string
	// Target is the include target, or the lookup component of a command
	// directive given with -c. Zero means the declaring component.
	Target ComponentRef
	// DepFile is the alternate declaration file of an include.
	DepFile string
	Name    string
	Value   string
	Flags   Flags
}
