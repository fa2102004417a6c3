package depparser

import (
	"fmt"

	"github.com/kingrea/hdldep/internal/depfile"
)

// Command is one resolved build input.
type Command struct {
	Kind     depfile.Kind
	FilePath string
	// Package and Component own the declaring declaration file.
	Package   string
	Component string
	// Lookup is the component whose directory the path was resolved in. It
	// differs from the owner only for directives given with -c.
	Lookup  depfile.ComponentRef
	DepFile string
	Line    int
	Flags   depfile.Flags
}

// Origin is the declaration file and line that pulled a reference in. The
// zero Origin is the top-level request.
type Origin struct {
	DepFile string
	Line    int
}

// IsTop reports whether the origin is the top-level request.
func (o Origin) IsTop() bool {
	return o.DepFile == ""
}

func (o Origin) String() string {
	if o.IsTop() {
		return "(top)"
	}
	return fmt.Sprintf("%s:%d", o.DepFile, o.Line)
}

// UnresolvedPackage is an include whose package directory does not exist.
type UnresolvedPackage struct {
	Package    string
	IncludedBy []Origin
}

// UnresolvedComponent is an include whose component directory does not exist.
type UnresolvedComponent struct {
	Package    string
	Component  string
	IncludedBy []Origin
}

// UnresolvedPath is a path expression that expanded to no existing file.
type UnresolvedPath struct {
	Package    string
	Component  string
	Kind       depfile.Kind
	Expression string
	// Path is the absolute pattern that was tried.
	Path       string
	IncludedBy []Origin
}

// ParseError records a malformed directive.
type ParseError struct {
	Package   string
	Component string
	DepName   string
	DepPath   string
	Line      int
	Text      string
	Err       error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %q: %v", e.DepPath, e.Line, e.Text, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one resolution. It is never modified after
// Resolve returns and every accessor hands out copies.
type Result struct {
	root    string
	top     depfile.ComponentRef
	depFile string

	packages   []string
	components map[string][]string
	vars       map[string]string
	commands   map[depfile.Kind][]Command

	unresolvedPackages   []UnresolvedPackage
	unresolvedComponents []UnresolvedComponent
	unresolvedPaths      []UnresolvedPath
	errors               []ParseError
}

func newResult(root string, top depfile.ComponentRef, depFile string) *Result {
	return &Result{
		root:       root,
		top:        top,
		depFile:    depFile,
		components: map[string][]string{},
		vars:       map[string]string{},
		commands:   map[depfile.Kind][]Command{},
	}
}

// Root returns the source root the result was resolved against.
func (r *Result) Root() string { return r.root }

// Top returns the top-level component.
func (r *Result) Top() depfile.ComponentRef { return r.top }

// DepFile returns the top-level declaration file name.
func (r *Result) DepFile() string { return r.depFile }

// Packages returns the visited packages in first-visit order.
func (r *Result) Packages() []string {
	return append([]string(nil), r.packages...)
}

// Components returns the visited package → components membership, each
// component list in first-visit order.
func (r *Result) Components() map[string][]string {
	out := make(map[string][]string, len(r.components))
	for pkg, cmps := range r.components {
		out[pkg] = append([]string(nil), cmps...)
	}
	return out
}

// Commands returns the command entries of kind in resolution order.
func (r *Result) Commands(kind depfile.Kind) []Command {
	src := r.commands[kind]
	out := make([]Command, len(src))
	for i, cmd := range src {
		cmd.Flags = cmd.Flags.Clone()
		out[i] = cmd
	}
	return out
}

// CommandCounts returns the number of entries per command kind.
func (r *Result) CommandCounts() map[depfile.Kind]int {
	out := make(map[depfile.Kind]int, len(depfile.CommandKinds))
	for _, kind := range depfile.CommandKinds {
		out[kind] = len(r.commands[kind])
	}
	return out
}

// Vars returns the merged variable bindings.
func (r *Result) Vars() map[string]string {
	out := make(map[string]string, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

// Var returns a single variable binding.
func (r *Result) Var(name string) (string, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// Libs returns the distinct libraries named by src entries, in order of
// first use.
func (r *Result) Libs() []string {
	var libs []string
	seen := map[string]struct{}{}
	for _, cmd := range r.commands[depfile.KindSrc] {
		if cmd.Flags.Lib == "" {
			continue
		}
		if _, ok := seen[cmd.Flags.Lib]; ok {
			continue
		}
		seen[cmd.Flags.Lib] = struct{}{}
		libs = append(libs, cmd.Flags.Lib)
	}
	return libs
}

// UnresolvedPackages returns includes of missing packages.
func (r *Result) UnresolvedPackages() []UnresolvedPackage {
	out := make([]UnresolvedPackage, len(r.unresolvedPackages))
	for i, u := range r.unresolvedPackages {
		u.IncludedBy = append([]Origin(nil), u.IncludedBy...)
		out[i] = u
	}
	return out
}

// UnresolvedComponents returns includes of missing components.
func (r *Result) UnresolvedComponents() []UnresolvedComponent {
	out := make([]UnresolvedComponent, len(r.unresolvedComponents))
	for i, u := range r.unresolvedComponents {
		u.IncludedBy = append([]Origin(nil), u.IncludedBy...)
		out[i] = u
	}
	return out
}

// UnresolvedPaths returns path expressions that matched nothing.
func (r *Result) UnresolvedPaths() []UnresolvedPath {
	out := make([]UnresolvedPath, len(r.unresolvedPaths))
	for i, u := range r.unresolvedPaths {
		u.IncludedBy = append([]Origin(nil), u.IncludedBy...)
		out[i] = u
	}
	return out
}

// Errors returns the parse errors in the order they were found.
func (r *Result) Errors() []ParseError {
	return append([]ParseError(nil), r.errors...)
}

// HasUnresolved reports whether any reference could not be satisfied.
func (r *Result) HasUnresolved() bool {
	return len(r.unresolvedPackages)+len(r.unresolvedComponents)+len(r.unresolvedPaths) > 0
}

// HasErrors reports whether any directive failed to parse.
func (r *Result) HasErrors() bool {
	return len(r.errors) > 0
}

// UnresolvedError summarises why a result cannot be built.
type UnresolvedError struct {
	Packages    int
	Components  int
	Paths       int
	ParseErrors int
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("depparser: %d unresolved packages, %d unresolved components, %d unresolved paths, %d parse errors",
		e.Packages, e.Components, e.Paths, e.ParseErrors)
}

// Check returns an *UnresolvedError when the result has unresolved
// references or parse errors. Anything that drives a toolchain must call it
// first.
func (r *Result) Check() error {
	if !r.HasUnresolved() && !r.HasErrors() {
		return nil
	}
	return &UnresolvedError{
		Packages:    len(r.unresolvedPackages),
		Components:  len(r.unresolvedComponents),
		Paths:       len(r.unresolvedPaths),
		ParseErrors: len(r.errors),
	}
}
