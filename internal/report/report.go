// Package report renders a resolution result for a human: what was visited,
// what each command list holds and, above all, what could not be resolved
// and who pulled it in.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kingrea/hdldep/internal/depfile"
	"github.com/kingrea/hdldep/internal/depparser"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	problemStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// Formatter renders sections of a Result. Paths are shown relative to the
// result's source root.
type Formatter struct {
	res *depparser.Result
}

// New returns a formatter over res.
func New(res *depparser.Result) *Formatter {
	if res == nil {
		panic("report: result is required")
	}
	return &Formatter{res: res}
}

// Packages lists the visited packages, sorted.
func (f *Formatter) Packages() string {
	pkgs := f.res.Packages()
	if len(pkgs) == 0 {
		return ""
	}
	sort.Strings(pkgs)
	return strings.Join(pkgs, "\n")
}

// Components draws the visited package → component tree, sorted at both
// levels.
func (f *Formatter) Components() string {
	pkgs := f.res.Packages()
	if len(pkgs) == 0 {
		return ""
	}
	sort.Strings(pkgs)
	members := f.res.Components()
	var b strings.Builder
	for i, pkg := range pkgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		cmps := members[pkg]
		sort.Strings(cmps)
		fmt.Fprintf(&b, "+ %s (%d)", pkg, len(cmps))
		for j, cmp := range cmps {
			branch := "├──"
			if j == len(cmps)-1 {
				branch = "└──"
			}
			fmt.Fprintf(&b, "\n  %s %s", branch, cmp)
		}
	}
	return b.String()
}

// CommandsSummary shows how many entries each command kind holds.
func (f *Formatter) CommandsSummary() string {
	counts := f.res.CommandCounts()
	headers := make([]string, 0, len(depfile.CommandKinds))
	row := make([]string, 0, len(depfile.CommandKinds))
	for _, kind := range depfile.CommandKinds {
		headers = append(headers, string(kind))
		row = append(row, strconv.Itoa(counts[kind]))
	}
	return newTable(headers...).Row(row...).String()
}

// Commands lists the entries of one kind in build order.
func (f *Formatter) Commands(kind depfile.Kind) string {
	cmds := f.res.Commands(kind)
	if len(cmds) == 0 {
		return ""
	}
	t := newTable("path", "component", "flags")
	for _, cmd := range cmds {
		t.Row(f.rel(cmd.FilePath), cmd.Package+":"+cmd.Component, describeFlags(cmd.Flags))
	}
	return t.String()
}

// Variables lists the merged variable bindings, sorted by name.
func (f *Formatter) Variables() string {
	vars := f.res.Vars()
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	t := newTable("variable", "value")
	for _, name := range names {
		t.Row(name, vars[name])
	}
	return t.String()
}

// UnresolvedSummary counts unresolved packages, components and paths.
func (f *Formatter) UnresolvedSummary() string {
	if !f.res.HasUnresolved() {
		return ""
	}
	return newTable("packages", "components", "paths").Row(
		strconv.Itoa(len(f.res.UnresolvedPackages())),
		strconv.Itoa(len(f.res.UnresolvedComponents())),
		strconv.Itoa(len(f.res.UnresolvedPaths())),
	).String()
}

// UnresolvedPackages lists missing packages and their includers.
func (f *Formatter) UnresolvedPackages() string {
	missing := f.res.UnresolvedPackages()
	if len(missing) == 0 {
		return ""
	}
	sort.SliceStable(missing, func(i, j int) bool { return missing[i].Package < missing[j].Package })
	t := newTable("package", "included by")
	for _, u := range missing {
		t.Row(u.Package, f.origins(u.IncludedBy))
	}
	return t.String()
}

// UnresolvedComponents lists missing components and their includers.
func (f *Formatter) UnresolvedComponents() string {
	missing := f.res.UnresolvedComponents()
	if len(missing) == 0 {
		return ""
	}
	sort.SliceStable(missing, func(i, j int) bool {
		if missing[i].Package != missing[j].Package {
			return missing[i].Package < missing[j].Package
		}
		return missing[i].Component < missing[j].Component
	})
	t := newTable("package", "component", "included by")
	for _, u := range missing {
		t.Row(u.Package, u.Component, f.origins(u.IncludedBy))
	}
	return t.String()
}

// UnresolvedFiles lists path expressions that matched nothing, grouped by
// package, component and expression.
func (f *Formatter) UnresolvedFiles() string {
	missing := f.res.UnresolvedPaths()
	if len(missing) == 0 {
		return ""
	}
	sort.SliceStable(missing, func(i, j int) bool {
		a, b := missing[i], missing[j]
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		return a.Expression < b.Expression
	})
	t := newTable("path expression", "kind", "package", "component", "included by")
	for _, u := range missing {
		t.Row(f.rel(u.Path), string(u.Kind), u.Package, u.Component, f.origins(u.IncludedBy))
	}
	return t.String()
}

// ParseErrors lists malformed directives as location, raw line and cause.
func (f *Formatter) ParseErrors() string {
	errs := f.res.Errors()
	if len(errs) == 0 {
		return ""
	}
	t := newTable("location", "line", "error")
	for _, e := range errs {
		t.Row(fmt.Sprintf("%s:%d", f.rel(e.DepPath), e.Line), "'"+e.Text+"'", e.Err.Error())
	}
	return t.String()
}

// Status is a one-line verdict on whether the result can be built.
func (f *Formatter) Status() string {
	if f.res.Check() == nil {
		return okStyle.Render(fmt.Sprintf("%s resolved cleanly", f.res.Top()))
	}
	unresolved := len(f.res.UnresolvedPackages()) + len(f.res.UnresolvedComponents()) + len(f.res.UnresolvedPaths())
	return problemStyle.Render(fmt.Sprintf("%s blocked: %d unresolved, %d parse errors",
		f.res.Top(), unresolved, len(f.res.Errors())))
}

// Render composes every non-empty section.
func (f *Formatter) Render() string {
	type section struct {
		title string
		body  string
		bad   bool
	}
	sections := []section{
		{title: "Components", body: f.Components()},
		{title: "Variables", body: f.Variables()},
		{title: "Commands", body: f.CommandsSummary()},
	}
	for _, kind := range depfile.CommandKinds {
		sections = append(sections, section{title: string(kind), body: f.Commands(kind)})
	}
	sections = append(sections,
		section{title: "Unresolved", body: f.UnresolvedSummary(), bad: true},
		section{title: "Unresolved packages", body: f.UnresolvedPackages(), bad: true},
		section{title: "Unresolved components", body: f.UnresolvedComponents(), bad: true},
		section{title: "Unresolved files", body: f.UnresolvedFiles(), bad: true},
		section{title: "Parse errors", body: f.ParseErrors(), bad: true},
	)

	parts := []string{mutedStyle.Render("source root: " + f.res.Root())}
	for _, s := range sections {
		if s.body == "" {
			continue
		}
		style := titleStyle
		if s.bad {
			style = problemStyle
		}
		parts = append(parts, lipgloss.JoinVertical(lipgloss.Left, style.Render(s.title), s.body))
	}
	parts = append(parts, f.Status())
	return strings.Join(parts, "\n\n")
}

func (f *Formatter) rel(path string) string {
	rel, err := filepath.Rel(f.res.Root(), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

func (f *Formatter) origins(origins []depparser.Origin) string {
	lines := make([]string, 0, len(origins))
	for _, o := range origins {
		if o.IsTop() {
			lines = append(lines, o.String())
			continue
		}
		lines = append(lines, fmt.Sprintf("%s:%d", f.rel(o.DepFile), o.Line))
	}
	return strings.Join(lines, "\n")
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func describeFlags(flags depfile.Flags) string {
	var parts []string
	if flags.Lib != "" {
		parts = append(parts, "lib="+flags.Lib)
	}
	if flags.Standard != "" {
		parts = append(parts, "std="+flags.Standard)
	}
	if flags.Finalize {
		parts = append(parts, "finalize")
	}
	if flags.Testbench {
		parts = append(parts, "tb")
	}
	if flags.CFlags != "" {
		parts = append(parts, "cflags="+flags.CFlags)
	}
	if flags.CSimFlags != "" {
		parts = append(parts, "csimflags="+flags.CSimFlags)
	}
	for _, ref := range flags.IncludeComponents {
		parts = append(parts, "include="+ref.Key())
	}
	if !flags.Include() {
		parts = append(parts, "noinclude")
	}
	return strings.Join(parts, " ")
}
