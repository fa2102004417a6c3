// Package pathmaker maps (package, component, kind, pattern) tuples onto the
// source tree. The on-disk directory convention lives here and nowhere else:
//
//	<root>/<package>/<component>/<kind-dir>/<pattern>
package pathmaker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Kind names a source-tree subdirectory category.
type Kind string

const (
	KindInclude Kind = "include"
	KindSetup   Kind = "setup"
	KindSrc     Kind = "src"
	KindHLSSrc  Kind = "hlssrc"
	KindHLSTb   Kind = "hlstb"
	KindUtil    Kind = "util"
	KindAddrtab Kind = "addrtab"
	KindIPRepo  Kind = "iprepo"
)

// DefaultLayout is the kind → subdirectory convention used when no override
// is configured.
var DefaultLayout = map[Kind]string{
	KindInclude: "include",
	KindSetup:   "setup",
	KindSrc:     "src",
	KindHLSSrc:  "hlssrc",
	KindHLSTb:   "hlstb",
	KindUtil:    "util",
	KindAddrtab: "addrtab",
	KindIPRepo:  "iprepo",
}

// Pathmaker resolves paths below a fixed source root.
type Pathmaker struct {
	root   string
	layout map[Kind]string
}

// New returns a Pathmaker rooted at root. Entries in overrides replace the
// default subdirectory for the named kinds; unknown kinds are rejected.
func New(root string, overrides map[string]string) (*Pathmaker, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, fmt.Errorf("pathmaker: source root is required")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("pathmaker: resolve root %s: %w", trimmed, err)
	}
	layout := make(map[Kind]string, len(DefaultLayout))
	for kind, dir := range DefaultLayout {
		layout[kind] = dir
	}
	for name, dir := range overrides {
		kind := Kind(strings.TrimSpace(name))
		if _, ok := DefaultLayout[kind]; !ok {
			return nil, fmt.Errorf("pathmaker: unknown kind %q in layout", name)
		}
		dir = strings.TrimSpace(dir)
		if dir == "" || filepath.IsAbs(dir) {
			return nil, fmt.Errorf("pathmaker: layout for %s must be a relative directory", kind)
		}
		layout[kind] = filepath.Clean(dir)
	}
	return &Pathmaker{root: filepath.Clean(abs), layout: layout}, nil
}

// Root returns the absolute source root.
func (p *Pathmaker) Root() string {
	return p.root
}

// Subdir returns the configured subdirectory for kind.
func (p *Pathmaker) Subdir(kind Kind) string {
	dir, ok := p.layout[kind]
	if !ok {
		panic(fmt.Sprintf("pathmaker: unknown kind %q", kind))
	}
	return dir
}

// PackagePath returns <root>/<pkg>.
func (p *Pathmaker) PackagePath(pkg string) string {
	mustIdent("package", pkg)
	return filepath.Join(p.root, pkg)
}

// ComponentPath returns <root>/<pkg>/<cmp>.
func (p *Pathmaker) ComponentPath(pkg, cmp string) string {
	mustIdent("package", pkg)
	mustIdent("component", cmp)
	return filepath.Join(p.root, pkg, cmp)
}

// Dir returns the conventional directory for kind inside a component.
func (p *Pathmaker) Dir(pkg, cmp string, kind Kind) string {
	return filepath.Join(p.ComponentPath(pkg, cmp), p.Subdir(kind))
}

// Path joins name onto the kind directory without expanding or checking it.
// Absolute names are returned cleaned.
func (p *Pathmaker) Path(pkg, cmp string, kind Kind, name string) string {
	dir := p.Dir(pkg, cmp, kind)
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}

// PackageExists reports whether the package directory is present.
func (p *Pathmaker) PackageExists(pkg string) bool {
	return isDir(p.PackagePath(pkg))
}

// ComponentExists reports whether the component directory is present.
func (p *Pathmaker) ComponentExists(pkg, cmp string) bool {
	return isDir(p.ComponentPath(pkg, cmp))
}

// Resolve expands pattern inside the kind directory of pkg/cmp and returns
// the existing matches, absolute and lexically sorted. IP repositories match
// directories; every other kind matches regular files only. A name that
// exists on disk is taken literally even when it contains glob characters.
// An empty result is not an error. A malformed glob is.
func (p *Pathmaker) Resolve(pkg, cmp string, kind Kind, pattern string) ([]string, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		panic("pathmaker: pattern must not be empty")
	}
	full := p.Path(pkg, cmp, kind, pattern)
	wantDir := kind == KindIPRepo

	candidates := []string{full}
	if _, err := os.Lstat(full); err != nil && hasMeta(pattern) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("pathmaker: expand %q: %w", pattern, err)
		}
		glob := pattern
		if !filepath.IsAbs(pattern) {
			// Only the expression is a pattern; the directory above it is
			// matched literally.
			glob = escapeMeta(p.Dir(pkg, cmp, kind)) + string(filepath.Separator) + pattern
		}
		matches, err := doublestar.Glob(glob)
		if err != nil {
			return nil, fmt.Errorf("pathmaker: expand %q: %w", pattern, err)
		}
		candidates = matches
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		cleaned := filepath.Clean(candidate)
		if _, dup := seen[cleaned]; dup {
			continue
		}
		info, err := os.Stat(cleaned)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("pathmaker: stat %s: %w", cleaned, err)
		}
		if wantDir != info.IsDir() {
			continue
		}
		if !wantDir && !info.Mode().IsRegular() {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	sort.Strings(out)
	return out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}

func escapeMeta(dir string) string {
	var b strings.Builder
	for _, r := range dir {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func mustIdent(label, value string) {
	if strings.TrimSpace(value) == "" {
		panic(fmt.Sprintf("pathmaker: %s name must not be empty", label))
	}
	if strings.ContainsRune(value, os.PathSeparator) || value == "." || value == ".." {
		panic(fmt.Sprintf("pathmaker: invalid %s name %q", label, value))
	}
}
