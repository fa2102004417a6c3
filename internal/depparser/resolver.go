// Package depparser walks dependency declaration files from a top-level
// component, following includes depth-first, and accumulates the build
// inputs, variables and every failure it meets into a Result.
package depparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kingrea/hdldep/internal/depfile"
	"github.com/kingrea/hdldep/internal/pathmaker"
)

// DefaultDepFile is the declaration file name used for includes that do not
// name one.
const DefaultDepFile = "top.dep"

// MaxLineLength caps a single declaration line.
const MaxLineLength = 1024 * 1024

const linePreview = 40

// ErrLineTooLong marks a declaration line longer than MaxLineLength.
var ErrLineTooLong = errors.New("line too long")

// Printer receives debug trace lines.
type Printer interface {
	Printf(format string, args ...any)
}

// Options configures a resolution.
type Options struct {
	// Pathmaker maps references onto the source tree. Required.
	Pathmaker *pathmaker.Pathmaker
	// Vocabulary decides which flags each directive kind accepts. Nil accepts
	// every flag.
	Vocabulary depfile.Vocabulary
	// DefaultDepFile names the declaration file of includes without an
	// explicit one. Empty means DefaultDepFile.
	DefaultDepFile string
	Logger         Printer
}

// Resolve walks the component graph rooted at topPkg:topCmp, starting from
// the declaration file depFile. User-data problems never abort the walk;
// they are recorded on the returned Result. Missing options or empty names
// are caller defects and panic.
func Resolve(opts Options, topPkg, topCmp, depFile string) *Result {
	if opts.Pathmaker == nil {
		panic("depparser: Options.Pathmaker is required")
	}
	for label, value := range map[string]string{"top package": topPkg, "top component": topCmp, "declaration file": depFile} {
		if strings.TrimSpace(value) == "" {
			panic(fmt.Sprintf("depparser: %s must not be empty", label))
		}
	}

	top := depfile.ComponentRef{Package: topPkg, Component: topCmp}
	w := newWalker(opts, newResult(opts.Pathmaker.Root(), top, depFile))
	w.include(top, depFile, Origin{})
	w.log.Printf("resolved %s: %d packages, %d unresolved, %d errors",
		top, len(w.res.packages), len(w.res.unresolvedPackages)+len(w.res.unresolvedComponents)+len(w.res.unresolvedPaths), len(w.res.errors))
	return w.res
}

// walker is the state of one resolution. It is never shared.
type walker struct {
	pm         *pathmaker.Pathmaker
	vocab      depfile.Vocabulary
	defaultDep string
	log        Printer
	res        *Result

	visited map[string]bool
	seen    map[depfile.Kind]map[string]struct{}

	unresolvedPkg  map[string]int
	unresolvedCmp  map[string]int
	unresolvedPath map[string]int
}

func newWalker(opts Options, res *Result) *walker {
	defaultDep := strings.TrimSpace(opts.DefaultDepFile)
	if defaultDep == "" {
		defaultDep = DefaultDepFile
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = depfile.Permissive()
	}
	log := opts.Logger
	if log == nil {
		log = discard{}
	}
	return &walker{
		pm:             opts.Pathmaker,
		vocab:          vocab,
		defaultDep:     defaultDep,
		log:            log,
		res:            res,
		visited:        map[string]bool{},
		seen:           map[depfile.Kind]map[string]struct{}{},
		unresolvedPkg:  map[string]int{},
		unresolvedCmp:  map[string]int{},
		unresolvedPath: map[string]int{},
	}
}

// include follows a reference to ref. Missing packages and components are
// recorded but not marked visited, so every includer ends up in the origin
// list.
func (w *walker) include(ref depfile.ComponentRef, depName string, origin Origin) {
	if w.visited[ref.Key()] {
		return
	}
	if !w.exists(ref, origin) {
		return
	}
	w.visit(ref, depName, origin)
}

// exists classifies a missing package or component and records it.
func (w *walker) exists(ref depfile.ComponentRef, origin Origin) bool {
	if !w.pm.PackageExists(ref.Package) {
		w.missingPackage(ref.Package, origin)
		return false
	}
	if !w.pm.ComponentExists(ref.Package, ref.Component) {
		w.missingComponent(ref, origin)
		return false
	}
	return true
}

func (w *walker) visit(ref depfile.ComponentRef, depName string, origin Origin) {
	w.visited[ref.Key()] = true
	w.addMember(ref)

	depPath := w.pm.Path(ref.Package, ref.Component, pathmaker.KindInclude, depName)
	info, err := os.Stat(depPath)
	if err != nil || !info.Mode().IsRegular() {
		w.log.Printf("%s: declaration file %s not found", ref, depPath)
		w.missingPath(UnresolvedPath{
			Package:    ref.Package,
			Component:  ref.Component,
			Kind:       depfile.KindInclude,
			Expression: depName,
			Path:       depPath,
		}, origin)
		return
	}
	w.log.Printf("visit %s (%s)", ref, depPath)

	file, err := os.Open(depPath)
	if err != nil {
		w.parseError(ref, depName, depPath, 0, "", err)
		return
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	line := 0
	for {
		text, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if errors.Is(err, ErrLineTooLong) {
			w.parseError(ref, depName, depPath, line, text, err)
			continue
		}
		if err != nil {
			w.parseError(ref, depName, depPath, line, "", fmt.Errorf("read: %w", err))
			break
		}
		d, err := depfile.ParseLine(text, ref.Package, w.vocab)
		if err != nil {
			w.parseError(ref, depName, depPath, line, text, err)
			continue
		}
		if d == nil {
			continue
		}
		here := Origin{DepFile: depPath, Line: line}
		switch {
		case d.Kind == depfile.KindVar:
			w.res.vars[d.Name] = d.Value
		case d.Kind == depfile.KindInclude:
			name := d.DepFile
			if name == "" {
				name = w.defaultDep
			}
			w.include(d.Target, name, here)
		default:
			w.command(ref, depName, text, d, here)
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// MaxLineLength is consumed whole and returned as a short preview with
// ErrLineTooLong, so the lines after it are still read.
func readLine(r *bufio.Reader) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(buf) > 0 || tooLong) {
				break
			}
			return "", err
		}
		if !tooLong {
			if len(buf)+len(chunk) > MaxLineLength {
				tooLong = true
				buf = append(buf, chunk...)
				buf = buf[:linePreview]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return string(buf) + "...", ErrLineTooLong
	}
	return string(buf), nil
}

// command expands every path expression of a command directive and appends
// the new entries.
func (w *walker) command(owner depfile.ComponentRef, depName, text string, d *depfile.Directive, here Origin) {
	lookup := owner
	if !d.Target.IsZero() {
		lookup = d.Target
		if lookup != owner && !w.exists(lookup, here) {
			return
		}
	}
	kind := pathKind(d)
	for _, expr := range d.Paths {
		matches, err := w.pm.Resolve(lookup.Package, lookup.Component, kind, expr)
		if err != nil {
			w.parseError(owner, depName, here.DepFile, here.Line, text, err)
			continue
		}
		if len(matches) == 0 {
			w.missingPath(UnresolvedPath{
				Package:    lookup.Package,
				Component:  lookup.Component,
				Kind:       d.Kind,
				Expression: expr,
				Path:       w.pm.Path(lookup.Package, lookup.Component, kind, expr),
			}, here)
			continue
		}
		seen := w.seen[d.Kind]
		if seen == nil {
			seen = map[string]struct{}{}
			w.seen[d.Kind] = seen
		}
		for _, path := range matches {
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			w.res.commands[d.Kind] = append(w.res.commands[d.Kind], Command{
				Kind:      d.Kind,
				FilePath:  path,
				Package:   owner.Package,
				Component: owner.Component,
				Lookup:    lookup,
				DepFile:   here.DepFile,
				Line:      here.Line,
				Flags:     d.Flags.Clone(),
			})
		}
	}
}

// pathKind picks the source-tree directory a directive resolves in. HLS
// testbench sources live apart from the synthesisable ones.
func pathKind(d *depfile.Directive) pathmaker.Kind {
	if d.Kind == depfile.KindHLSSrc && d.Flags.Testbench {
		return pathmaker.KindHLSTb
	}
	return pathmaker.Kind(d.Kind)
}

func (w *walker) addMember(ref depfile.ComponentRef) {
	cmps, ok := w.res.components[ref.Package]
	if !ok {
		w.res.packages = append(w.res.packages, ref.Package)
	}
	w.res.components[ref.Package] = append(cmps, ref.Component)
}

func (w *walker) missingPackage(pkg string, origin Origin) {
	if i, ok := w.unresolvedPkg[pkg]; ok {
		w.res.unresolvedPackages[i].IncludedBy = appendOrigin(w.res.unresolvedPackages[i].IncludedBy, origin)
		return
	}
	w.unresolvedPkg[pkg] = len(w.res.unresolvedPackages)
	w.res.unresolvedPackages = append(w.res.unresolvedPackages, UnresolvedPackage{
		Package:    pkg,
		IncludedBy: []Origin{origin},
	})
}

func (w *walker) missingComponent(ref depfile.ComponentRef, origin Origin) {
	key := ref.Key()
	if i, ok := w.unresolvedCmp[key]; ok {
		w.res.unresolvedComponents[i].IncludedBy = appendOrigin(w.res.unresolvedComponents[i].IncludedBy, origin)
		return
	}
	w.unresolvedCmp[key] = len(w.res.unresolvedComponents)
	w.res.unresolvedComponents = append(w.res.unresolvedComponents, UnresolvedComponent{
		Package:    ref.Package,
		Component:  ref.Component,
		IncludedBy: []Origin{origin},
	})
}

func (w *walker) missingPath(u UnresolvedPath, origin Origin) {
	key := string(u.Kind) + "\x00" + u.Path
	if i, ok := w.unresolvedPath[key]; ok {
		w.res.unresolvedPaths[i].IncludedBy = appendOrigin(w.res.unresolvedPaths[i].IncludedBy, origin)
		return
	}
	w.unresolvedPath[key] = len(w.res.unresolvedPaths)
	u.IncludedBy = []Origin{origin}
	w.res.unresolvedPaths = append(w.res.unresolvedPaths, u)
}

func (w *walker) parseError(ref depfile.ComponentRef, depName, depPath string, line int, text string, err error) {
	w.log.Printf("%s:%d: %v", depPath, line, err)
	w.res.errors = append(w.res.errors, ParseError{
		Package:   ref.Package,
		Component: ref.Component,
		DepName:   depName,
		DepPath:   depPath,
		Line:      line,
		Text:      text,
		Err:       err,
	})
}

func appendOrigin(origins []Origin, origin Origin) []Origin {
	for _, existing := range origins {
		if existing == origin {
			return origins
		}
	}
	return append(origins, origin)
}

type discard struct{}

func (discard) Printf(string, ...any) {}
