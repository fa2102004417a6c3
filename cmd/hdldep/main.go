// cmd/hdldep/main.go
//
// Entry point for hdldep. Run it from a work area (the directory holding
// .hdldep/, src/ and proj/).
//
// Flow:
// 1. Load the work area config and pick the project area
// 2. Resolve the project's top component against the source tree
// 3. Show the report (viewer on a terminal, plain text otherwise)
// 4. Exit non-zero when the build is blocked

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/kingrea/hdldep/internal/config"
	"github.com/kingrea/hdldep/internal/depparser"
	"github.com/kingrea/hdldep/internal/logging"
	"github.com/kingrea/hdldep/internal/profile"
	"github.com/kingrea/hdldep/internal/report"
	"github.com/kingrea/hdldep/internal/tui"
	"github.com/kingrea/hdldep/plugins"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run does the work of main and returns the exit code, so deferred cleanup
// runs before the process exits.
func run(args []string) int {
	flags := flag.NewFlagSet("hdldep", flag.ContinueOnError)
	plain := flags.Bool("plain", false, "print the report instead of opening the viewer")
	create := flags.String("create", "", "create the named project area for `package:component` and exit")
	toolset := flags.String("toolset", "", "toolchain profile for -create (defaults to the work area profile)")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: hdldep [-plain] [-create pkg:cmp [-toolset id]] [project]\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fail("Error getting working directory: %v", err)
	}
	if err := config.InitWorkArea(cwd); err != nil {
		return fail("Error initializing work area: %v", err)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		return fail("Error loading config: %v", err)
	}

	if *create != "" {
		name := flags.Arg(0)
		if name == "" {
			return fail("-create needs a project name")
		}
		project, err := cfg.CreateProject(name, *toolset, *create, "")
		if err != nil {
			return fail("Error creating project: %v", err)
		}
		fmt.Printf("created %s (%s, %s)\n", cfg.ProjectDir(project.Name), project.Toolset, project.Top().Key())
		return 0
	}

	name, err := pickProject(cfg, flags.Arg(0))
	if err != nil {
		return fail("%v", err)
	}
	project, err := cfg.LoadProject(name)
	if err != nil {
		return fail("Error loading project: %v", err)
	}

	log, err := logging.New(cfg.WorkArea)
	if err != nil {
		return fail("Error opening log: %v", err)
	}
	defer log.Close()
	plog := log.Named("project " + project.Name)

	reg := profile.NewRegistry()
	profile.RegisterBuiltins(reg)
	if err := plugins.RegisterProfilePlugins(reg, cfg); err != nil {
		plog.Warnf("profile plugins: %v", err)
		return fail("Error loading profile plugins: %v", err)
	}
	prof, err := reg.Lookup(project.Toolset)
	if err != nil {
		plog.Warnf("%v", err)
		return fail("Error: project %s: %v (available: %s)", project.Name, err, strings.Join(reg.IDs(), ", "))
	}

	pm, err := cfg.Pathmaker()
	if err != nil {
		plog.Warnf("source root: %v", err)
		return fail("Error preparing source root: %v", err)
	}
	plog.Printf("resolving %s with profile %s", project.Top().Key(), prof.ID)
	res := depparser.Resolve(depparser.Options{
		Pathmaker:      pm,
		Vocabulary:     prof.Vocabulary(),
		DefaultDepFile: cfg.DefaultDepFile(),
		Logger:         log.Named("depparser"),
	}, project.TopPackage, project.TopComponent, project.TopDep)

	formatter := report.New(res)
	if !*plain && isatty.IsTerminal(os.Stdout.Fd()) {
		p := tea.NewProgram(tui.NewApp(project.Name, formatter), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fail("Error running viewer: %v", err)
		}
	} else {
		fmt.Println(formatter.Render())
	}

	code := 0
	if err := res.Check(); err != nil {
		plog.Warnf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	if err := prof.CheckVars(res.Vars()); err != nil {
		var missing *profile.MissingVarsError
		if errors.As(err, &missing) {
			plog.Warnf("missing variables: %s", strings.Join(missing.Missing, ", "))
		}
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	return code
}

// pickProject returns the requested project, or the only one when none was
// named.
func pickProject(cfg *config.Config, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	names, err := cfg.Projects()
	if err != nil {
		return "", fmt.Errorf("list projects: %w", err)
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("no project areas under %s; create one with -create", cfg.ProjectsDir())
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("several projects found, pick one: %s", strings.Join(names, ", "))
	}
}

func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return 1
}
