package depfile

import (
	"fmt"
	"sort"
	"strings"
)

// Flag is the canonical name of a directive flag.
type Flag string

const (
	FlagComponent   Flag = "component"
	FlagLib         Flag = "lib"
	FlagStd         Flag = "std"
	FlagVHDL2008    Flag = "vhdl2008"
	FlagFinalize    Flag = "finalize"
	FlagTestbench   Flag = "testbench"
	FlagCFlags      Flag = "cflags"
	FlagCSimFlags   Flag = "csimflags"
	FlagIncludeComp Flag = "include-comp"
	FlagNoInclude   Flag = "noinclude"
)

type flagSpec struct {
	flag      Flag
	aliases   []string
	takesArg  bool
	applyFunc func(d *Directive, value, pkg string) error
}

var flagSpecs = []flagSpec{
	{flag: FlagComponent, aliases: []string{"-c", "--component", "--cmp"}, takesArg: true,
		applyFunc: func(d *Directive, value, pkg string) error {
			ref, err := ParseComponentRef(value, pkg)
			if err != nil {
				return err
			}
			d.Target = ref
			return nil
		}},
	{flag: FlagLib, aliases: []string{"-l", "--lib"}, takesArg: true,
		applyFunc: func(d *Directive, value, _ string) error {
			d.Flags.Lib = value
			return nil
		}},
	{flag: FlagStd, aliases: []string{"--std"}, takesArg: true,
		applyFunc: func(d *Directive, value, _ string) error {
			d.Flags.Standard = value
			return nil
		}},
	{flag: FlagVHDL2008, aliases: []string{"--vhdl2008"},
		applyFunc: func(d *Directive, _, _ string) error {
			d.Flags.Standard = "2008"
			return nil
		}},
	{flag: FlagFinalize, aliases: []string{"--finalize", "--finalise"},
		applyFunc: func(d *Directive, _, _ string) error {
			d.Flags.Finalize = true
			return nil
		}},
	{flag: FlagTestbench, aliases: []string{"--tb", "--testbench"},
		applyFunc: func(d *Directive, _, _ string) error {
			d.Flags.Testbench = true
			return nil
		}},
	{flag: FlagCFlags, aliases: []string{"--cflags"}, takesArg: true,
		applyFunc: func(d *Directive, value, _ string) error {
			d.Flags.CFlags = value
			return nil
		}},
	{flag: FlagCSimFlags, aliases: []string{"--csimflags"}, takesArg: true,
		applyFunc: func(d *Directive, value, _ string) error {
			d.Flags.CSimFlags = value
			return nil
		}},
	{flag: FlagIncludeComp, aliases: []string{"-i", "--include-comp"}, takesArg: true,
		applyFunc: func(d *Directive, value, pkg string) error {
			ref, err := ParseComponentRef(value, pkg)
			if err != nil {
				return err
			}
			d.Flags.IncludeComponents = append(d.Flags.IncludeComponents, ref)
			return nil
		}},
	{flag: FlagNoInclude, aliases: []string{"-n", "--noinclude"},
		applyFunc: func(d *Directive, _, _ string) error {
			d.Flags.NoInclude = true
			return nil
		}},
}

var flagsByAlias = func() map[string]*flagSpec {
	out := make(map[string]*flagSpec)
	for i := range flagSpecs {
		for _, alias := range flagSpecs[i].aliases {
			out[alias] = &flagSpecs[i]
		}
	}
	return out
}()

// AllFlags returns every known canonical flag name, sorted.
func AllFlags() []Flag {
	out := make([]Flag, 0, len(flagSpecs))
	for _, spec := range flagSpecs {
		out = append(out, spec.flag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LookupFlag resolves a canonical flag name.
func LookupFlag(name string) (Flag, bool) {
	name = strings.TrimSpace(name)
	for _, spec := range flagSpecs {
		if string(spec.flag) == name {
			return spec.flag, true
		}
	}
	return "", false
}

// LookupAlias resolves a flag as written on a directive line, e.g. `-l`.
func LookupAlias(alias string) (Flag, bool) {
	spec, ok := flagsByAlias[strings.TrimSpace(alias)]
	if !ok {
		return "", false
	}
	return spec.flag, true
}

// Vocabulary lists the flags each directive kind accepts. It is supplied by
// the toolchain profile so the traversal never hard-codes flag semantics.
type Vocabulary map[Kind][]Flag

// Allows reports whether flag is legal for kind.
func (v Vocabulary) Allows(kind Kind, flag Flag) bool {
	for _, f := range v[kind] {
		if f == flag {
			return true
		}
	}
	return false
}

// Validate checks that every kind and flag in the vocabulary is known.
func (v Vocabulary) Validate() error {
	for kind, flags := range v {
		if _, ok := LookupKind(string(kind)); !ok {
			return fmt.Errorf("depfile: vocabulary names unknown kind %q", kind)
		}
		for _, flag := range flags {
			if _, ok := LookupFlag(string(flag)); !ok {
				return fmt.Errorf("depfile: vocabulary names unknown flag %q for %s", flag, kind)
			}
		}
	}
	return nil
}

// Permissive returns a vocabulary accepting every flag on every kind.
func Permissive() Vocabulary {
	all := AllFlags()
	v := make(Vocabulary, len(CommandKinds)+1)
	for _, kind := range CommandKinds {
		v[kind] = append([]Flag(nil), all...)
	}
	v[KindInclude] = []Flag{FlagComponent}
	return v
}
