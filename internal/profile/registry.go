package profile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kingrea/hdldep/internal/depfile"
)

// Registry maintains known toolchain profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: map[string]Profile{}}
}

// Register installs a profile. Returns an error if the ID already exists.
func (r *Registry) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; exists {
		return fmt.Errorf("profile: %s already registered", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(p Profile) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Lookup returns the profile registered under id.
func (r *Registry) Lookup(id string) (Profile, error) {
	r.mu.RLock()
	p, ok := r.profiles[id]
	r.mu.RUnlock()
	if !ok {
		return Profile{}, fmt.Errorf("profile: unknown id %s", id)
	}
	return p, nil
}

// IDs returns a sorted list of registered profile identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var xilinxPart = []string{"device_name", "device_package", "device_speed"}

// Vivado is the project-mode Vivado profile.
var Vivado = Profile{
	ID:           "vivado",
	Name:         "Vivado",
	Description:  "Xilinx Vivado project",
	RequiredVars: xilinxPart,
	Flags: depfile.Vocabulary{
		depfile.KindSetup:   {depfile.FlagComponent, depfile.FlagFinalize},
		depfile.KindSrc:     {depfile.FlagComponent, depfile.FlagLib, depfile.FlagVHDL2008, depfile.FlagStd, depfile.FlagNoInclude},
		depfile.KindHLSSrc:  {depfile.FlagComponent},
		depfile.KindUtil:    {depfile.FlagComponent},
		depfile.KindAddrtab: {depfile.FlagComponent},
		depfile.KindIPRepo:  {depfile.FlagComponent},
	},
}

// VivadoHLS is the Vivado HLS profile.
var VivadoHLS = Profile{
	ID:           "vivadohls",
	Name:         "Vivado HLS",
	Description:  "Xilinx Vivado HLS solution",
	RequiredVars: xilinxPart,
	Flags: depfile.Vocabulary{
		depfile.KindSetup:  {depfile.FlagComponent, depfile.FlagFinalize},
		depfile.KindSrc:    {depfile.FlagComponent},
		depfile.KindHLSSrc: {depfile.FlagComponent, depfile.FlagTestbench, depfile.FlagCFlags, depfile.FlagCSimFlags, depfile.FlagIncludeComp},
		depfile.KindUtil:   {depfile.FlagComponent},
	},
}

// Sim is the simulation profile. It needs no device.
var Sim = Profile{
	ID:          "sim",
	Name:        "Simulation",
	Description: "HDL simulation (ModelSim/Questa)",
	Flags: depfile.Vocabulary{
		depfile.KindSetup:   {depfile.FlagComponent, depfile.FlagFinalize},
		depfile.KindSrc:     {depfile.FlagComponent, depfile.FlagLib, depfile.FlagVHDL2008, depfile.FlagStd, depfile.FlagNoInclude},
		depfile.KindUtil:    {depfile.FlagComponent},
		depfile.KindAddrtab: {depfile.FlagComponent},
	},
}

// RegisterBuiltins installs the bundled profiles.
func RegisterBuiltins(reg *Registry) {
	for _, p := range []Profile{Vivado, VivadoHLS, Sim} {
		reg.MustRegister(p)
	}
}
