package profile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kingrea/hdldep/internal/depfile"
)

func TestRegistryBuiltins(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg)
	if got := reg.IDs(); !reflect.DeepEqual(got, []string{"sim", "vivado", "vivadohls"}) {
		t.Fatalf("ids = %v", got)
	}
	if _, err := reg.Lookup("quartus"); err == nil {
		t.Fatalf("expected unknown profile to fail")
	}
	if err := reg.Register(Sim); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegisterValidates(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Profile{}); err == nil {
		t.Fatalf("expected missing id to fail")
	}
	bad := Profile{ID: "x", Flags: depfile.Vocabulary{depfile.KindSrc: {depfile.Flag("bogus")}}}
	if err := reg.Register(bad); err == nil {
		t.Fatalf("expected unknown flag to fail")
	}
	dup := Profile{ID: "y", RequiredVars: []string{"a", "a"}}
	if err := reg.Register(dup); err == nil {
		t.Fatalf("expected duplicate required variable to fail")
	}
}

func TestVocabularyAlwaysAllowsIncludeComponent(t *testing.T) {
	v := Sim.Vocabulary()
	if !v.Allows(depfile.KindInclude, depfile.FlagComponent) {
		t.Fatalf("include must accept -c")
	}
	if v.Allows(depfile.KindHLSSrc, depfile.FlagTestbench) {
		t.Fatalf("sim profile must not accept hlssrc --tb")
	}
	if !VivadoHLS.Vocabulary().Allows(depfile.KindHLSSrc, depfile.FlagTestbench) {
		t.Fatalf("vivadohls profile must accept hlssrc --tb")
	}
}

func TestCheckVars(t *testing.T) {
	err := Vivado.CheckVars(map[string]string{"device_name": "xc7z020"})
	var missing *MissingVarsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingVarsError, got %v", err)
	}
	if !reflect.DeepEqual(missing.Missing, []string{"device_package", "device_speed"}) {
		t.Fatalf("missing = %v", missing.Missing)
	}
	full := map[string]string{"device_name": "xc7z020", "device_package": "clg400", "device_speed": "-1"}
	if err := Vivado.CheckVars(full); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Sim.CheckVars(nil); err != nil {
		t.Fatalf("sim requires nothing: %v", err)
	}
}
