package explain

import (
	"strings"
	"testing"

	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/rates"
)

func testSystem(t *testing.T) *rates.System {
	t.Helper()
	rxns, err := kinetics.ParseEquations([]string{
		"CO_g + *_s -> CO_s",
		"O2_g + 2*_s -> 2O_s",
	})
	if err != nil {
		t.Fatalf("parse equations: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "CO_g", Kind: kinetics.Gas, Pressure: 1.0, FormationEnergy: 0},
		{Name: "O2_g", Kind: kinetics.Gas, Pressure: 0.3, FormationEnergy: 0},
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "CO_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -1.5},
		{Name: "O_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -1.1},
	}, rxns)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	sys, err := rates.NewSystem(m, numeric.Float64{}, nil, nil)
	if err != nil {
		t.Fatalf("new system: %v", err)
	}
	return sys
}

func TestRateExpression(t *testing.T) {
	f := New(testSystem(t))

	cases := []struct {
		i       int
		forward bool
		want    string
	}{
		{0, true, "rf[0] = kf[0]*p['CO_g']*theta['*_s']"},
		{0, false, "rr[0] = kr[0]*theta['CO_s']"},
		{1, true, "rf[1] = kf[1]*p['O2_g']*theta['*_s']**2"},
		{1, false, "rr[1] = kr[1]*theta['O_s']**2"},
	}
	for _, tc := range cases {
		if got := f.RateExpression(tc.i, tc.forward); got != tc.want {
			t.Errorf("RateExpression(%d, %v) = %q, want %q", tc.i, tc.forward, got, tc.want)
		}
	}
}

func TestRateConstant(t *testing.T) {
	f := New(testSystem(t))
	line, err := f.RateConstant(0, true)
	if err != nil {
		t.Fatalf("RateConstant: %v", err)
	}
	if !strings.HasPrefix(line, "kf[0] = (kB*T/h)*exp(") {
		t.Errorf("unexpected format: %q", line)
	}
	if !strings.Contains(line, "s^-1") {
		t.Errorf("missing unit: %q", line)
	}
}

func TestEquilibriumConstant(t *testing.T) {
	f := New(testSystem(t))
	line, err := f.EquilibriumConstant(0)
	if err != nil {
		t.Fatalf("EquilibriumConstant: %v", err)
	}
	// Adsorption is downhill by 1.5 eV, so K >> 1 and dG = -1.5 shows up.
	if !strings.Contains(line, "-1.5") {
		t.Errorf("reaction free energy missing from %q", line)
	}
}

func TestReportCoversAllReactions(t *testing.T) {
	sys := testSystem(t)
	f := New(sys)
	report, err := f.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	for i := range sys.Model().Reactions {
		if !strings.Contains(report, sys.Model().Reactions[i].Equation) {
			t.Errorf("report missing reaction %d", i)
		}
	}
	if !strings.Contains(report, "rf[1] = kf[1]*p['O2_g']*theta['*_s']**2") {
		t.Error("report missing rate expressions")
	}
}
