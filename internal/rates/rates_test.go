package rates

import (
	"errors"
	"math"
	"testing"

	"github.com/mvellank/surfkin/internal/archive"
	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
)

func adsorptionSystem(t *testing.T, b numeric.Backend, sink archive.Sink) *System {
	t.Helper()
	rxns, err := kinetics.ParseEquations([]string{"CO_g + *_s -> CO_s"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "CO_g", Kind: kinetics.Gas, Pressure: 1.0, FormationEnergy: 0},
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "CO_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -1.5},
	}, rxns)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	sys, err := NewSystem(m, b, sink, nil)
	if err != nil {
		t.Fatalf("system: %v", err)
	}
	return sys
}

func TestRateConstantsEyring(t *testing.T) {
	b := numeric.Float64{}
	sys := adsorptionSystem(t, b, nil)

	kf, kr, err := sys.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}

	m := sys.Model()
	kbt := m.KB * m.Temperature
	prefactor := kbt / m.H

	// Barrierless adsorption: kf is the bare prefactor; desorption pays the
	// full 1.5 eV.
	if got := kf[0].Float64(); math.Abs(got-prefactor)/prefactor > 1e-12 {
		t.Errorf("kf = %g, want prefactor %g", got, prefactor)
	}
	wantKr := prefactor * math.Exp(-1.5/kbt)
	if got := kr[0].Float64(); math.Abs(got-wantKr)/wantKr > 1e-9 {
		t.Errorf("kr = %g, want %g", got, wantKr)
	}
	if kf[0].Cmp(kr[0]) <= 0 {
		t.Error("downhill adsorption must have kf > kr")
	}
}

func TestReactionEnergiesTieBreak(t *testing.T) {
	// With G(IS) == G(FS) the barrier top is the final state, so both
	// barriers are zero and kf == kr exactly: reversibility 1 at equal
	// coverages.
	b := numeric.Float64{}
	rxns, err := kinetics.ParseEquations([]string{"A_s -> B_s"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "A_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -0.7},
		{Name: "B_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -0.7},
	}, rxns)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	sys, err := NewSystem(m, b, nil, nil)
	if err != nil {
		t.Fatalf("system: %v", err)
	}

	gf, gr, err := sys.ReactionEnergies(0)
	if err != nil {
		t.Fatalf("ReactionEnergies: %v", err)
	}
	if gf.Float64() != 0 || gr.Float64() != 0 {
		t.Errorf("barriers = (%g, %g), want (0, 0)", gf.Float64(), gr.Float64())
	}

	kf, kr, err := sys.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}
	if kf[0].Cmp(kr[0]) != 0 {
		t.Errorf("kf = %v, kr = %v, want equal", kf[0], kr[0])
	}

	cvgs := numeric.FromFloat64s(b, []float64{0.3, 0.3})
	rf, rr, err := sys.Rates(cvgs)
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	revs, err := sys.Reversibilities(rf, rr)
	if err != nil {
		t.Fatalf("Reversibilities: %v", err)
	}
	if revs[0] != 1.0 {
		t.Errorf("reversibility = %g, want exactly 1", revs[0])
	}
}

func TestUphillBarrierFromFinalState(t *testing.T) {
	b := numeric.Float64{}
	rxns, err := kinetics.ParseEquations([]string{"A_s -> B_s"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "A_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -1.0},
		{Name: "B_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -0.4},
	}, rxns)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	sys, err := NewSystem(m, b, nil, nil)
	if err != nil {
		t.Fatalf("system: %v", err)
	}
	gf, gr, err := sys.ReactionEnergies(0)
	if err != nil {
		t.Fatalf("ReactionEnergies: %v", err)
	}
	// Uphill step without an explicit barrier: the top is the final state.
	if math.Abs(gf.Float64()-0.6) > 1e-12 {
		t.Errorf("forward barrier = %g, want 0.6", gf.Float64())
	}
	if gr.Float64() != 0 {
		t.Errorf("reverse barrier = %g, want 0", gr.Float64())
	}
}

func TestExplicitTransitionStateBarriers(t *testing.T) {
	b := numeric.Float64{}
	rxns, err := kinetics.ParseEquations([]string{
		"CO_s + O_s <-> CO-O_s + *_s -> CO2_g + 2*_s",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "CO2_g", Kind: kinetics.Gas, Pressure: 0, FormationEnergy: -2.5},
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "CO_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -1.6},
		{Name: "O_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -1.1},
		{Name: "CO-O_s", Kind: kinetics.TransitionState, Site: "s", FormationEnergy: -2.2},
	}, rxns)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	sys, err := NewSystem(m, b, nil, nil)
	if err != nil {
		t.Fatalf("system: %v", err)
	}

	gf, gr, err := sys.ReactionEnergies(0)
	if err != nil {
		t.Fatalf("ReactionEnergies: %v", err)
	}
	// The explicit barrier sits at -2.2 eV over IS -2.7 and FS -2.5.
	if got := gf.Float64(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("forward barrier = %g, want 0.5", got)
	}
	if got := gr.Float64(); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("reverse barrier = %g, want 0.3", got)
	}
	// Whatever the barrier top, gaf - gar is the reaction free energy.
	dG := gf.Sub(gr).Float64()
	if math.Abs(dG-0.2) > 1e-12 {
		t.Errorf("gaf - gar = %g, want G(FS) - G(IS) = 0.2", dG)
	}

	kf, kr, err := sys.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}
	kbt := m.KB * m.Temperature
	wantK := math.Exp(-dG / kbt)
	if got := kf[0].Div(kr[0]).Float64(); math.Abs(got-wantK)/wantK > 1e-9 {
		t.Errorf("kf/kr = %g, want exp(-dG/kBT) = %g", got, wantK)
	}
}

func TestRatesAndNetRates(t *testing.T) {
	b := numeric.Float64{}
	sink := &archive.Memory{}
	sys := adsorptionSystem(t, b, sink)

	cvgs := numeric.FromFloat64s(b, []float64{0.25})
	rf, rr, err := sys.Rates(cvgs)
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}

	kf, kr, err := sys.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}
	// rf = kf * p(CO) * theta(*): 1.0 * 0.75 free sites.
	wantRf := kf[0].Float64() * 1.0 * 0.75
	if got := rf[0].Float64(); math.Abs(got-wantRf)/wantRf > 1e-12 {
		t.Errorf("rf = %g, want %g", got, wantRf)
	}
	wantRr := kr[0].Float64() * 0.25
	if got := rr[0].Float64(); math.Abs(got-wantRr)/wantRr > 1e-12 {
		t.Errorf("rr = %g, want %g", got, wantRr)
	}

	net, err := sys.NetRates(rf, rr)
	if err != nil {
		t.Fatalf("NetRates: %v", err)
	}
	if got := net[0].Float64(); math.Abs(got-(wantRf-wantRr)) > 1e-3 {
		t.Errorf("net = %g, want %g", got, wantRf-wantRr)
	}

	if got := sink.Labeled("rates"); len(got) != 1 {
		t.Errorf("archived %d rates entries, want 1", len(got))
	}
	if got := sink.Labeled("net_rates"); len(got) != 1 {
		t.Errorf("archived %d net_rates entries, want 1", len(got))
	}
}

func TestNetRatesLengthMismatch(t *testing.T) {
	b := numeric.Float64{}
	sys := adsorptionSystem(t, b, nil)
	_, err := sys.NetRates(numeric.NewVector(b, 2), numeric.NewVector(b, 1))
	var ire *kinetics.InconsistentRateCountError
	if !errors.As(err, &ire) {
		t.Fatalf("got %v, want InconsistentRateCountError", err)
	}
}

func TestWithFreeEnergiesIsolation(t *testing.T) {
	b := numeric.Float64{}
	sys := adsorptionSystem(t, b, nil)

	names := []string{"CO_s"}
	orig, err := sys.FreeEnergies(names)
	if err != nil {
		t.Fatalf("FreeEnergies: %v", err)
	}

	perturbed, err := sys.WithFreeEnergies(names, numeric.FromFloat64s(b, []float64{-1.0}))
	if err != nil {
		t.Fatalf("WithFreeEnergies: %v", err)
	}

	after, err := sys.FreeEnergies(names)
	if err != nil {
		t.Fatalf("FreeEnergies: %v", err)
	}
	if !orig.Equal(after) {
		t.Error("perturbed copy mutated the original energy state")
	}

	got, err := perturbed.FreeEnergies(names)
	if err != nil {
		t.Fatalf("FreeEnergies: %v", err)
	}
	if got[0].Float64() != -1.0 {
		t.Errorf("copy energy = %g, want -1.0", got[0].Float64())
	}

	// Rate constants must differ: the copy has a shallower well.
	_, krOrig, err := sys.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}
	_, krPert, err := perturbed.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}
	if krOrig[0].Cmp(krPert[0]) == 0 {
		t.Error("perturbed energies must change the desorption constant")
	}
}

func TestSetFreeEnergiesUnknownSpecies(t *testing.T) {
	b := numeric.Float64{}
	sys := adsorptionSystem(t, b, nil)
	err := sys.SetFreeEnergies([]string{"H_s"}, numeric.FromFloat64s(b, []float64{0}))
	var mee *kinetics.MissingEnergyError
	if !errors.As(err, &mee) {
		t.Fatalf("got %v, want MissingEnergyError", err)
	}
}

func TestApplyCorrectionInvalidatesCache(t *testing.T) {
	b := numeric.Float64{}
	sys := adsorptionSystem(t, b, nil)

	kfBefore, _, err := sys.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}
	before := kfBefore[0].Float64()

	// A gas-phase correction shifts the initial state and with it the
	// adsorption barrierlessness.
	sys.ApplyCorrection(map[string]float64{"CO_g": -2.0})
	kfAfter, _, err := sys.RateConstants()
	if err != nil {
		t.Fatalf("RateConstants: %v", err)
	}
	if kfAfter[0].Float64() == before {
		t.Error("correction did not take effect; cache was not invalidated")
	}
}

func TestBoltzmannCoverages(t *testing.T) {
	b := numeric.Float64{}
	rxns, err := kinetics.ParseEquations([]string{"A_s -> B_s"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "A_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -0.6},
		{Name: "B_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -0.4},
	}, rxns)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	sys, err := NewSystem(m, b, nil, nil)
	if err != nil {
		t.Fatalf("system: %v", err)
	}

	guess, err := sys.BoltzmannCoverages()
	if err != nil {
		t.Fatalf("BoltzmannCoverages: %v", err)
	}
	sum := guess[0].Float64() + guess[1].Float64()
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("coverages sum to %g, want 1", sum)
	}
	if guess[0].Float64() <= guess[1].Float64() {
		t.Error("the deeper well must get the larger initial coverage")
	}
}

func TestTransitionStateInEndState(t *testing.T) {
	rxns, err := kinetics.ParseEquations([]string{"TS_s -> A_s"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "A_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -0.5},
		{Name: "TS_s", Kind: kinetics.TransitionState, Site: "s", FormationEnergy: 0.5},
	}, rxns)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	_, err = NewSystem(m, numeric.Float64{}, nil, nil)
	var mde *kinetics.MissingDataError
	if !errors.As(err, &mde) {
		t.Fatalf("got %v, want MissingDataError for a concentration-less species", err)
	}
}
