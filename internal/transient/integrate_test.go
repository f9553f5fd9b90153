package transient

import (
	"context"
	"math"
	"testing"

	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/rates"
	"github.com/mvellank/surfkin/internal/steady"
)

// decay is dtheta/dt = -theta with the exact solution theta0*exp(-t).
func decay(theta []float64) ([]float64, error) {
	return []float64{-theta[0]}, nil
}

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()
	x := []float64{1.0}
	dt := 0.01
	steps := 100

	var err error
	for i := 0; i < steps; i++ {
		x, err = integ.Step(decay, x, dt)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := math.Exp(-1.0)
	if math.Abs(x[0]-want) > 1e-8 {
		t.Errorf("rk4 result %.10f, expected %.10f", x[0], want)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	integ := NewEuler()
	x := []float64{1.0}
	dt := 0.001
	steps := 1000

	var err error
	for i := 0; i < steps; i++ {
		x, err = integ.Step(decay, x, dt)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := math.Exp(-1.0)
	if math.Abs(x[0]-want) > 1e-3 {
		t.Errorf("euler result %.6f, expected %.6f", x[0], want)
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"euler", "rk4", ""} {
		if _, ok := New(name); !ok {
			t.Errorf("New(%q) not found", name)
		}
	}
	if _, ok := New("verlet"); ok {
		t.Error("New(verlet) should not exist for first-order kinetics")
	}
}

func TestIntegrateRecordsHistory(t *testing.T) {
	history, err := Integrate(context.Background(), NewRK4(), decay, []float64{1}, nil, Options{
		Dt: 0.01, Steps: 100, Record: 10,
	})
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if len(history) != 11 {
		t.Errorf("history has %d rows, want 11 (initial + every 10th)", len(history))
	}
	if history[0][0] != 1 {
		t.Errorf("history must start at the initial state, got %g", history[0][0])
	}
}

func TestIntegrateContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Integrate(ctx, NewEuler(), decay, []float64{1}, nil, Options{Dt: 0.01, Steps: 10})
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestCoverageRelaxation(t *testing.T) {
	rxns, err := kinetics.ParseEquations([]string{"CO_g + *_s -> CO_s"})
	if err != nil {
		t.Fatalf("parse equations: %v", err)
	}
	m, err := kinetics.NewModel(500, []*kinetics.Species{
		{Name: "CO_g", Kind: kinetics.Gas, Pressure: 1.0, FormationEnergy: 0},
		{Name: "s", Kind: kinetics.Site, Total: 1.0, FormationEnergy: 0},
		{Name: "CO_s", Kind: kinetics.Adsorbate, Site: "s", FormationEnergy: -1.5},
	}, rxns)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	b := numeric.Float64{}
	sys, err := rates.NewSystem(m, b, nil, nil)
	if err != nil {
		t.Fatalf("new system: %v", err)
	}

	// Adsorption rates sit on the kB*T/h scale, so relaxation needs
	// femtosecond-scale steps.
	project := Project(steady.CoverageConstraint(m, b), b)
	history, err := Integrate(context.Background(), NewRK4(), FromSystem(sys), []float64{0}, project, Options{
		Dt: 1e-15, Steps: 200,
	})
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}

	last := 0.0
	for i, row := range history {
		theta := row[0]
		if theta < 0 || theta > 1 {
			t.Fatalf("step %d: coverage %g outside [0,1]", i, theta)
		}
		if theta < last {
			t.Fatalf("step %d: coverage decreased during uphill-free adsorption", i)
		}
		last = theta
	}
	if last <= 0.5 {
		t.Errorf("final coverage %g, expected the surface to fill toward saturation", last)
	}
}
