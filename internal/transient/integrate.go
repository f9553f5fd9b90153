// Package transient integrates the coverage ODE dtheta/dt = F(theta) in
// native float64. It exists for relaxation studies and for generating
// initial guesses; steady states themselves come from the Newton solver.
package transient

import (
	"context"

	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/rates"
	"github.com/mvellank/surfkin/internal/steady"
)

// Deriv evaluates the coverage time derivative.
type Deriv func(theta []float64) ([]float64, error)

// Integrator advances the coverage state by one time step.
type Integrator interface {
	Name() string
	Step(f Deriv, x []float64, dt float64) ([]float64, error)
}

type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(f Deriv, x []float64, dt float64) ([]float64, error) {
	dx, err := f(x)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}

type RK4 struct {
	scratch []float64
}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.scratch = make([]float64, n)
	}
}

func (r *RK4) Step(f Deriv, x []float64, dt float64) ([]float64, error) {
	n := len(x)
	r.ensureScratch(n)

	k1, err := f(x)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := f(r.scratch)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := f(r.scratch)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := f(r.scratch)
	if err != nil {
		return nil, err
	}

	result := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}

// New constructs an integrator by name.
func New(name string) (Integrator, bool) {
	switch name {
	case "euler":
		return NewEuler(), true
	case "rk4", "":
		return NewRK4(), true
	default:
		return nil, false
	}
}

// FromSystem wraps a rate system's coverage balances as a float64
// derivative. The evaluation itself runs in the system's own backend.
func FromSystem(sys *rates.System) Deriv {
	bal := steady.NewBalance(sys)
	b := sys.Backend()
	return func(theta []float64) ([]float64, error) {
		f, err := bal.Eval(numeric.FromFloat64s(b, theta))
		if err != nil {
			return nil, err
		}
		return f.Float64s(), nil
	}
}

// Options control a relaxation run. Record thins the returned history to
// every Record-th step (0 keeps all).
type Options struct {
	Dt     float64
	Steps  int
	Record int
}

// Integrate relaxes the coverages from theta0. project, if non-nil, pulls
// each step back into the feasible region. The returned history includes
// the initial state.
func Integrate(ctx context.Context, integ Integrator, f Deriv, theta0 []float64, project func([]float64) []float64, opts Options) ([][]float64, error) {
	record := opts.Record
	if record <= 0 {
		record = 1
	}

	x := append([]float64(nil), theta0...)
	history := [][]float64{append([]float64(nil), x...)}
	for step := 1; step <= opts.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		next, err := integ.Step(f, x, opts.Dt)
		if err != nil {
			return history, err
		}
		if project != nil {
			next = project(next)
		}
		x = next
		if step%record == 0 {
			history = append(history, append([]float64(nil), x...))
		}
	}
	return history, nil
}

// Project adapts a backend coverage constraint to float64 states.
func Project(constrain steady.Constraint, b numeric.Backend) func([]float64) []float64 {
	return func(theta []float64) []float64 {
		return constrain(numeric.FromFloat64s(b, theta)).Float64s()
	}
}
