// Package tof computes turnover frequencies and degrees of thermodynamic
// rate control on top of the steady-state solver.
package tof

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/rates"
	"github.com/mvellank/surfkin/internal/steady"
)

// PerturbationSize is the relative free-energy step of the rate-control
// finite differences, in eV per eV.
const PerturbationSize = 0.01

// Engine evaluates gas-phase turnover frequencies at steady state. Every
// evaluation under perturbed energies runs on an isolated copy of the rate
// system, so the engine's own system is never mutated.
type Engine struct {
	sys  *rates.System
	opts steady.Options
	log  *logrus.Entry
}

func NewEngine(sys *rates.System, opts steady.Options, log *logrus.Entry) *Engine {
	return &Engine{sys: sys, opts: opts, log: log}
}

// TOF solves for steady-state coverages and projects the net reaction rates
// onto the gas species: tof_j = sum_i net_i * |gas_matrix[i][j]|. The
// absolute stoichiometry makes consumption and production both count
// positive, matching the convention of rate-control analysis.
func (e *Engine) TOF(ctx context.Context) (numeric.Vector, numeric.Vector, error) {
	return e.tofOn(ctx, e.sys)
}

// TOFWithEnergies evaluates the turnover frequencies with the intermediate
// free energies replaced by gs, ordered as Model.IntermediateNames. The
// engine's system is untouched.
func (e *Engine) TOFWithEnergies(ctx context.Context, gs numeric.Vector) (numeric.Vector, error) {
	sys, err := e.sys.WithFreeEnergies(e.sys.Model().IntermediateNames(), gs)
	if err != nil {
		return nil, err
	}
	tofs, _, err := e.tofOn(ctx, sys)
	return tofs, err
}

func (e *Engine) tofOn(ctx context.Context, sys *rates.System) (tofs, cvgs numeric.Vector, err error) {
	solver := steady.NewSolver(sys, e.opts, e.log)
	cvgs, _, err = solver.SteadyState(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	rf, rr, err := sys.Rates(cvgs)
	if err != nil {
		return nil, nil, err
	}
	net, err := sys.NetRates(rf, rr)
	if err != nil {
		return nil, nil, err
	}

	tofs = ProjectNet(sys, net)
	sys.Sink().Archive("tofs", tofs.Float64s())
	return tofs, cvgs, nil
}

// ProjectNet folds net reaction rates onto the gas species through the
// absolute stoichiometry matrix.
func ProjectNet(sys *rates.System, net numeric.Vector) numeric.Vector {
	b := sys.Backend()
	m := sys.Model()
	gasMat := m.GasMatrix()
	tofs := numeric.NewVector(b, len(m.GasNames))
	for i := range net {
		for j := range tofs {
			c := gasMat[i][j]
			if c == 0 {
				continue
			}
			if c < 0 {
				c = -c
			}
			tofs[j] = tofs[j].Add(net[i].Mul(b.Float(c)))
		}
	}
	return tofs
}

// RateControl computes the degree of thermodynamic rate control: the matrix
// X[i][j] = (-kB*T / tof_i) * d(tof_i)/dG_j over the intermediate species
// (adsorbates then transition states). Adsorbate energies are perturbed
// forward, transition-state energies backward, so the differences probe the
// physically accessible side of each barrier.
func (e *Engine) RateControl(ctx context.Context) (numeric.Matrix, error) {
	b := e.sys.Backend()
	m := e.sys.Model()
	names := m.IntermediateNames()

	g0, err := e.sys.FreeEnergies(names)
	if err != nil {
		return nil, err
	}
	base, _, err := e.TOF(ctx)
	if err != nil {
		return nil, err
	}

	adsorbates := len(m.AdsorbateNames)
	classify := func(j int) steady.Direction {
		if j < adsorbates {
			return steady.Forward
		}
		return steady.Backward
	}
	jac, err := steady.FiniteJacobian(b, func(gs numeric.Vector) (numeric.Vector, error) {
		return e.TOFWithEnergies(ctx, gs)
	}, g0, PerturbationSize, classify)
	if err != nil {
		return nil, err
	}

	kbt := e.sys.KBT()
	for i := range jac {
		scale := kbt.Neg().Div(base[i])
		for j := range jac[i] {
			jac[i][j] = jac[i][j].Mul(scale)
		}
	}
	e.sys.Sink().Archive("rate_control", matrixFloats(jac))
	return jac, nil
}

func matrixFloats(m numeric.Matrix) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = numeric.Vector(row).Float64s()
	}
	return out
}
