// Package steady assembles the coverage-balance equations of a kinetic
// model and solves them with a constrained Newton iteration.
package steady

import (
	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/rates"
)

// Balance is the steady-state equation system: one net-rate balance per
// adsorbate, F(theta) = dtheta/dt. Roots of F are steady states.
type Balance struct {
	sys   *rates.System
	coeff [][]int // [adsorbate][reaction] net production
}

func NewBalance(sys *rates.System) *Balance {
	m := sys.Model()
	coeff := make([][]int, len(m.AdsorbateNames))
	for a := range coeff {
		coeff[a] = make([]int, len(m.Reactions))
	}
	for i := range m.Reactions {
		rxn := &m.Reactions[i]
		for _, term := range rxn.Reactants() {
			if a, ok := m.AdsorbateIndex(term.Species); ok {
				coeff[a][i] -= term.Coefficient
			}
		}
		for _, term := range rxn.Products() {
			if a, ok := m.AdsorbateIndex(term.Species); ok {
				coeff[a][i] += term.Coefficient
			}
		}
	}
	return &Balance{sys: sys, coeff: coeff}
}

// Dim is the number of balance equations (adsorbate degrees of freedom).
func (b *Balance) Dim() int { return len(b.coeff) }

// Eval computes F(theta). It works through the rate expressions directly,
// without archiving, since the Newton line search calls it many times per
// step.
func (b *Balance) Eval(cvgs numeric.Vector) (numeric.Vector, error) {
	kf, kr, err := b.sys.RateConstants()
	if err != nil {
		return nil, err
	}
	fwd, rev := b.sys.Expressions()

	backend := b.sys.Backend()
	net := make(numeric.Vector, len(fwd))
	for i := range fwd {
		net[i] = b.sys.Eval(fwd[i], kf[i], cvgs).Sub(b.sys.Eval(rev[i], kr[i], cvgs))
	}

	out := make(numeric.Vector, len(b.coeff))
	for a := range b.coeff {
		sum := backend.Float(0)
		for i, c := range b.coeff[a] {
			if c == 0 {
				continue
			}
			sum = sum.Add(net[i].Mul(backend.Float(float64(c))))
		}
		out[a] = sum
	}
	return out, nil
}

// CoverageConstraint projects a coverage vector into the feasible region:
// entries clipped non-negative, then each site's coverages rescaled when
// their sum exceeds the site total.
func CoverageConstraint(m *kinetics.Model, b numeric.Backend) Constraint {
	return func(x numeric.Vector) numeric.Vector {
		zero := b.Float(0)
		out := x.Clone()
		for i := range out {
			if out[i].Cmp(zero) < 0 {
				out[i] = zero
			}
		}
		for _, site := range m.SiteNames {
			members := m.SiteAdsorbates(site)
			sum := b.Float(0)
			for _, a := range members {
				sum = sum.Add(out[a])
			}
			total := b.Float(m.SiteTotal(site))
			if sum.Cmp(total) > 0 {
				scale := total.Div(sum)
				for _, a := range members {
					out[a] = out[a].Mul(scale)
				}
			}
		}
		return out
	}
}
