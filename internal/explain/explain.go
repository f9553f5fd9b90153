// Package explain renders human-readable formulas for a rate system:
// rate-constant expressions, rate expressions and energy barriers. It is a
// presentation layer only; nothing here feeds back into the solver.
package explain

import (
	"fmt"
	"strings"

	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/rates"
)

type Formatter struct {
	sys *rates.System
}

func New(sys *rates.System) *Formatter {
	return &Formatter{sys: sys}
}

// factorString renders one variable^power term, e.g. "p['O2_g']" or
// "theta['*_s']**2".
func (f *Formatter) factorString(fc rates.Factor) string {
	m := f.sys.Model()
	var v string
	switch fc.Kind {
	case rates.FactorPressure:
		v = fmt.Sprintf("p['%s']", m.GasNames[fc.Index])
	case rates.FactorCoverage:
		v = fmt.Sprintf("theta['%s']", m.AdsorbateNames[fc.Index])
	case rates.FactorFreeSite:
		v = fmt.Sprintf("theta['%s%s']", kinetics.FreeSiteMarker, m.SiteNames[fc.Index])
	}
	if fc.Power > 1 {
		v = fmt.Sprintf("%s**%d", v, fc.Power)
	}
	return v
}

// RateExpression renders the forward or reverse rate formula of reaction i,
// e.g. "rf[1] = kf[1]*p['O2_g']*theta['*_s']**2".
func (f *Formatter) RateExpression(i int, forward bool) string {
	fwd, rev := f.sys.Expressions()
	e := rev[i]
	lhs, k := "rr", "kr"
	if forward {
		e = fwd[i]
		lhs, k = "rf", "kf"
	}
	parts := []string{fmt.Sprintf("%s[%d]", k, i)}
	for _, fc := range e.Factors {
		parts = append(parts, f.factorString(fc))
	}
	return fmt.Sprintf("%s[%d] = %s", lhs, i, strings.Join(parts, "*"))
}

// RateConstant renders the Eyring expression of reaction i with its barrier
// and value filled in.
func (f *Formatter) RateConstant(i int, forward bool) (string, error) {
	kf, kr, err := f.sys.RateConstants()
	if err != nil {
		return "", err
	}
	gaf, gar, err := f.sys.Barriers()
	if err != nil {
		return "", err
	}
	k, g, name := kf[i], gaf[i], "kf"
	if !forward {
		k, g, name = kr[i], gar[i], "kr"
	}
	return fmt.Sprintf("%s[%d] = (kB*T/h)*exp(-(%.6g)/(kB*T)) = %.6e s^-1",
		name, i, g.Float64(), k.Float64()), nil
}

// EquilibriumConstant renders K = kf/kr with the reaction free energy.
func (f *Formatter) EquilibriumConstant(i int) (string, error) {
	kf, kr, err := f.sys.RateConstants()
	if err != nil {
		return "", err
	}
	gaf, gar, err := f.sys.Barriers()
	if err != nil {
		return "", err
	}
	dG := gaf[i].Sub(gar[i])
	K := kf[i].Div(kr[i])
	return fmt.Sprintf("K[%d] = kf[%d]/kr[%d] = exp(-(%.6g)/(kB*T)) = %.6e",
		i, i, i, dG.Float64(), K.Float64()), nil
}

// Report renders the full formula listing for every reaction.
func (f *Formatter) Report() (string, error) {
	var sb strings.Builder
	m := f.sys.Model()
	for i := range m.Reactions {
		fmt.Fprintf(&sb, "# %s\n", m.Reactions[i].Equation)
		for _, forward := range []bool{true, false} {
			line, err := f.RateConstant(i, forward)
			if err != nil {
				return "", err
			}
			sb.WriteString("  " + line + "\n")
			sb.WriteString("  " + f.RateExpression(i, forward) + "\n")
		}
		line, err := f.EquilibriumConstant(i)
		if err != nil {
			return "", err
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String(), nil
}
