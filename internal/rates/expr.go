package rates

import (
	"strings"

	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
)

// FactorKind says which variable array a factor draws from.
type FactorKind int

const (
	// FactorPressure indexes the gas partial-pressure vector.
	FactorPressure FactorKind = iota
	// FactorCoverage indexes the adsorbate coverage vector.
	FactorCoverage
	// FactorFreeSite is the free-site occupancy of a site: its total minus
	// the coverages of the adsorbates on it.
	FactorFreeSite
)

// Factor is one variable^power term of a rate expression.
type Factor struct {
	Kind  FactorKind
	Index int
	Power int
}

// Expr is a rate expression: rate constant kf[i] or kr[i] times a product
// of factors. Expressions are plain data evaluated directly against the
// coverage and pressure vectors; nothing is generated or interpreted at
// run time.
type Expr struct {
	Reaction int
	Forward  bool
	Factors  []Factor
}

// buildExpr turns one reaction state (reactants for the forward direction,
// products for the reverse) into an expression.
func (s *System) buildExpr(rxnIdx int, forward bool, state kinetics.RxnState) (Expr, error) {
	e := Expr{Reaction: rxnIdx, Forward: forward}
	for _, term := range state {
		sp, err := s.model.Resolve(term.Species)
		if err != nil {
			return Expr{}, err
		}
		f := Factor{Power: term.Coefficient}
		switch {
		case strings.HasPrefix(term.Species, kinetics.FreeSiteMarker):
			f.Kind = FactorFreeSite
			f.Index = s.siteIndex[sp.Name]
		case sp.Kind == kinetics.Gas:
			f.Kind = FactorPressure
			f.Index, _ = s.model.GasIndex(sp.Name)
		case sp.Kind == kinetics.Adsorbate:
			f.Kind = FactorCoverage
			f.Index, _ = s.model.AdsorbateIndex(sp.Name)
		default:
			// Transition-state species carry energy but no concentration;
			// they never appear in initial or final states of a valid
			// network, so reject them here.
			return Expr{}, &kinetics.MissingDataError{Species: term.Species, Field: "concentration"}
		}
		e.Factors = append(e.Factors, f)
	}
	return e, nil
}

// Eval computes the rate for the given coverages. k is the expression's
// rate constant.
func (s *System) Eval(e Expr, k numeric.Scalar, cvgs numeric.Vector) numeric.Scalar {
	r := k
	for _, f := range e.Factors {
		var v numeric.Scalar
		switch f.Kind {
		case FactorPressure:
			v = s.pressures[f.Index]
		case FactorCoverage:
			v = cvgs[f.Index]
		case FactorFreeSite:
			v = s.FreeSiteCoverage(f.Index, cvgs)
		}
		r = r.Mul(numeric.PowInt(s.b, v, f.Power))
	}
	return r
}

// FreeSiteCoverage is the unoccupied fraction of the site at siteIdx:
// site total minus the summed coverages of its adsorbates.
func (s *System) FreeSiteCoverage(siteIdx int, cvgs numeric.Vector) numeric.Scalar {
	free := s.siteTotals[siteIdx]
	for _, ads := range s.siteMembers[siteIdx] {
		free = free.Sub(cvgs[ads])
	}
	return free
}
