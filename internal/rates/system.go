// Package rates turns an elementary-reaction network plus per-species free
// energies into rate constants and evaluable rate expressions.
package rates

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mvellank/surfkin/internal/archive"
	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
)

// System binds a model to a numeric backend and an energy state. Rate
// constants are cached and explicitly invalidated whenever any free energy
// changes; they are never reused across energy updates.
type System struct {
	model    *kinetics.Model
	b        numeric.Backend
	log      *logrus.Entry
	sink     archive.Sink
	energies *EnergyState

	pressures numeric.Vector
	kB, h, T  numeric.Scalar

	siteIndex   map[string]int
	siteTotals  numeric.Vector
	siteMembers [][]int

	fwd, rev []Expr

	// cached until the next energy update
	kf, kr   numeric.Vector
	gaf, gar numeric.Vector
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// NewSystem builds the rate system. sink and log may be nil.
func NewSystem(m *kinetics.Model, b numeric.Backend, sink archive.Sink, log *logrus.Entry) (*System, error) {
	if sink == nil {
		sink = archive.Noop{}
	}
	if log == nil {
		log = discardLogger()
	}
	s := &System{
		model:     m,
		b:         b,
		log:       log,
		sink:      sink,
		energies:  NewEnergyState(m, b),
		kB:        b.Float(m.KB),
		h:         b.Float(m.H),
		T:         b.Float(m.Temperature),
		siteIndex: make(map[string]int, len(m.SiteNames)),
	}
	for i, site := range m.SiteNames {
		s.siteIndex[site] = i
		s.siteTotals = append(s.siteTotals, b.Float(m.SiteTotal(site)))
		s.siteMembers = append(s.siteMembers, m.SiteAdsorbates(site))
	}
	for _, gas := range m.GasNames {
		s.pressures = append(s.pressures, b.Float(m.Species[gas].Pressure))
	}
	for i := range m.Reactions {
		rxn := &m.Reactions[i]
		fe, err := s.buildExpr(i, true, rxn.Reactants())
		if err != nil {
			return nil, err
		}
		re, err := s.buildExpr(i, false, rxn.Products())
		if err != nil {
			return nil, err
		}
		s.fwd = append(s.fwd, fe)
		s.rev = append(s.rev, re)
	}
	return s, nil
}

func (s *System) Model() *kinetics.Model   { return s.model }
func (s *System) Sink() archive.Sink       { return s.sink }
func (s *System) Backend() numeric.Backend { return s.b }
func (s *System) Energies() *EnergyState   { return s.energies }
func (s *System) Pressures() numeric.Vector { return s.pressures }

// KBT returns kB*T in the active precision.
func (s *System) KBT() numeric.Scalar { return s.kB.Mul(s.T) }

// Expressions exposes the forward and reverse rate-expression trees, in
// reaction order. Consumed by the explain formatter.
func (s *System) Expressions() (fwd, rev []Expr) { return s.fwd, s.rev }

// Invalidate drops cached rate constants. Called on every energy update.
func (s *System) Invalidate() {
	s.kf, s.kr, s.gaf, s.gar = nil, nil, nil, nil
}

// SetFreeEnergies overwrites the energies of the named species with gs and
// invalidates the rate constants. Order must match names.
func (s *System) SetFreeEnergies(names []string, gs numeric.Vector) error {
	for i, name := range names {
		if _, ok := s.energies.Get(name); !ok {
			return &kinetics.MissingEnergyError{Species: name}
		}
		s.energies.Set(name, gs[i])
	}
	s.Invalidate()
	return nil
}

// WithFreeEnergies returns an isolated copy of the system with the named
// energies replaced. The receiver is untouched; this is the copy-on-perturb
// discipline used by finite-difference sweeps.
func (s *System) WithFreeEnergies(names []string, gs numeric.Vector) (*System, error) {
	c := *s
	c.energies = s.energies.Clone()
	c.Invalidate()
	if err := c.SetFreeEnergies(names, gs); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyCorrection shifts energies additively (thermochemical corrections)
// and invalidates the rate constants.
func (s *System) ApplyCorrection(corr map[string]float64) {
	s.energies.AddCorrection(corr)
	s.Invalidate()
}

// FreeEnergies returns the current energies of the named species.
func (s *System) FreeEnergies(names []string) (numeric.Vector, error) {
	gs := make(numeric.Vector, len(names))
	for i, name := range names {
		v, ok := s.energies.Get(name)
		if !ok {
			return nil, &kinetics.MissingEnergyError{Species: name}
		}
		gs[i] = v
	}
	return gs, nil
}

// stateEnergy sums coefficient*energy over one reaction state.
func (s *System) stateEnergy(rxn *kinetics.Reaction, state kinetics.RxnState) (numeric.Scalar, error) {
	sum := s.b.Float(0)
	for _, term := range state {
		e, ok := s.energies.Get(term.Species)
		if !ok {
			return nil, &kinetics.MissingEnergyError{Species: term.Species, Equation: rxn.Equation}
		}
		sum = sum.Add(e.Mul(s.b.Float(float64(term.Coefficient))))
	}
	return sum, nil
}

// ReactionEnergies returns the forward and reverse free-energy barriers of
// reaction i. Without an explicit transition state the barrier top is the
// higher of the two end states; on a tie the final state wins.
func (s *System) ReactionEnergies(i int) (gf, gr numeric.Scalar, err error) {
	rxn := &s.model.Reactions[i]
	gIS, err := s.stateEnergy(rxn, rxn.Reactants())
	if err != nil {
		return nil, nil, err
	}
	gFS, err := s.stateEnergy(rxn, rxn.Products())
	if err != nil {
		return nil, nil, err
	}
	var gTS numeric.Scalar
	if ts, ok := rxn.Transition(); ok {
		gTS, err = s.stateEnergy(rxn, ts)
		if err != nil {
			return nil, nil, err
		}
	} else if gIS.Cmp(gFS) > 0 {
		gTS = gIS
	} else {
		gTS = gFS
	}
	return gTS.Sub(gIS), gTS.Sub(gFS), nil
}

// RateConstants computes (or returns cached) Eyring rate constants
// k = (kB*T/h) * exp(-dG/(kB*T)) for every reaction. A negative barrier
// signals an inconsistent energy landscape; it is used as supplied and
// logged, never clipped.
func (s *System) RateConstants() (kf, kr numeric.Vector, err error) {
	if s.kf != nil {
		return s.kf, s.kr, nil
	}
	prefactor := s.kB.Mul(s.T).Div(s.h)
	kbt := s.KBT()
	zero := s.b.Float(0)

	n := len(s.model.Reactions)
	s.kf = make(numeric.Vector, n)
	s.kr = make(numeric.Vector, n)
	s.gaf = make(numeric.Vector, n)
	s.gar = make(numeric.Vector, n)
	for i := 0; i < n; i++ {
		gf, gr, err := s.ReactionEnergies(i)
		if err != nil {
			s.Invalidate()
			return nil, nil, err
		}
		if gf.Cmp(zero) < 0 || gr.Cmp(zero) < 0 {
			s.log.WithFields(logrus.Fields{
				"reaction":        s.model.Reactions[i].Equation,
				"forward_barrier": gf.Float64(),
				"reverse_barrier": gr.Float64(),
			}).Warn("negative barrier: inconsistent energy landscape")
		}
		s.gaf[i], s.gar[i] = gf, gr
		s.kf[i] = prefactor.Mul(s.b.Exp(gf.Neg().Div(kbt)))
		s.kr[i] = prefactor.Mul(s.b.Exp(gr.Neg().Div(kbt)))
	}
	return s.kf, s.kr, nil
}

// Barriers returns the forward and reverse free-energy barriers, reaction
// order, computing rate constants first if needed.
func (s *System) Barriers() (gaf, gar numeric.Vector, err error) {
	if _, _, err := s.RateConstants(); err != nil {
		return nil, nil, err
	}
	return s.gaf, s.gar, nil
}

// Rates evaluates forward and reverse rates at the given coverages.
func (s *System) Rates(cvgs numeric.Vector) (rf, rr numeric.Vector, err error) {
	kf, kr, err := s.RateConstants()
	if err != nil {
		return nil, nil, err
	}
	rf = make(numeric.Vector, len(s.fwd))
	rr = make(numeric.Vector, len(s.rev))
	for i := range s.fwd {
		rf[i] = s.Eval(s.fwd[i], kf[i], cvgs)
		rr[i] = s.Eval(s.rev[i], kr[i], cvgs)
	}
	s.sink.Archive("rates", [2][]float64{rf.Float64s(), rr.Float64s()})
	return rf, rr, nil
}

// NetRates returns rf - rr per reaction.
func (s *System) NetRates(rf, rr numeric.Vector) (numeric.Vector, error) {
	if len(rf) != len(rr) {
		return nil, &kinetics.InconsistentRateCountError{Forward: len(rf), Reverse: len(rr)}
	}
	net := make(numeric.Vector, len(rf))
	for i := range rf {
		net[i] = rf[i].Sub(rr[i])
	}
	s.sink.Archive("net_rates", net.Float64s())
	return net, nil
}

// Reversibilities returns rr/rf per reaction. A value of 1 means the step
// is equilibrated.
func (s *System) Reversibilities(rf, rr numeric.Vector) ([]float64, error) {
	if len(rf) != len(rr) {
		return nil, &kinetics.InconsistentRateCountError{Forward: len(rf), Reverse: len(rr)}
	}
	rev := make([]float64, len(rf))
	for i := range rf {
		rev[i] = rr[i].Div(rf[i]).Float64()
	}
	s.sink.Archive("reversibilities", rev)
	return rev, nil
}

// BoltzmannCoverages estimates initial coverages from adsorption energies:
// theta_a = exp(-G_a/kBT) / sum over adsorbates.
func (s *System) BoltzmannCoverages() (numeric.Vector, error) {
	kbt := s.KBT()
	weights := make(numeric.Vector, len(s.model.AdsorbateNames))
	total := s.b.Float(0)
	for i, name := range s.model.AdsorbateNames {
		g, ok := s.energies.Get(name)
		if !ok {
			return nil, &kinetics.MissingEnergyError{Species: name}
		}
		weights[i] = s.b.Exp(g.Neg().Div(kbt))
		total = total.Add(weights[i])
	}
	for i := range weights {
		weights[i] = weights[i].Div(total)
	}
	return weights, nil
}
