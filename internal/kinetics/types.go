package kinetics

import (
	"fmt"
	"strings"
)

// Physical constants in eV units.
const (
	BoltzmannEV = 8.617332478e-5  // eV/K
	PlanckEV    = 4.135667516e-15 // eV*s
)

// FreeSiteMarker prefixes free-site terms in reaction equations ("*_s")
// and keys site entries in free-energy maps.
const FreeSiteMarker = "*_"

type Kind string

const (
	Gas             Kind = "gas"
	Adsorbate       Kind = "adsorbate"
	Site            Kind = "site"
	TransitionState Kind = "transition_state"
)

// Species is one chemical species of the kinetic model. Which fields are
// meaningful depends on Kind: Pressure for gases, Site for adsorbates and
// transition states, Total for sites.
type Species struct {
	Name            string
	Kind            Kind
	Site            string
	Pressure        float64
	FormationEnergy float64
	Total           float64
	Frequencies     []float64
}

// EnergyKey is the species' key in free-energy maps. Sites are keyed with
// the free-site marker so the "*_s" of a reaction equation and the site
// definition "s" address the same entry.
func (s *Species) EnergyKey() string {
	if s.Kind == Site {
		return FreeSiteMarker + s.Name
	}
	return s.Name
}

// Term is one stoichiometric entry of a reaction state, e.g. 2H_s.
type Term struct {
	Coefficient int
	Species     string
}

func (t Term) String() string {
	if t.Coefficient == 1 {
		return t.Species
	}
	return fmt.Sprintf("%d%s", t.Coefficient, t.Species)
}

// RxnState is one energy state of an elementary reaction: a list of terms.
type RxnState []Term

func (s RxnState) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

// Reaction is an elementary surface reaction with two or three states:
// initial, optional transition, final.
type Reaction struct {
	Equation string
	States   []RxnState
}

func (r *Reaction) Reactants() RxnState { return r.States[0] }
func (r *Reaction) Products() RxnState  { return r.States[len(r.States)-1] }

// Transition returns the explicit transition state, if the reaction has one.
func (r *Reaction) Transition() (RxnState, bool) {
	if len(r.States) == 3 {
		return r.States[1], true
	}
	return nil, false
}

// Model is the immutable context shared by all solver components: species
// definitions, the reaction network, operating temperature and constants.
// The name lists fix the index order used for coverages, rate constants
// and TOFs throughout.
type Model struct {
	Temperature float64
	KB          float64
	H           float64

	Species   map[string]*Species
	Reactions []Reaction

	GasNames             []string
	AdsorbateNames       []string
	SiteNames            []string
	TransitionStateNames []string

	gasIndex       map[string]int
	adsorbateIndex map[string]int
	siteAdsorbates map[string][]int
}

// NewModel assembles and validates a model. Species order is preserved:
// it defines the gas, adsorbate, site and transition-state address orders.
func NewModel(temperature float64, species []*Species, reactions []Reaction) (*Model, error) {
	if temperature <= 0 {
		return nil, fmt.Errorf("kinetics: temperature must be positive, got %g", temperature)
	}
	m := &Model{
		Temperature:    temperature,
		KB:             BoltzmannEV,
		H:              PlanckEV,
		Species:        make(map[string]*Species, len(species)),
		Reactions:      reactions,
		gasIndex:       make(map[string]int),
		adsorbateIndex: make(map[string]int),
		siteAdsorbates: make(map[string][]int),
	}
	for _, sp := range species {
		if _, ok := m.Species[sp.Name]; ok {
			return nil, fmt.Errorf("kinetics: duplicate species %q", sp.Name)
		}
		m.Species[sp.Name] = sp
		switch sp.Kind {
		case Gas:
			m.gasIndex[sp.Name] = len(m.GasNames)
			m.GasNames = append(m.GasNames, sp.Name)
		case Adsorbate:
			m.adsorbateIndex[sp.Name] = len(m.AdsorbateNames)
			m.AdsorbateNames = append(m.AdsorbateNames, sp.Name)
		case Site:
			m.SiteNames = append(m.SiteNames, sp.Name)
		case TransitionState:
			m.TransitionStateNames = append(m.TransitionStateNames, sp.Name)
		default:
			return nil, fmt.Errorf("kinetics: species %q has unknown kind %q", sp.Name, sp.Kind)
		}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	for i, name := range m.AdsorbateNames {
		site := m.Species[name].Site
		m.siteAdsorbates[site] = append(m.siteAdsorbates[site], i)
	}
	return m, nil
}

func (m *Model) validate() error {
	for _, name := range m.AdsorbateNames {
		sp := m.Species[name]
		if sp.Site == "" {
			return &MissingDataError{Species: name, Field: "site"}
		}
		if st, ok := m.Species[sp.Site]; !ok || st.Kind != Site {
			return fmt.Errorf("kinetics: adsorbate %q occupies undeclared site %q", name, sp.Site)
		}
	}
	for _, name := range m.SiteNames {
		if m.Species[name].Total <= 0 {
			return &MissingDataError{Species: name, Field: "total"}
		}
	}
	for i := range m.Reactions {
		rxn := &m.Reactions[i]
		if n := len(rxn.States); n < 2 || n > 3 {
			return fmt.Errorf("kinetics: reaction %q has %d states, want 2 or 3", rxn.Equation, n)
		}
		for _, state := range rxn.States {
			for _, term := range state {
				if _, err := m.Resolve(term.Species); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Resolve maps a term species name to its definition, translating free-site
// terms ("*_s") to the underlying site species.
func (m *Model) Resolve(name string) (*Species, error) {
	lookup := name
	if site, ok := strings.CutPrefix(name, FreeSiteMarker); ok {
		lookup = site
	}
	sp, ok := m.Species[lookup]
	if !ok {
		return nil, &MissingDataError{Species: name, Field: "definition"}
	}
	return sp, nil
}

func (m *Model) GasIndex(name string) (int, bool) {
	i, ok := m.gasIndex[name]
	return i, ok
}

func (m *Model) AdsorbateIndex(name string) (int, bool) {
	i, ok := m.adsorbateIndex[name]
	return i, ok
}

// SiteAdsorbates returns the coverage-vector indices of the adsorbates
// occupying the named site.
func (m *Model) SiteAdsorbates(site string) []int {
	return m.siteAdsorbates[site]
}

func (m *Model) SiteTotal(site string) float64 {
	if sp, ok := m.Species[site]; ok {
		return sp.Total
	}
	return 0
}

// IntermediateNames is the fixed address order of the free-energy vector
// consumed by the TOF engine: adsorbates first, then transition states.
func (m *Model) IntermediateNames() []string {
	names := make([]string, 0, len(m.AdsorbateNames)+len(m.TransitionStateNames))
	names = append(names, m.AdsorbateNames...)
	names = append(names, m.TransitionStateNames...)
	return names
}

// GasMatrix returns the gas stoichiometry matrix, reactions by gases, with
// net production positive.
func (m *Model) GasMatrix() [][]float64 {
	mat := make([][]float64, len(m.Reactions))
	for i := range m.Reactions {
		rxn := &m.Reactions[i]
		row := make([]float64, len(m.GasNames))
		for _, term := range rxn.Reactants() {
			if j, ok := m.gasIndex[term.Species]; ok {
				row[j] -= float64(term.Coefficient)
			}
		}
		for _, term := range rxn.Products() {
			if j, ok := m.gasIndex[term.Species]; ok {
				row[j] += float64(term.Coefficient)
			}
		}
		mat[i] = row
	}
	return mat
}
