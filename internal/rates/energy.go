package rates

import (
	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
)

// EnergyState holds the free energy of every species, keyed by species name
// (sites carry the free-site marker, e.g. "*_s"). It is a single-writer
// resource: perturbation paths must work on a Clone, never on the shared
// instance.
type EnergyState struct {
	b      numeric.Backend
	values map[string]numeric.Scalar
}

// NewEnergyState loads formation energies from the species definitions.
func NewEnergyState(m *kinetics.Model, b numeric.Backend) *EnergyState {
	e := &EnergyState{
		b:      b,
		values: make(map[string]numeric.Scalar, len(m.Species)),
	}
	for _, sp := range m.Species {
		e.values[sp.EnergyKey()] = b.Float(sp.FormationEnergy)
	}
	return e
}

func (e *EnergyState) Clone() *EnergyState {
	values := make(map[string]numeric.Scalar, len(e.values))
	for k, v := range e.values {
		values[k] = v
	}
	return &EnergyState{b: e.b, values: values}
}

func (e *EnergyState) Get(key string) (numeric.Scalar, bool) {
	v, ok := e.values[key]
	return v, ok
}

func (e *EnergyState) Set(key string, v numeric.Scalar) {
	e.values[key] = v
}

// AddCorrection shifts energies additively, e.g. by thermochemical gas
// corrections. Unknown keys are ignored so correction tables may cover more
// species than the model declares.
func (e *EnergyState) AddCorrection(corr map[string]float64) {
	for key, delta := range corr {
		if v, ok := e.values[key]; ok {
			e.values[key] = v.Add(e.b.Float(delta))
		}
	}
}
