package kinetics

import (
	"errors"
	"fmt"
)

// ErrNoReactions indicates a model was built without any elementary reactions.
var ErrNoReactions = errors.New("kinetics: reaction network is empty")

// MissingDataError reports a species whose definition lacks a required field,
// or a reaction term referencing an undeclared species. Fatal: no partial
// computation is attempted.
type MissingDataError struct {
	Species string
	Field   string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("kinetics: species %q missing %s", e.Species, e.Field)
}

// MissingEnergyError reports a reaction referencing a species absent from
// the free-energy mapping.
type MissingEnergyError struct {
	Species  string
	Equation string
}

func (e *MissingEnergyError) Error() string {
	if e.Equation == "" {
		return fmt.Sprintf("kinetics: no free energy for species %q", e.Species)
	}
	return fmt.Sprintf("kinetics: no free energy for species %q in reaction %q", e.Species, e.Equation)
}

// InconsistentRateCountError reports a forward/reverse rate list length
// mismatch.
type InconsistentRateCountError struct {
	Forward int
	Reverse int
}

func (e *InconsistentRateCountError) Error() string {
	return fmt.Sprintf("kinetics: %d forward rates vs %d reverse rates", e.Forward, e.Reverse)
}
