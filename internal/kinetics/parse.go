package kinetics

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTerm parses one stoichiometric term like "CO_g", "2H_s" or "3*_s".
func ParseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Term{}, fmt.Errorf("kinetics: empty species term")
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	coeff := 1
	if i > 0 {
		n, err := strconv.Atoi(s[:i])
		if err != nil || n < 1 {
			return Term{}, fmt.Errorf("kinetics: bad stoichiometry in term %q", s)
		}
		coeff = n
	}
	name := s[i:]
	if name == "" {
		return Term{}, fmt.Errorf("kinetics: term %q has no species name", s)
	}
	return Term{Coefficient: coeff, Species: name}, nil
}

// ParseState parses one reaction state like "CO_g + *_s".
func ParseState(s string) (RxnState, error) {
	parts := strings.Split(s, "+")
	state := make(RxnState, 0, len(parts))
	for _, part := range parts {
		term, err := ParseTerm(part)
		if err != nil {
			return nil, err
		}
		state = append(state, term)
	}
	return state, nil
}

// ParseEquation parses an elementary reaction equation. Two forms are
// accepted:
//
//	CO_g + *_s -> CO_s
//	CO_s + O_s <-> CO-O_s + *_s -> CO2_g + 2*_s
//
// where "<->" introduces an explicit transition state.
func ParseEquation(eq string) (Reaction, error) {
	rxn := Reaction{Equation: strings.Join(strings.Fields(eq), " ")}

	var stateStrs []string
	if left, rest, ok := strings.Cut(eq, "<->"); ok {
		ts, fs, ok := strings.Cut(rest, "->")
		if !ok {
			return Reaction{}, fmt.Errorf("kinetics: equation %q has a transition state but no final state", eq)
		}
		if strings.Contains(fs, "->") || strings.Contains(left, "->") {
			return Reaction{}, fmt.Errorf("kinetics: equation %q has too many states", eq)
		}
		stateStrs = []string{left, ts, fs}
	} else {
		is, fs, ok := strings.Cut(eq, "->")
		if !ok {
			return Reaction{}, fmt.Errorf("kinetics: equation %q has no arrow", eq)
		}
		if strings.Contains(fs, "->") {
			return Reaction{}, fmt.Errorf("kinetics: equation %q has too many states", eq)
		}
		stateStrs = []string{is, fs}
	}

	for _, s := range stateStrs {
		state, err := ParseState(s)
		if err != nil {
			return Reaction{}, fmt.Errorf("%w (in %q)", err, eq)
		}
		rxn.States = append(rxn.States, state)
	}
	return rxn, nil
}

// ParseEquations parses an ordered list of equations into a network.
func ParseEquations(eqs []string) ([]Reaction, error) {
	if len(eqs) == 0 {
		return nil, ErrNoReactions
	}
	rxns := make([]Reaction, 0, len(eqs))
	for _, eq := range eqs {
		rxn, err := ParseEquation(eq)
		if err != nil {
			return nil, err
		}
		rxns = append(rxns, rxn)
	}
	return rxns, nil
}
