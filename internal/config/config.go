// Package config loads kinetic model definitions from YAML and turns them
// into solver-ready values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mvellank/surfkin/internal/kinetics"
	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/steady"
)

const (
	DefaultTemperature   = 500.0
	DefaultBackend       = "float64"
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-10
	DefaultWarmup        = 5
	DefaultJacobianStep  = 1e-10
)

type Config struct {
	Network     string          `yaml:"network"`
	Temperature float64         `yaml:"temperature"`
	Backend     string          `yaml:"backend"`
	Precision   int             `yaml:"precision"`
	Thermo      string          `yaml:"thermo"`
	Solver      SolverConfig    `yaml:"solver"`
	Species     []SpeciesConfig `yaml:"species"`
	Reactions   []string        `yaml:"reactions"`
}

type SolverConfig struct {
	MaxIterations    int     `yaml:"max_iterations"`
	Tolerance        float64 `yaml:"tolerance"`
	WarmupIterations int     `yaml:"warmup_iterations"`
	JacobianStep     float64 `yaml:"jacobian_step"`
}

// SpeciesConfig is one species entry. Energy and, for gases, Pressure are
// pointers so that an omitted field is distinguishable from an explicit
// zero and reported as missing data.
type SpeciesConfig struct {
	Name        string    `yaml:"name"`
	Kind        string    `yaml:"kind"`
	Site        string    `yaml:"site"`
	Pressure    *float64  `yaml:"pressure"`
	Energy      *float64  `yaml:"energy"`
	Total       float64   `yaml:"total"`
	Frequencies []float64 `yaml:"frequencies"`
}

func DefaultConfig() *Config {
	return &Config{
		Temperature: DefaultTemperature,
		Backend:     DefaultBackend,
		Solver: SolverConfig{
			MaxIterations:    DefaultMaxIterations,
			Tolerance:        DefaultTolerance,
			WarmupIterations: DefaultWarmup,
			JacobianStep:     DefaultJacobianStep,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Model assembles the kinetic model: species in file order, reactions
// parsed from their equation strings.
func (c *Config) Model() (*kinetics.Model, error) {
	species := make([]*kinetics.Species, 0, len(c.Species))
	for i := range c.Species {
		sp, err := c.Species[i].toSpecies()
		if err != nil {
			return nil, err
		}
		species = append(species, sp)
	}
	rxns, err := kinetics.ParseEquations(c.Reactions)
	if err != nil {
		return nil, err
	}
	return kinetics.NewModel(c.Temperature, species, rxns)
}

func (sc *SpeciesConfig) toSpecies() (*kinetics.Species, error) {
	kind := kinetics.Kind(sc.Kind)
	switch kind {
	case kinetics.Gas, kinetics.Adsorbate, kinetics.Site, kinetics.TransitionState:
	default:
		return nil, fmt.Errorf("config: species %q has unknown kind %q", sc.Name, sc.Kind)
	}
	if sc.Energy == nil {
		return nil, &kinetics.MissingDataError{Species: sc.Name, Field: "energy"}
	}
	sp := &kinetics.Species{
		Name:            sc.Name,
		Kind:            kind,
		Site:            sc.Site,
		FormationEnergy: *sc.Energy,
		Total:           sc.Total,
		Frequencies:     sc.Frequencies,
	}
	if kind == kinetics.Gas {
		if sc.Pressure == nil {
			return nil, &kinetics.MissingDataError{Species: sc.Name, Field: "pressure"}
		}
		sp.Pressure = *sc.Pressure
	}
	return sp, nil
}

// NumericBackend constructs the configured arithmetic backend.
func (c *Config) NumericBackend() (numeric.Backend, error) {
	return numeric.New(c.Backend, c.Precision)
}

// SolverOptions maps the solver section onto steady.Options, filling in
// defaults for omitted fields.
func (c *Config) SolverOptions() steady.Options {
	opts := steady.DefaultOptions()
	if c.Solver.MaxIterations > 0 {
		opts.MaxIterations = c.Solver.MaxIterations
	}
	if c.Solver.Tolerance > 0 {
		opts.Tolerance = c.Solver.Tolerance
	}
	if c.Solver.WarmupIterations > 0 {
		opts.WarmupIterations = c.Solver.WarmupIterations
	}
	if c.Solver.JacobianStep > 0 {
		opts.JacobianStep = c.Solver.JacobianStep
	}
	return opts
}
