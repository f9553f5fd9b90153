package config

func fp(v float64) *float64 { return &v }

// Presets are ready-to-run networks for the CLI.
var Presets = map[string]*Config{
	// Single-step CO adsorption on one site type. Strongly downhill, so the
	// surface saturates and the net gas turnover sits near zero.
	"co-adsorption": {
		Network:     "co-adsorption",
		Temperature: 500,
		Backend:     "float64",
		Species: []SpeciesConfig{
			{Name: "CO_g", Kind: "gas", Pressure: fp(1.0), Energy: fp(0)},
			{Name: "s", Kind: "site", Total: 1.0, Energy: fp(0)},
			{Name: "CO_s", Kind: "adsorbate", Site: "s", Energy: fp(-1.5)},
		},
		Reactions: []string{
			"CO_g + *_s -> CO_s",
		},
	},
	// CO oxidation with dissociative O2 adsorption and an explicit
	// transition state for the surface recombination step.
	"co-oxidation": {
		Network:     "co-oxidation",
		Temperature: 500,
		Backend:     "float64",
		Thermo:      "shomate",
		Species: []SpeciesConfig{
			{Name: "CO_g", Kind: "gas", Pressure: fp(1.0), Energy: fp(0)},
			{Name: "O2_g", Kind: "gas", Pressure: fp(0.3333), Energy: fp(0)},
			{Name: "CO2_g", Kind: "gas", Pressure: fp(0), Energy: fp(-2.5)},
			{Name: "s", Kind: "site", Total: 1.0, Energy: fp(0)},
			{Name: "CO_s", Kind: "adsorbate", Site: "s", Energy: fp(-1.6)},
			{Name: "O_s", Kind: "adsorbate", Site: "s", Energy: fp(-1.1)},
			{Name: "CO-O_s", Kind: "transition_state", Site: "s", Energy: fp(-2.2)},
		},
		Reactions: []string{
			"CO_g + *_s -> CO_s",
			"O2_g + 2*_s -> 2O_s",
			"CO_s + O_s <-> CO-O_s + *_s -> CO2_g + 2*_s",
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
