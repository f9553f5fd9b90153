// Package thermo supplies temperature-dependent free-energy corrections for
// gas-phase species from NIST Shomate parameterizations, with a fixed-entropy
// fallback for gases without tabulated data.
package thermo

import (
	"fmt"
	"math"
)

// kJmol2eV converts kJ/mol to eV per particle.
const kJmol2eV = 0.01036427

// ShomateRange is one temperature window of a Shomate parameterization.
// Coefficients follow the NIST convention (A..H).
type ShomateRange struct {
	Tmin, Tmax             float64
	A, B, C, D, E, F, G, H float64
}

// enthalpy returns H(T) - H(298.15 K) in kJ/mol.
func (r *ShomateRange) enthalpy(T float64) float64 {
	t := T / 1000
	return r.A*t + r.B*t*t/2 + r.C*t*t*t/3 + r.D*t*t*t*t/4 - r.E/t + r.F - r.H
}

// entropy returns the standard entropy S(T) in J/(mol K).
func (r *ShomateRange) entropy(T float64) float64 {
	t := T / 1000
	return r.A*math.Log(t) + r.B*t + r.C*t*t/2 + r.D*t*t*t/3 - r.E/(2*t*t) + r.G
}

// correction is the free-energy shift H(T) - H(298) - T*S(T) in eV.
func (r *ShomateRange) correction(T float64) float64 {
	return (r.enthalpy(T) - T*r.entropy(T)/1000) * kJmol2eV
}

// OutOfRangeError reports a gas whose Shomate data does not cover the
// requested temperature.
type OutOfRangeError struct {
	Species     string
	Temperature float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("thermo: no shomate range for %s at %g K", e.Species, e.Temperature)
}

// shomateParams holds the NIST parameterizations, per gas, ordered by
// temperature window.
var shomateParams = map[string][]ShomateRange{
	"H2_g": {
		{298, 1000, 33.066178, -11.363417, 11.432816, -2.772874, -0.158558, -9.980797, 172.707974, 0},
		{1000, 2500, 18.563083, 12.257357, -2.859786, 0.268238, 1.977990, -1.147438, 156.288133, 0},
		{2500, 6000, 43.413560, -4.293079, 1.272428, -0.096876, -20.533862, -38.515158, 162.081354, 0},
	},
	"CH4_g": {
		{298, 1300, -0.703029, 108.4773, -42.52157, 5.862788, 0.678565, -76.84376, 158.7163, -74.87310},
		{1300, 1600, 85.81217, 11.26467, -2.114146, 0.138190, -26.42221, -153.5327, 224.4143, -74.87310},
	},
	"CO_g": {
		{298, 1300, 25.56759, 6.096130, 4.054656, -2.671201, 0.131021, -118.0089, 227.3665, -110.5271},
		{1300, 1600, 35.15070, 1.300095, -0.205921, 0.013550, -3.282780, -127.8375, 231.7120, -110.5271},
	},
	"H2O_g": {
		{100, 500, 36.303952, -24.11232, 63.64111, -38.9524, -0.01385, -10.23966, 237.39431, 0},
		{500, 1700, 30.09200, 6.832514, 6.793435, -2.534480, 0.082139, -250.8810, 223.3967, -241.8264},
		{1700, 6000, 41.96426, 8.622053, -1.499780, 0.098119, -11.15764, -272.1797, 219.7809, -241.8264},
	},
	"CO2_g": {
		{298, 1200, 24.99735, 55.18696, -33.69137, 7.948387, -0.136638, -403.6075, 228.2431, -393.5224},
		{1200, 6000, 58.16639, 2.720075, -0.492289, 0.038844, -6.447293, -425.9186, 263.6125, -393.5224},
	},
	"O2_g": {
		{100, 700, 31.32234, -20.23531, 57.8664, -36.50624, -0.007374, -8.903471, 246.7945, 0},
		{700, 2000, 30.03235, 8.772972, -3.988133, 0.788313, -0.741599, -11.32468, 236.1663, 0},
		{2000, 6000, 20.91111, 10.72071, -2.020498, 0.146449, 9.245722, 5.337651, 237.6185, 0},
	},
	"NH3_g": {
		{298, 1400, 19.99563, 49.77119, -15.37599, 1.921168, 0.189174, -53.30667, 203.8591, -45.89806},
	},
	"N2_g": {
		{100, 500, 28.98641, 1.853978, -9.647459, 16.63537, 0.000117, -8.671914, 226.4168, 0},
		{500, 2000, 19.50583, 19.88705, -8.598535, 1.369784, 0.527601, -4.935202, 212.3900, 0},
	},
	"N2O_g": {
		{298, 1400, 27.67988, 51.14898, -30.64454, 6.847911, -0.157906, 71.24934, 238.6164, 82.04824},
	},
	"NO2_g": {
		{298, 1200, 16.10857, 75.89525, -54.38740, 14.30777, 0.239423, 26.17464, 240.5386, 33.09502},
	},
	"NO_g": {
		{298, 1200, 23.83491, 12.58878, -1.139011, -1.497459, 0.214194, 83.35783, 237.1219, 90.29114},
	},
	"NO3_g": {
		{298, 1200, 11.22316, 166.3889, -148.4458, 47.40598, -0.176791, 61.00858, 221.7679, 71.12800},
	},
	"HNO2_g": {
		{298, 1200, 24.89974, 91.37563, -64.84614, 17.92007, -0.134737, -88.13596, 254.2671, -76.73498},
	},
	"HNO3_g": {
		{298, 1200, 19.63229, 153.9599, -115.8378, 32.87955, -0.249114, -146.8818, 247.7049, -134.3060},
	},
	"HCN_g": {
		{298, 1200, 32.69373, 22.59205, -4.369142, -0.407697, -0.282399, 123.4811, 233.2597, 135.1432},
	},
	"CH2CH2_g": {
		{298, 1200, -6.387880, 184.4019, -112.9718, 28.49593, 0.315540, 48.17332, 163.1568, 52.46694},
	},
	"CH2O_g": {
		{298, 1500, 5.193767, 93.23249, -44.85457, 7.882279, 0.551175, -119.3591, 202.4663, -115.8972},
	},
	"CH3OH_g": {
		{298, 1500, -0.54480506209266066, 151.88669435629552, -78.31823594271188, 16.106518370880025, 0.49380897934744739, -5.008, 200.05003685507603, 0},
	},
	"HCOOH_g": {
		{298, 1500, 3.8027523042252258, 153.66217894746168, -84.640467738169264, 16.297377707561505, 0.27720649972633382, -6.16527, 212.9698972559699, 0},
	},
	"CH3CH2OH_g": {
		{273, 1300, 6.372731, 273.0132, -163.0101, 38.77719, 0.334329, -7.25, 201, 0},
	},
}

// fixedEntropies are per-gas standard entropies in eV/K for gases without
// a Shomate parameterization.
var fixedEntropies = map[string]float64{
	"H2_g": 0.00135,
}

// DefaultFixedEntropy applies to any gas not listed in fixedEntropies.
const DefaultFixedEntropy = 0.002 // eV/K

// GasCorrection returns the free-energy correction (eV) of the named gas at
// temperature T. Gases with Shomate data must be inside a tabulated window;
// gases without data fall back to the fixed-entropy estimate -T*S.
func GasCorrection(name string, T float64) (float64, error) {
	ranges, ok := shomateParams[name]
	if !ok {
		return FixedEntropyCorrection(name, T), nil
	}
	for i := range ranges {
		if T >= ranges[i].Tmin && T <= ranges[i].Tmax {
			return ranges[i].correction(T), nil
		}
	}
	return 0, &OutOfRangeError{Species: name, Temperature: T}
}

// FixedEntropyCorrection is the -T*S free-energy estimate (eV) with a flat
// per-gas entropy.
func FixedEntropyCorrection(name string, T float64) float64 {
	s, ok := fixedEntropies[name]
	if !ok {
		s = DefaultFixedEntropy
	}
	return -T * s
}

// Corrections computes free-energy corrections for a list of gases, keyed
// by species name, ready for EnergyState.AddCorrection.
func Corrections(gasNames []string, T float64) (map[string]float64, error) {
	out := make(map[string]float64, len(gasNames))
	for _, name := range gasNames {
		c, err := GasCorrection(name, T)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	return out, nil
}

// HasShomateData reports whether the gas has a tabulated parameterization.
func HasShomateData(name string) bool {
	_, ok := shomateParams[name]
	return ok
}
