// Package optim sweeps operating conditions (temperature, partial
// pressures) over a grid and reports where a target objective peaks.
package optim

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mvellank/surfkin/internal/config"
	"github.com/mvellank/surfkin/internal/rates"
	"github.com/mvellank/surfkin/internal/tof"
)

// Evaluate runs one condition set and returns the objective value.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

// Point is one evaluated grid node.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSweep struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSweep(params []string, ranges [][]float64) *GridSweep {
	return &GridSweep{paramNames: params, ranges: ranges}
}

// Search maximizes the objective over the full grid. Conditions where the
// evaluation fails (e.g. the solver does not converge) are skipped rather
// than aborting the sweep.
func (g *GridSweep) Search(ctx context.Context, eval Evaluate) (map[string]float64, float64, []Point, error) {
	best := math.Inf(-1)
	var bestParams map[string]float64
	var points []Point

	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, &best, &bestParams, &points)
	if err != nil {
		return nil, 0, points, err
	}
	if bestParams == nil {
		return nil, 0, points, fmt.Errorf("optim: no grid point evaluated successfully")
	}
	return bestParams, best, points, nil
}

func (g *GridSweep) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluate,
	best *float64,
	bestParams *map[string]float64,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, err := eval(ctx, current)
		if err != nil {
			return nil // skip failed conditions
		}
		snapshot := make(map[string]float64, len(current))
		for k, v := range current {
			snapshot[k] = v
		}
		*points = append(*points, Point{Params: snapshot, Value: val})
		if val > *best {
			*best = val
			*bestParams = snapshot
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, eval, best, bestParams, points); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	return vals
}

// TOFObjective builds an objective returning |TOF| of the target gas under
// modified conditions. Recognized parameter names are "temperature" and
// "p:<gas>" for partial pressures; each evaluation works on its own copy of
// the configuration.
func TOFObjective(cfg *config.Config, gas string) Evaluate {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		c := *cfg
		c.Species = append([]config.SpeciesConfig(nil), cfg.Species...)
		for name, val := range params {
			switch {
			case name == "temperature":
				c.Temperature = val
			case strings.HasPrefix(name, "p:"):
				target := strings.TrimPrefix(name, "p:")
				for i := range c.Species {
					if c.Species[i].Name == target {
						p := val
						c.Species[i].Pressure = &p
					}
				}
			default:
				return 0, fmt.Errorf("optim: unknown sweep parameter %q", name)
			}
		}

		m, err := c.Model()
		if err != nil {
			return 0, err
		}
		b, err := c.NumericBackend()
		if err != nil {
			return 0, err
		}
		sys, err := rates.NewSystem(m, b, nil, nil)
		if err != nil {
			return 0, err
		}
		gi, ok := m.GasIndex(gas)
		if !ok {
			return 0, fmt.Errorf("optim: unknown gas %q", gas)
		}

		opts := c.SolverOptions()
		tofs, _, err := tof.NewEngine(sys, opts, nil).TOF(ctx)
		if err != nil {
			return 0, err
		}
		return math.Abs(tofs[gi].Float64()), nil
	}
}
