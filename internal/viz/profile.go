package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/mvellank/surfkin/internal/rates"
)

// segmentSamples is how many plot points each half-segment (state to
// barrier top, barrier top to state) contributes.
const segmentSamples = 8

// EnergyProfile plots the free-energy landscape along the reaction path:
// reactions in network order, each rendered as initial state, barrier top,
// final state, chained cumulatively.
func EnergyProfile(sys *rates.System) (string, error) {
	gaf, gar, err := sys.Barriers()
	if err != nil {
		return "", err
	}

	var series []float64
	level := 0.0
	series = append(series, level)
	for i := range gaf {
		peak := level + gaf[i].Float64()
		next := peak - gar[i].Float64()
		series = append(series, ramp(level, peak)...)
		series = append(series, ramp(peak, next)...)
		level = next
	}

	var sb strings.Builder
	graph := asciigraph.Plot(series,
		asciigraph.Height(graphHeight+2),
		asciigraph.Width(graphWidth),
		asciigraph.Caption("free energy along reaction path (eV)"),
	)
	sb.WriteString(graph + "\n\n")
	for i := range gaf {
		fmt.Fprintf(&sb, "%2d  %-45s Ga_f %8.4f  Ga_r %8.4f\n",
			i, sys.Model().Reactions[i].Equation, gaf[i].Float64(), gar[i].Float64())
	}
	return sb.String(), nil
}

func ramp(from, to float64) []float64 {
	pts := make([]float64, segmentSamples)
	for i := range pts {
		f := float64(i+1) / segmentSamples
		pts[i] = from + (to-from)*f
	}
	return pts
}
