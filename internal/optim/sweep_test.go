package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestGridSweepFindsMaximum(t *testing.T) {
	sweep := NewGridSweep(
		[]string{"a", "b"},
		[][]float64{{0, 1, 2}, {0, 1, 2}},
	)

	// Objective peaks at a=1, b=2.
	eval := func(_ context.Context, p map[string]float64) (float64, error) {
		return -math.Pow(p["a"]-1, 2) + p["b"], nil
	}
	best, val, points, err := sweep.Search(context.Background(), eval)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if best["a"] != 1 || best["b"] != 2 {
		t.Errorf("best params = %v, want a=1 b=2", best)
	}
	if val != 2 {
		t.Errorf("best value = %g, want 2", val)
	}
	if len(points) != 9 {
		t.Errorf("evaluated %d points, want 9", len(points))
	}
}

func TestGridSweepSkipsFailures(t *testing.T) {
	sweep := NewGridSweep([]string{"a"}, [][]float64{{0, 1, 2}})

	eval := func(_ context.Context, p map[string]float64) (float64, error) {
		if p["a"] == 2 {
			return 0, errors.New("did not converge")
		}
		return p["a"], nil
	}
	best, val, points, err := sweep.Search(context.Background(), eval)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if best["a"] != 1 || val != 1 {
		t.Errorf("best = %v (%g), want a=1 value 1", best, val)
	}
	if len(points) != 2 {
		t.Errorf("evaluated %d points, want 2 after one failure", len(points))
	}
}

func TestGridSweepAllFailed(t *testing.T) {
	sweep := NewGridSweep([]string{"a"}, [][]float64{{0}})
	eval := func(_ context.Context, _ map[string]float64) (float64, error) {
		return 0, errors.New("boom")
	}
	if _, _, _, err := sweep.Search(context.Background(), eval); err == nil {
		t.Fatal("expected error when every grid point fails")
	}
}

func TestGridSweepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sweep := NewGridSweep([]string{"a"}, [][]float64{{0, 1}})
	eval := func(_ context.Context, p map[string]float64) (float64, error) {
		return p["a"], nil
	}
	if _, _, _, err := sweep.Search(ctx, eval); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestLinspace(t *testing.T) {
	vals := Linspace(400, 600, 5)
	want := []float64{400, 450, 500, 550, 600}
	if len(vals) != len(want) {
		t.Fatalf("got %d values, want %d", len(vals), len(want))
	}
	for i := range want {
		if math.Abs(vals[i]-want[i]) > 1e-9 {
			t.Errorf("vals[%d] = %g, want %g", i, vals[i], want[i])
		}
	}
	if got := Linspace(1, 2, 1); len(got) != 1 || got[0] != 1 {
		t.Errorf("Linspace(1,2,1) = %v, want [1]", got)
	}
}
