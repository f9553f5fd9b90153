package steady

import "math"

const (
	goldenTol     = 1e-6
	goldenMaxIter = 80
)

// golden minimizes fn over [a, b] by golden-section search. A failed
// evaluation counts as +Inf, which steers the bracket away from the bad
// step length instead of aborting the Newton step.
func golden(fn func(float64) (float64, error), a, b float64) float64 {
	invphi := (math.Sqrt(5) - 1) / 2

	eval := func(x float64) float64 {
		v, err := fn(x)
		if err != nil || math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	x1 := b - invphi*(b-a)
	x2 := a + invphi*(b-a)
	f1 := eval(x1)
	f2 := eval(x2)
	for i := 0; i < goldenMaxIter && b-a > goldenTol; i++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invphi*(b-a)
			f1 = eval(x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invphi*(b-a)
			f2 = eval(x2)
		}
	}
	return (a + b) / 2
}
