package steady

import "github.com/mvellank/surfkin/internal/numeric"

// Func is a vector-valued function of the coverage vector.
type Func func(numeric.Vector) (numeric.Vector, error)

// Direction selects the side of a one-sided finite difference.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// FiniteJacobian estimates the Jacobian of f at x with one-sided
// differences. h is the relative step; the per-coordinate delta is
// max(|h*x_j|, h) so zero coordinates still get a finite step. classify
// chooses the difference side per coordinate; nil means forward
// everywhere.
func FiniteJacobian(b numeric.Backend, f Func, x numeric.Vector, h float64, classify func(j int) Direction) (numeric.Matrix, error) {
	fx, err := f(x)
	if err != nil {
		return nil, err
	}

	hs := b.Float(h)
	jac := numeric.NewMatrix(b, len(fx), len(x))
	for j := range x {
		delta := hs.Mul(x[j]).Abs()
		if delta.Cmp(hs) < 0 {
			delta = hs
		}

		dir := Forward
		if classify != nil {
			dir = classify(j)
		}

		xp := x.Clone()
		if dir == Forward {
			xp[j] = x[j].Add(delta)
		} else {
			xp[j] = x[j].Sub(delta)
		}
		fp, err := f(xp)
		if err != nil {
			return nil, err
		}

		for i := range fp {
			d := fp[i].Sub(fx[i]).Div(delta)
			if dir == Backward {
				d = d.Neg()
			}
			jac[i][j] = d
		}
	}
	return jac, nil
}
