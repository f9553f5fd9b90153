package steady

import (
	"errors"
	"fmt"

	"github.com/mvellank/surfkin/internal/numeric"
)

// Constraint projects a trial point back into the feasible region.
type Constraint func(numeric.Vector) numeric.Vector

// Iterate is one step of the Newton iteration: the accepted point, the
// residual vector there, and its Euclidean norm. Stationary is set when the
// step produced a point bit-identical to the previous one; the sequence
// ends after such an iterate.
type Iterate struct {
	Iteration  int
	Point      numeric.Vector
	Residual   numeric.Vector
	Norm       numeric.Scalar
	Stationary bool
}

// SingularJacobianError reports a Newton step whose linearized system could
// not be solved.
type SingularJacobianError struct {
	Iteration int
	Err       error
}

func (e *SingularJacobianError) Error() string {
	return fmt.Sprintf("steady: singular jacobian at iteration %d: %v", e.Iteration, e.Err)
}

func (e *SingularJacobianError) Unwrap() error { return e.Err }

// Newton is a lazy damped-Newton iterator. Each Next call performs one
// step: solve J*s = -F, pick the damping factor by golden-section search
// over the residual norm along s, project through the constraint, and
// yield the new point. The constraint is suspended for the first warmup
// iterations so the iterate can leave an infeasible starting guess.
//
// A Newton is single-use; build a fresh one to restart from a new point.
type Newton struct {
	b          numeric.Backend
	f          Func
	jac        func(numeric.Vector) (numeric.Matrix, error)
	constraint Constraint
	warmup     int

	x    numeric.Vector
	iter int
	done bool
}

func NewNewton(b numeric.Backend, f Func, jac func(numeric.Vector) (numeric.Matrix, error), constraint Constraint, x0 numeric.Vector, warmup int) *Newton {
	if constraint == nil {
		constraint = func(x numeric.Vector) numeric.Vector { return x }
	}
	return &Newton{b: b, f: f, jac: jac, constraint: constraint, warmup: warmup, x: x0.Clone()}
}

// Next advances the iteration by one step. ok is false once the sequence
// has ended, either after a stationary iterate or after an error.
func (n *Newton) Next() (it Iterate, ok bool, err error) {
	if n.done {
		return Iterate{}, false, nil
	}
	n.iter++

	fx, err := n.f(n.x)
	if err != nil {
		n.done = true
		return Iterate{}, false, err
	}
	j, err := n.jac(n.x)
	if err != nil {
		n.done = true
		return Iterate{}, false, err
	}
	s, err := n.b.Solve(j, fx.Neg())
	if err != nil {
		n.done = true
		if errors.Is(err, numeric.ErrSingular) {
			return Iterate{}, false, &SingularJacobianError{Iteration: n.iter, Err: err}
		}
		return Iterate{}, false, err
	}

	lambda := golden(func(l float64) (float64, error) {
		fl, err := n.f(n.x.Add(s.Scale(n.b.Float(l))))
		if err != nil {
			return 0, err
		}
		return fl.Norm(n.b).Float64(), nil
	}, 0, 2)

	x1 := n.x.Add(s.Scale(n.b.Float(lambda)))
	if n.iter > n.warmup {
		x1 = n.constraint(x1)
	}

	stationary := x1.Equal(n.x)
	n.x = x1

	fx1, err := n.f(x1)
	if err != nil {
		n.done = true
		return Iterate{}, false, err
	}
	if stationary {
		n.done = true
	}
	return Iterate{
		Iteration:  n.iter,
		Point:      x1,
		Residual:   fx1,
		Norm:       fx1.Norm(n.b),
		Stationary: stationary,
	}, true, nil
}
