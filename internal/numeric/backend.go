// Package numeric provides the pluggable arithmetic the kinetics solver is
// written against. Two backends exist: native float64 (linear algebra via
// gonum) and arbitrary-precision big.Float. The backend is injected at
// construction; solver code never branches on which one is active.
package numeric

import (
	"errors"
	"fmt"
)

// ErrSingular is returned by Backend.Solve when the linear system has no
// unique solution (zero pivot or numerically singular matrix).
var ErrSingular = errors.New("numeric: singular linear system")

// Scalar is one number in the active backend's precision. Implementations
// are immutable; every operation returns a new value. Scalars from
// different backends must not be mixed.
type Scalar interface {
	Add(y Scalar) Scalar
	Sub(y Scalar) Scalar
	Mul(y Scalar) Scalar
	Div(y Scalar) Scalar
	Neg() Scalar
	Abs() Scalar
	Cmp(y Scalar) int
	Float64() float64
	String() string
}

// Backend bundles the arithmetic primitives the solver needs beyond plain
// scalar operations.
type Backend interface {
	Name() string
	// Float converts a native float64 into the backend's representation.
	Float(v float64) Scalar
	// Exp computes e**x.
	Exp(x Scalar) Scalar
	// Sqrt computes the non-negative square root of x.
	Sqrt(x Scalar) Scalar
	// Solve solves the square linear system a*x = b.
	Solve(a Matrix, b Vector) (Vector, error)
}

// New constructs a backend by name. digits is the working precision in
// decimal digits and only applies to the arbitrary-precision backend.
func New(name string, digits int) (Backend, error) {
	switch name {
	case "float64", "":
		return Float64{}, nil
	case "big":
		if digits <= 0 {
			digits = DefaultDigits
		}
		return NewBig(digits), nil
	default:
		return nil, fmt.Errorf("numeric: unknown backend %q", name)
	}
}

// Vector is a column vector of backend scalars.
type Vector []Scalar

// Matrix is a dense row-major matrix of backend scalars.
type Matrix [][]Scalar

// NewVector returns a zero vector of length n.
func NewVector(b Backend, n int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = b.Float(0)
	}
	return v
}

// NewMatrix returns a zero matrix with the given shape.
func NewMatrix(b Backend, rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make(Vector, cols)
		for j := range m[i] {
			m[i][j] = b.Float(0)
		}
	}
	return m
}
