package numeric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Float64 is the native double-precision backend. Linear systems are
// solved with gonum.
type Float64 struct{}

func (Float64) Name() string           { return "float64" }
func (Float64) Float(v float64) Scalar { return f64(v) }

func (Float64) Exp(x Scalar) Scalar  { return f64(math.Exp(float64(x.(f64)))) }
func (Float64) Sqrt(x Scalar) Scalar { return f64(math.Sqrt(float64(x.(f64)))) }

func (Float64) Solve(a Matrix, b Vector) (Vector, error) {
	n := len(b)
	dense := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dense.Set(i, j, a[i][j].Float64())
		}
	}
	rhs := mat.NewVecDense(n, b.Float64s())

	var x mat.VecDense
	if err := x.SolveVec(dense, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	out := make(Vector, n)
	for i := 0; i < n; i++ {
		v := x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrSingular
		}
		out[i] = f64(v)
	}
	return out, nil
}

type f64 float64

func (x f64) Add(y Scalar) Scalar { return x + y.(f64) }
func (x f64) Sub(y Scalar) Scalar { return x - y.(f64) }
func (x f64) Mul(y Scalar) Scalar { return x * y.(f64) }
func (x f64) Div(y Scalar) Scalar { return x / y.(f64) }
func (x f64) Neg() Scalar         { return -x }

func (x f64) Abs() Scalar { return f64(math.Abs(float64(x))) }

func (x f64) Cmp(y Scalar) int {
	d := float64(x) - float64(y.(f64))
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

func (x f64) Float64() float64 { return float64(x) }
func (x f64) String() string   { return fmt.Sprintf("%g", float64(x)) }
