package numeric

import (
	"math"
	"math/big"
)

// DefaultDigits is the working precision of the arbitrary-precision backend
// when the configuration does not set one.
const DefaultDigits = 100

const guardBits = 16

// Big is the arbitrary-precision backend built on math/big. Rate constants
// in a microkinetic model span hundreds of orders of magnitude; this
// backend keeps the Newton linear algebra meaningful where float64 would
// underflow.
type Big struct {
	digits int
	prec   uint
	ln2    *big.Float
}

// NewBig returns a backend carrying the given number of decimal digits.
func NewBig(digits int) *Big {
	if digits <= 0 {
		digits = DefaultDigits
	}
	prec := uint(math.Ceil(float64(digits)*math.Log2(10))) + guardBits
	return &Big{digits: digits, prec: prec, ln2: ln2(prec)}
}

// ln2 evaluates ln 2 = sum 1/(k*2^k), which gains one bit per term.
func ln2(prec uint) *big.Float {
	work := prec + guardBits
	sum := new(big.Float).SetPrec(work)
	pow := new(big.Float).SetPrec(work).SetInt64(1)
	two := new(big.Float).SetInt64(2)
	term := new(big.Float).SetPrec(work)
	for k := int64(1); uint(k) <= work; k++ {
		pow.Quo(pow, two)
		term.Quo(pow, new(big.Float).SetInt64(k))
		sum.Add(sum, term)
	}
	return sum.SetPrec(prec)
}

func (b *Big) Name() string { return "big" }

// Digits reports the backend's working precision in decimal digits.
func (b *Big) Digits() int { return b.digits }

func (b *Big) Float(v float64) Scalar {
	return bf{v: new(big.Float).SetPrec(b.prec).SetFloat64(v)}
}

// Exp computes e**x by argument reduction: x = k*ln2 + r with |r| <= ln2/2,
// so e**x = 2**k * e**r, and e**r by Taylor series.
func (b *Big) Exp(x Scalar) Scalar {
	xv := x.(bf).v
	work := b.prec + guardBits

	q := new(big.Float).SetPrec(work).Quo(xv, b.ln2)
	qf, _ := q.Float64()
	k := int(math.Round(qf))

	r := new(big.Float).SetPrec(work).SetInt64(int64(k))
	r.Mul(r, b.ln2)
	r.Sub(xv, r)

	sum := new(big.Float).SetPrec(work).SetInt64(1)
	term := new(big.Float).SetPrec(work).SetInt64(1)
	for n := int64(1); n < int64(work); n++ {
		term.Mul(term, r)
		term.Quo(term, new(big.Float).SetInt64(n))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
		if sum.MantExp(nil)-term.MantExp(nil) > int(b.prec)+guardBits {
			break
		}
	}

	z := new(big.Float).SetPrec(b.prec).SetMantExp(sum, k)
	return bf{v: z}
}

func (b *Big) Sqrt(x Scalar) Scalar {
	z := new(big.Float).SetPrec(b.prec)
	z.Sqrt(x.(bf).v)
	return bf{v: z}
}

// Solve performs Gaussian elimination with partial pivoting in full
// precision.
func (b *Big) Solve(a Matrix, rhs Vector) (Vector, error) {
	n := len(rhs)
	zero := b.Float(0)

	rows := make([]Vector, n)
	for i := range rows {
		rows[i] = Vector(a[i]).Clone()
	}
	x := rhs.Clone()

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if rows[r][col].Abs().Cmp(rows[pivot][col].Abs()) > 0 {
				pivot = r
			}
		}
		if rows[pivot][col].Cmp(zero) == 0 {
			return nil, ErrSingular
		}
		rows[col], rows[pivot] = rows[pivot], rows[col]
		x[col], x[pivot] = x[pivot], x[col]

		for r := col + 1; r < n; r++ {
			f := rows[r][col].Div(rows[col][col])
			for c := col; c < n; c++ {
				rows[r][c] = rows[r][c].Sub(f.Mul(rows[col][c]))
			}
			x[r] = x[r].Sub(f.Mul(x[col]))
		}
	}

	out := make(Vector, n)
	for i := n - 1; i >= 0; i-- {
		s := x[i]
		for j := i + 1; j < n; j++ {
			s = s.Sub(rows[i][j].Mul(out[j]))
		}
		out[i] = s.Div(rows[i][i])
	}
	return out, nil
}

type bf struct {
	v *big.Float
}

func (x bf) new() *big.Float { return new(big.Float).SetPrec(x.v.Prec()) }

func (x bf) Add(y Scalar) Scalar { return bf{v: x.new().Add(x.v, y.(bf).v)} }
func (x bf) Sub(y Scalar) Scalar { return bf{v: x.new().Sub(x.v, y.(bf).v)} }
func (x bf) Mul(y Scalar) Scalar { return bf{v: x.new().Mul(x.v, y.(bf).v)} }
func (x bf) Div(y Scalar) Scalar { return bf{v: x.new().Quo(x.v, y.(bf).v)} }
func (x bf) Neg() Scalar         { return bf{v: x.new().Neg(x.v)} }
func (x bf) Abs() Scalar         { return bf{v: x.new().Abs(x.v)} }

func (x bf) Cmp(y Scalar) int { return x.v.Cmp(y.(bf).v) }

func (x bf) Float64() float64 {
	f, _ := x.v.Float64()
	return f
}

func (x bf) String() string { return x.v.Text('g', 12) }
