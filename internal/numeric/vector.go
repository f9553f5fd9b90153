package numeric

// Clone returns a copy of the vector. Scalars are immutable, so a shallow
// copy suffices.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Add returns v + w element-wise.
func (v Vector) Add(w Vector) Vector {
	r := make(Vector, len(v))
	for i := range v {
		r[i] = v[i].Add(w[i])
	}
	return r
}

// Sub returns v - w element-wise.
func (v Vector) Sub(w Vector) Vector {
	r := make(Vector, len(v))
	for i := range v {
		r[i] = v[i].Sub(w[i])
	}
	return r
}

// Scale returns s*v.
func (v Vector) Scale(s Scalar) Vector {
	r := make(Vector, len(v))
	for i := range v {
		r[i] = v[i].Mul(s)
	}
	return r
}

// Neg returns -v.
func (v Vector) Neg() Vector {
	r := make(Vector, len(v))
	for i := range v {
		r[i] = v[i].Neg()
	}
	return r
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm(b Backend) Scalar {
	sum := b.Float(0)
	for _, x := range v {
		sum = sum.Add(x.Mul(x))
	}
	return b.Sqrt(sum)
}

// Equal reports whether v and w match element-wise, bit-exactly in the
// active precision. This is the stationary-point test of the Newton
// iteration.
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i].Cmp(w[i]) != 0 {
			return false
		}
	}
	return true
}

// Float64s converts v to native floats.
func (v Vector) Float64s() []float64 {
	r := make([]float64, len(v))
	for i := range v {
		r[i] = v[i].Float64()
	}
	return r
}

// FromFloat64s converts native floats into a backend vector.
func FromFloat64s(b Backend, vals []float64) Vector {
	v := make(Vector, len(vals))
	for i, x := range vals {
		v[i] = b.Float(x)
	}
	return v
}

// PowInt computes x**n for small non-negative integer exponents, the only
// powers rate expressions need.
func PowInt(b Backend, x Scalar, n int) Scalar {
	r := b.Float(1)
	for i := 0; i < n; i++ {
		r = r.Mul(x)
	}
	return r
}
