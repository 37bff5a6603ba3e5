package autodiff

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Value is a dual number: a float64 value together with the partial
// derivatives of that value with respect to each of the N independent
// variables of the surrounding computation.
//
// Values are immutable by convention. Operators return new values and
// never write into an operand's derivative slice, so results may share
// derivative storage with their operands. Only the *Assign methods change
// a Value, and they replace its derivative rather than editing it.
//
// Every operand combined in one expression must have the same width N.
// This is not checked; use [Space.Check] where it matters. With gonum's
// kernels a mismatch panics.
type Value struct {
	val float64
	dev []float64
}

// Seed returns the independent variable i of n with value v: its
// derivative is the unit vector e_i.
func Seed(i, n int, v float64) Value {
	dev := make([]float64, n)
	dev[i] = 1
	return Value{val: v, dev: dev}
}

// Constant returns v with an all-zero derivative of width n.
func Constant(n int, v float64) Value {
	return Value{val: v, dev: make([]float64, n)}
}

func fromParts(v float64, dev []float64) Value {
	return Value{val: v, dev: dev}
}

// Float returns the value, discarding the derivative. It is the only way
// code without a notion of differentiation should read a Value.
func (v Value) Float() float64 { return v.val }

// Len returns the derivative width N.
func (v Value) Len() int { return len(v.dev) }

// Derivative returns a copy of the derivative vector.
func (v Value) Derivative() []float64 {
	d := make([]float64, len(v.dev))
	copy(d, v.dev)
	return d
}

// Partial returns ∂v/∂x_k.
func (v Value) Partial(k int) float64 { return v.dev[k] }

func (v Value) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(strconv.FormatFloat(v.val, 'g', -1, 64))
	b.WriteString(" + [")
	for i, d := range v.dev {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(d, 'g', -1, 64))
	}
	b.WriteString("]ε)")
	return b.String()
}

func (v Value) Neg() Value {
	return fromParts(-v.val, floats.ScaleTo(make([]float64, len(v.dev)), -1, v.dev))
}

// Add returns v + w.
func (v Value) Add(w Value) Value {
	return fromParts(v.val+w.val, floats.AddTo(make([]float64, len(v.dev)), v.dev, w.dev))
}

// Sub returns v - w.
func (v Value) Sub(w Value) Value {
	return fromParts(v.val-w.val, floats.SubTo(make([]float64, len(v.dev)), v.dev, w.dev))
}

// Mul returns v·w with derivative v·dw + w·dv.
func (v Value) Mul(w Value) Value {
	dev := floats.ScaleTo(make([]float64, len(v.dev)), w.val, v.dev)
	floats.AddScaled(dev, v.val, w.dev)
	return fromParts(v.val*w.val, dev)
}

// Div returns v/w with derivative dv/w - v·dw/w².
func (v Value) Div(w Value) Value {
	q := v.val / w.val
	dev := floats.ScaleTo(make([]float64, len(v.dev)), 1/w.val, v.dev)
	floats.AddScaled(dev, -q/w.val, w.dev)
	return fromParts(q, dev)
}

// AddConst returns v + c. The constant contributes no derivative.
func (v Value) AddConst(c float64) Value { return fromParts(v.val+c, v.dev) }

// SubConst returns v - c.
func (v Value) SubConst(c float64) Value { return fromParts(v.val-c, v.dev) }

// MulConst returns v·c.
func (v Value) MulConst(c float64) Value {
	return fromParts(v.val*c, floats.ScaleTo(make([]float64, len(v.dev)), c, v.dev))
}

// DivConst returns v/c.
func (v Value) DivConst(c float64) Value {
	return fromParts(v.val/c, floats.ScaleTo(make([]float64, len(v.dev)), 1/c, v.dev))
}

// ConstAdd returns c + v.
func ConstAdd(c float64, v Value) Value { return fromParts(c+v.val, v.dev) }

// ConstSub returns c - v.
func ConstSub(c float64, v Value) Value {
	return fromParts(c-v.val, floats.ScaleTo(make([]float64, len(v.dev)), -1, v.dev))
}

// ConstMul returns c·v.
func ConstMul(c float64, v Value) Value { return v.MulConst(c) }

// ConstDiv returns c/v with derivative -c·dv/v².
func ConstDiv(c float64, v Value) Value {
	return fromParts(c/v.val, floats.ScaleTo(make([]float64, len(v.dev)), -c/v.val/v.val, v.dev))
}

// AddAssign sets v = v + w.
func (v *Value) AddAssign(w Value) {
	v.val += w.val
	v.dev = floats.AddTo(make([]float64, len(v.dev)), v.dev, w.dev)
}

// SubAssign sets v = v - w.
func (v *Value) SubAssign(w Value) {
	v.val -= w.val
	v.dev = floats.SubTo(make([]float64, len(v.dev)), v.dev, w.dev)
}

// MulAssign sets v = v·w.
func (v *Value) MulAssign(w Value) { *v = v.Mul(w) }

// DivAssign sets v = v/w.
func (v *Value) DivAssign(w Value) { *v = v.Div(w) }

// The *ConstAssign methods update the value only and leave the derivative
// exactly as it was. Callers rely on this to shift or rescale a value
// without changing its sensitivity. It is NOT the derivative of the
// arithmetic for MulConstAssign and DivConstAssign: use MulConst or
// DivConst when the derivative must follow.

// AddConstAssign adds c to the value only.
func (v *Value) AddConstAssign(c float64) { v.val += c }

// SubConstAssign subtracts c from the value only.
func (v *Value) SubConstAssign(c float64) { v.val -= c }

// MulConstAssign multiplies the value only by c; the derivative is kept.
func (v *Value) MulConstAssign(c float64) { v.val *= c }

// DivConstAssign divides the value only by c; the derivative is kept.
func (v *Value) DivConstAssign(c float64) { v.val /= c }

// Comparisons look at values only. Branching on them is allowed; the
// derivative of the result is then discontinuous at the branch boundary.
// A scalar on the left is written with the mirrored method: c < v is
// v.GreaterConst(c).

func (v Value) Less(w Value) bool      { return v.val < w.val }
func (v Value) LessEq(w Value) bool    { return v.val <= w.val }
func (v Value) Greater(w Value) bool   { return v.val > w.val }
func (v Value) GreaterEq(w Value) bool { return v.val >= w.val }
func (v Value) Equal(w Value) bool     { return v.val == w.val }
func (v Value) NotEqual(w Value) bool  { return v.val != w.val }

func (v Value) LessConst(c float64) bool      { return v.val < c }
func (v Value) LessEqConst(c float64) bool    { return v.val <= c }
func (v Value) GreaterConst(c float64) bool   { return v.val > c }
func (v Value) GreaterEqConst(c float64) bool { return v.val >= c }
func (v Value) EqualConst(c float64) bool     { return v.val == c }
func (v Value) NotEqualConst(c float64) bool  { return v.val != c }
