package autodiff

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Domain errors are not intercepted: the math package result (NaN, ±Inf)
// flows into the value and derivative.

// scaled returns the derivative of f(v) given f'(v).
func scaled(v Value, factor float64) []float64 {
	return floats.ScaleTo(make([]float64, len(v.dev)), factor, v.dev)
}

// Pow returns u**v with derivative dv·ln(u)·u**v + du·v·u**v/u.
func Pow(u, v Value) Value {
	p := math.Pow(u.val, v.val)
	dev := scaled(v, math.Log(u.val)*p)
	floats.AddScaled(dev, p*v.val/u.val, u.dev)
	return fromParts(p, dev)
}

// ConstPow returns c**v.
func ConstPow(c float64, v Value) Value {
	p := math.Pow(c, v.val)
	return fromParts(p, scaled(v, p*math.Log(c)))
}

// PowConst returns u**c.
func PowConst(u Value, c float64) Value {
	return fromParts(math.Pow(u.val, c), scaled(u, c*math.Pow(u.val, c-1)))
}

// Log returns the natural logarithm of u.
func Log(u Value) Value {
	return fromParts(math.Log(u.val), scaled(u, 1/u.val))
}

// Log2 returns the binary logarithm of u.
func Log2(u Value) Value {
	return fromParts(math.Log2(u.val), scaled(u, 1/(u.val*math.Ln2)))
}

// Log10 returns the decimal logarithm of u.
func Log10(u Value) Value {
	return fromParts(math.Log10(u.val), scaled(u, 1/(u.val*math.Ln10)))
}

// Exp returns e**u.
func Exp(u Value) Value {
	e := math.Exp(u.val)
	return fromParts(e, scaled(u, e))
}

// Sqrt returns the square root of u. The derivative is +Inf at zero.
func Sqrt(u Value) Value {
	s := math.Sqrt(u.val)
	return fromParts(s, scaled(u, 0.5/s))
}

// Square returns u².
func Square(u Value) Value {
	return fromParts(u.val*u.val, scaled(u, 2*u.val))
}

func Sin(u Value) Value {
	s, c := math.Sincos(u.val)
	return fromParts(s, scaled(u, c))
}

func Cos(u Value) Value {
	s, c := math.Sincos(u.val)
	return fromParts(c, scaled(u, -s))
}

// Abs returns |u|. At zero the subgradient 0 is used.
func Abs(u Value) Value {
	switch {
	case u.val > 0:
		return u
	case u.val < 0:
		return u.Neg()
	default:
		return Constant(len(u.dev), math.Abs(u.val))
	}
}
