package autodiff

// Min and max are defined only between a Value and a float64; selection
// looks at values. When the float64 wins, the result is a constant of the
// Value's width. On a tie each overload keeps a fixed side:
//
//	ConstMin(c, v)  tie → v
//	Min(v, c)       tie → c
//	ConstMax(c, v)  tie → c
//	Max(v, c)       tie → v
//
// There is no Value-vs-Value overload.

// ConstMin returns the smaller of c and v; c wins only when strictly less.
func ConstMin(c float64, v Value) Value {
	if c < v.val {
		return Constant(len(v.dev), c)
	}
	return v
}

// Min returns the smaller of v and c; v wins only when strictly less.
func Min(v Value, c float64) Value {
	if v.val < c {
		return v
	}
	return Constant(len(v.dev), c)
}

// ConstMax returns the larger of c and v; v wins only when strictly greater.
func ConstMax(c float64, v Value) Value {
	if c < v.val {
		return v
	}
	return Constant(len(v.dev), c)
}

// Max returns the larger of v and c; c wins only when strictly greater.
func Max(v Value, c float64) Value {
	if v.val < c {
		return Constant(len(v.dev), c)
	}
	return v
}
