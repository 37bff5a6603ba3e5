package models

import "github.com/san-kum/fwdiff/internal/autodiff"

// Hinge is a clipped hinge loss with a log penalty:
//
//	Σ min(max(0, 1 - mᵢ wᵢ), cap) + λ Σ log(1 + wᵢ²)
//
// It is piecewise smooth; gradients are exact away from the kinks.
type Hinge struct {
	Cap    float64
	Lambda float64
}

func NewHinge() *Hinge {
	return &Hinge{Cap: 4.0, Lambda: 0.05}
}

func (h *Hinge) Name() string { return "hinge" }

func (h *Hinge) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "weights", Default: []float64{0.2, -0.4, 1.3}},
		{Name: "margins", Default: []float64{1.5, -2.0, 0.5}, Fixed: true},
	}
}

func (h *Hinge) Evaluate(in Inputs) autodiff.Value {
	w := in.Duals("weights")
	m := in.Duals("margins")

	terms := make([]autodiff.Value, 0, 2*len(w))
	for i := range w {
		hinge := autodiff.ConstMax(0, autodiff.ConstSub(1, m[i].Mul(w[i])))
		terms = append(terms, autodiff.Min(hinge, h.Cap))
		penalty := autodiff.Log(autodiff.ConstAdd(1, autodiff.Square(w[i])))
		terms = append(terms, penalty.MulConst(h.Lambda))
	}
	return sum(w[0].Len(), terms)
}
