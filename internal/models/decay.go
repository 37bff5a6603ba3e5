package models

import (
	"math"

	"github.com/san-kum/fwdiff/internal/autodiff"
)

// DecayFit is the mean squared error of A·exp(-k·t) against observations
// sampled from a reference decay.
type DecayFit struct {
	Samples   int
	Duration  float64
	Amplitude float64
	Rate      float64
}

func NewDecayFit() *DecayFit {
	return &DecayFit{
		Samples:   12,
		Duration:  5.0,
		Amplitude: 3.0,
		Rate:      0.7,
	}
}

func (d *DecayFit) Name() string { return "decay_fit" }

func (d *DecayFit) Params() []ParamSpec {
	times := linspace(0, d.Duration, d.Samples)
	obs := make([]float64, len(times))
	for i, t := range times {
		obs[i] = d.Amplitude * math.Exp(-d.Rate*t)
	}
	return []ParamSpec{
		{Name: "amplitude", Default: []float64{1}},
		{Name: "rate", Default: []float64{0.1}},
		{Name: "times", Default: times, Fixed: true},
		{Name: "observations", Default: obs, Fixed: true},
	}
}

func (d *DecayFit) Evaluate(in Inputs) autodiff.Value {
	amp := in.Scalar("amplitude")
	rate := in.Scalar("rate")
	times := in.Duals("times")
	obs := in.Duals("observations")

	residuals := make([]autodiff.Value, len(times))
	for i := range times {
		pred := amp.Mul(autodiff.Exp(rate.Mul(times[i]).Neg()))
		residuals[i] = autodiff.Square(pred.Sub(obs[i]))
	}
	return sum(amp.Len(), residuals).DivConst(float64(len(times)))
}
