package autodiff_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fwdiff/internal/autodiff"
)

var _ = Describe("math functions", func() {
	x := autodiff.Seed(0, 2, 1.7)
	y := autodiff.Seed(1, 2, 0.4)

	It("differentiates u**c", func() {
		p := autodiff.PowConst(x, 2)
		Expect(p.Float()).To(BeNumerically("~", 1.7*1.7, tol))
		Expect(p.Partial(0)).To(BeNumerically("~", 2*1.7, tol))
		Expect(p.Partial(1)).To(Equal(0.0))
	})

	It("differentiates c**v", func() {
		p := autodiff.ConstPow(2, x)
		Expect(p.Float()).To(BeNumerically("~", math.Pow(2, 1.7), tol))
		Expect(p.Partial(0)).To(BeNumerically("~", math.Pow(2, 1.7)*math.Ln2, tol))
	})

	It("differentiates u**v in both arguments", func() {
		p := autodiff.Pow(x, y)
		want := math.Pow(1.7, 0.4)
		Expect(p.Float()).To(BeNumerically("~", want, tol))
		Expect(p.Partial(0)).To(BeNumerically("~", 0.4*math.Pow(1.7, -0.6), tol))
		Expect(p.Partial(1)).To(BeNumerically("~", math.Log(1.7)*want, tol))
	})

	It("differentiates logarithms", func() {
		Expect(autodiff.Log(x).Partial(0)).To(BeNumerically("~", 1/1.7, tol))
		Expect(autodiff.Log2(x).Partial(0)).To(BeNumerically("~", 1/(1.7*math.Ln2), tol))
		Expect(autodiff.Log10(x).Partial(0)).To(BeNumerically("~", 1/(1.7*math.Ln10), tol))
		Expect(autodiff.Log10(x).Float()).To(Equal(math.Log10(1.7)))
	})

	It("round-trips exp and log", func() {
		for _, v := range []float64{1e-3, 0.5, 1, 7.25, 1e4} {
			r := autodiff.Exp(autodiff.Log(autodiff.Seed(0, 1, v)))
			Expect(r.Float()).To(BeNumerically("~", v, 1e-9*v))
			Expect(r.Partial(0)).To(BeNumerically("~", 1, 1e-12))
		}
	})

	It("propagates domain errors as NaN", func() {
		l := autodiff.Log(autodiff.Seed(0, 1, -1))
		Expect(math.IsNaN(l.Float())).To(BeTrue())
		s := autodiff.Sqrt(autodiff.Seed(0, 1, -4))
		Expect(math.IsNaN(s.Float())).To(BeTrue())
	})

	It("differentiates the trigonometric and helper functions", func() {
		Expect(autodiff.Sin(x).Partial(0)).To(BeNumerically("~", math.Cos(1.7), tol))
		Expect(autodiff.Cos(x).Partial(0)).To(BeNumerically("~", -math.Sin(1.7), tol))
		Expect(autodiff.Sqrt(x).Partial(0)).To(BeNumerically("~", 0.5/math.Sqrt(1.7), tol))
		Expect(autodiff.Square(x).Partial(0)).To(BeNumerically("~", 3.4, tol))
		Expect(autodiff.Abs(x.Neg()).Partial(0)).To(Equal(1.0))
		Expect(autodiff.Abs(x.Neg()).Float()).To(Equal(1.7))
		Expect(autodiff.Abs(autodiff.Seed(0, 2, 0)).Derivative()).To(Equal([]float64{0, 0}))
	})
})

var _ = Describe("min and max against a scalar", func() {
	dual := autodiff.Seed(0, 3, 5)
	isDual := func(v autodiff.Value) bool { return v.Partial(0) == 1 }

	DescribeTable("tie-breaking",
		func(f func() autodiff.Value, wantDual bool) {
			r := f()
			Expect(r.Float()).To(Equal(5.0))
			Expect(r.Len()).To(Equal(3))
			Expect(isDual(r)).To(Equal(wantDual))
		},
		Entry("ConstMin keeps the Value", func() autodiff.Value { return autodiff.ConstMin(5, dual) }, true),
		Entry("Min keeps the scalar", func() autodiff.Value { return autodiff.Min(dual, 5) }, false),
		Entry("ConstMax keeps the scalar", func() autodiff.Value { return autodiff.ConstMax(5, dual) }, false),
		Entry("Max keeps the Value", func() autodiff.Value { return autodiff.Max(dual, 5) }, true),
	)

	DescribeTable("strict selection",
		func(f func() autodiff.Value, want float64, wantDual bool) {
			r := f()
			Expect(r.Float()).To(Equal(want))
			Expect(isDual(r)).To(Equal(wantDual))
			if !wantDual {
				Expect(r.Derivative()).To(Equal([]float64{0, 0, 0}))
			}
		},
		Entry("ConstMin smaller scalar", func() autodiff.Value { return autodiff.ConstMin(2, dual) }, 2.0, false),
		Entry("ConstMin larger scalar", func() autodiff.Value { return autodiff.ConstMin(9, dual) }, 5.0, true),
		Entry("Min smaller scalar", func() autodiff.Value { return autodiff.Min(dual, 2) }, 2.0, false),
		Entry("Min larger scalar", func() autodiff.Value { return autodiff.Min(dual, 9) }, 5.0, true),
		Entry("ConstMax smaller scalar", func() autodiff.Value { return autodiff.ConstMax(2, dual) }, 5.0, true),
		Entry("ConstMax larger scalar", func() autodiff.Value { return autodiff.ConstMax(9, dual) }, 9.0, false),
		Entry("Max smaller scalar", func() autodiff.Value { return autodiff.Max(dual, 2) }, 5.0, true),
		Entry("Max larger scalar", func() autodiff.Value { return autodiff.Max(dual, 9) }, 9.0, false),
	)
})
