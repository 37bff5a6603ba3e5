package autodiff_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fwdiff/internal/autodiff"
)

const tol = 1e-12

var _ = Describe("Value", func() {
	var x, y autodiff.Value

	BeforeEach(func() {
		x = autodiff.Seed(0, 2, 3)
		y = autodiff.Seed(1, 2, -1.5)
	})

	Describe("construction", func() {
		It("seeds a unit derivative", func() {
			Expect(x.Float()).To(Equal(3.0))
			Expect(x.Derivative()).To(Equal([]float64{1, 0}))
			Expect(y.Derivative()).To(Equal([]float64{0, 1}))
		})

		It("builds constants with a zero derivative", func() {
			c := autodiff.Constant(3, 7)
			Expect(c.Float()).To(Equal(7.0))
			Expect(c.Len()).To(Equal(3))
			Expect(c.Derivative()).To(Equal([]float64{0, 0, 0}))
		})

		It("returns a copy from Derivative", func() {
			d := x.Derivative()
			d[0] = 42
			Expect(x.Partial(0)).To(Equal(1.0))
		})

		It("converts to float64 ignoring the derivative", func() {
			v := x.Mul(y).AddConst(10)
			Expect(v.Float()).To(Equal(3*-1.5 + 10))
		})

		It("formats value and derivative", func() {
			Expect(x.String()).To(Equal("(3 + [1 0]ε)"))
		})
	})

	Describe("binary operators", func() {
		It("differentiates sums and differences", func() {
			Expect(x.Add(y).Derivative()).To(Equal([]float64{1, 1}))
			Expect(x.Sub(y).Derivative()).To(Equal([]float64{1, -1}))
			Expect(x.Sub(y).Float()).To(Equal(4.5))
		})

		It("applies the product rule", func() {
			p := x.Mul(y)
			Expect(p.Float()).To(Equal(-4.5))
			Expect(p.Partial(0)).To(Equal(y.Float()))
			Expect(p.Partial(1)).To(Equal(x.Float()))
		})

		It("applies the quotient rule", func() {
			q := x.Div(y)
			Expect(q.Float()).To(Equal(-2.0))
			Expect(q.Partial(0)).To(BeNumerically("~", 1/y.Float(), tol))
			Expect(q.Partial(1)).To(BeNumerically("~", -x.Float()/(y.Float()*y.Float()), tol))
		})

		DescribeTable("scalar operands contribute no derivative",
			func(f func(autodiff.Value) autodiff.Value, value float64, dx float64) {
				r := f(x)
				Expect(r.Float()).To(BeNumerically("~", value, tol))
				Expect(r.Partial(0)).To(BeNumerically("~", dx, tol))
				Expect(r.Partial(1)).To(Equal(0.0))
			},
			Entry("v + c", func(v autodiff.Value) autodiff.Value { return v.AddConst(2) }, 5.0, 1.0),
			Entry("c + v", func(v autodiff.Value) autodiff.Value { return autodiff.ConstAdd(2, v) }, 5.0, 1.0),
			Entry("v - c", func(v autodiff.Value) autodiff.Value { return v.SubConst(2) }, 1.0, 1.0),
			Entry("c - v", func(v autodiff.Value) autodiff.Value { return autodiff.ConstSub(2, v) }, -1.0, -1.0),
			Entry("v * c", func(v autodiff.Value) autodiff.Value { return v.MulConst(4) }, 12.0, 4.0),
			Entry("c * v", func(v autodiff.Value) autodiff.Value { return autodiff.ConstMul(4, v) }, 12.0, 4.0),
			Entry("v / c", func(v autodiff.Value) autodiff.Value { return v.DivConst(4) }, 0.75, 0.25),
			Entry("c / v", func(v autodiff.Value) autodiff.Value { return autodiff.ConstDiv(6, v) }, 2.0, -6.0/9.0),
		)

		It("negates value and derivative", func() {
			n := x.Add(y.MulConst(2)).Neg()
			Expect(n.Float()).To(Equal(0.0))
			Expect(n.Derivative()).To(Equal([]float64{-1, -2}))
		})

		It("leaves operands untouched", func() {
			_ = x.Mul(y).Add(x).Neg()
			Expect(x.Derivative()).To(Equal([]float64{1, 0}))
			Expect(y.Derivative()).To(Equal([]float64{0, 1}))
		})
	})

	Describe("compound assignment", func() {
		It("matches the binary operators for Value operands", func() {
			v := x
			v.MulAssign(y)
			Expect(v.Float()).To(Equal(x.Mul(y).Float()))
			Expect(v.Derivative()).To(Equal(x.Mul(y).Derivative()))

			w := x
			w.DivAssign(y)
			Expect(w.Partial(1)).To(BeNumerically("~", x.Div(y).Partial(1), tol))

			s := x
			s.AddAssign(y)
			s.SubAssign(y)
			s.SubAssign(y)
			Expect(s.Derivative()).To(Equal([]float64{1, -1}))
		})

		It("does not leak into values sharing a derivative", func() {
			shifted := x.AddConst(1)
			shifted.AddAssign(y)
			Expect(x.Derivative()).To(Equal([]float64{1, 0}))
		})

		It("updates only the value for scalar operands", func() {
			v := x.Mul(y)
			before := v.Derivative()

			v.AddConstAssign(10)
			v.SubConstAssign(1)
			v.MulConstAssign(3)
			v.DivConstAssign(2)

			Expect(v.Float()).To(Equal((-4.5 + 10 - 1) * 3 / 2))
			Expect(v.Derivative()).To(Equal(before))
		})
	})

	Describe("comparison", func() {
		It("compares values only", func() {
			a := autodiff.Seed(0, 2, 5)
			b := autodiff.Constant(2, 5)
			Expect(a.Equal(b)).To(BeTrue())
			Expect(a.NotEqual(b)).To(BeFalse())
			Expect(a.Less(b)).To(BeFalse())
			Expect(a.LessEq(b)).To(BeTrue())
			Expect(a.GreaterEq(b)).To(BeTrue())
			Expect(x.Greater(y)).To(BeTrue())
		})

		It("compares against scalars", func() {
			Expect(x.LessConst(4)).To(BeTrue())
			Expect(x.LessEqConst(3)).To(BeTrue())
			Expect(x.GreaterConst(3)).To(BeFalse())
			Expect(x.GreaterEqConst(3)).To(BeTrue())
			Expect(x.EqualConst(3)).To(BeTrue())
			Expect(x.NotEqualConst(math.Pi)).To(BeTrue())
		})
	})
})
