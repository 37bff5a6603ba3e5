package autodiff_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fwdiff/internal/autodiff"
)

var _ = Describe("Block", func() {
	It("seeds the global index offset+i", func() {
		b := autodiff.NewBlock(0, 3, 3, 0)
		Expect(b.Index(1).Derivative()).To(Equal([]float64{0, 1, 0}))

		shifted := autodiff.NewBlock(2, 5, 2, 1.5)
		v := shifted.Index(1)
		Expect(v.Float()).To(Equal(1.5))
		Expect(v.Derivative()).To(Equal([]float64{0, 0, 0, 1, 0}))
	})

	It("yields constants when offset is at or past the width", func() {
		for _, offset := range []int{3, 4, 100} {
			b := autodiff.NewBlock(offset, 3, 2, 1)
			Expect(b.Differentiable()).To(BeFalse())
			b.Assign([]float64{7, -2})
			b.Values()[0] = 11
			for _, v := range b.Duals() {
				Expect(v.Derivative()).To(Equal([]float64{0, 0, 0}))
			}
			Expect(b.Index(0).Float()).To(Equal(11.0))
		}
	})

	It("covers the whole width with NewFullBlock", func() {
		b := autodiff.NewFullBlock(2, 4)
		Expect(b.Len()).To(Equal(2))
		Expect(b.Offset()).To(Equal(0))
		Expect(b.Index(0).Add(b.Index(1)).Derivative()).To(Equal([]float64{1, 1}))
	})

	It("bounds-checks At", func() {
		b := autodiff.NewBlock(0, 3, 3, 0)
		_, err := b.At(3)
		Expect(err).To(MatchError(autodiff.ErrIndexOutOfRange))
		var ie *autodiff.IndexError
		Expect(err).To(BeAssignableToTypeOf(ie))

		_, err = b.At(-1)
		Expect(err).To(HaveOccurred())

		v, err := b.At(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Derivative()).To(Equal([]float64{0, 0, 1}))
	})

	It("keeps its slots across Assign", func() {
		b := autodiff.NewBlock(1, 4, 2, 0)
		b.Assign([]float64{3, 9})
		Expect(b.Offset()).To(Equal(1))
		Expect(b.Width()).To(Equal(4))
		Expect(b.Index(1).Float()).To(Equal(9.0))
		Expect(b.Index(1).Derivative()).To(Equal([]float64{0, 0, 1, 0}))
	})

	It("copies on Assign", func() {
		src := []float64{1, 2}
		b := autodiff.NewBlock(0, 2, 2, 0)
		b.Assign(src)
		src[0] = 100
		Expect(b.Index(0).Float()).To(Equal(1.0))
	})
})

var _ = Describe("Space", func() {
	It("allocates consecutive blocks until the width is used", func() {
		s := autodiff.NewSpace(5)
		a, err := s.Allocate(2, 0)
		Expect(err).NotTo(HaveOccurred())
		b, err := s.Allocate(3, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Offset()).To(Equal(0))
		Expect(b.Offset()).To(Equal(2))
		Expect(s.Free()).To(Equal(0))

		_, err = s.Allocate(1, 0)
		Expect(err).To(MatchError(autodiff.ErrWidthExhausted))
	})

	It("builds fixed blocks and constants of its width", func() {
		s := autodiff.NewSpace(2)
		f := s.NewFixedBlock(3, 1)
		Expect(f.Differentiable()).To(BeFalse())
		Expect(s.Check(f.Index(2), s.Constant(4), s.Seed(1, 0))).To(Succeed())
	})

	It("reports the first value of a foreign width", func() {
		s := autodiff.NewSpace(2)
		err := s.Check(s.Seed(0, 1), autodiff.Constant(3, 1))
		Expect(err).To(MatchError(autodiff.ErrWidthMismatch))
		var we *autodiff.WidthError
		Expect(err).To(BeAssignableToTypeOf(we))
		Expect(err.(*autodiff.WidthError).Position).To(Equal(1))
	})

	It("panics in strict mode only", func() {
		foreign := autodiff.Constant(3, 1)
		Expect(func() { autodiff.NewSpace(2).MustCheck(foreign) }).NotTo(Panic())
		Expect(func() { autodiff.NewStrictSpace(2).MustCheck(foreign) }).To(Panic())
		Expect(func() { autodiff.NewStrictSpace(2).Seed(2, 0) }).To(Panic())
		Expect(func() { autodiff.NewStrictSpace(2).NewBlock(1, 2, 0) }).To(Panic())
	})

	It("rejects a negative block offset in strict mode", func() {
		Expect(func() { autodiff.NewStrictSpace(2).NewBlock(-1, 1, 0) }).To(PanicWith(BeAssignableToTypeOf(&autodiff.IndexError{})))
		Expect(func() { autodiff.NewSpace(2).NewBlock(-1, 1, 0) }).NotTo(Panic())
	})
})
