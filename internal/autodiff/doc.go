// Package autodiff provides forward-mode automatic differentiation over
// float64 dual numbers with a dense derivative vector.
//
// The package defines two cooperating types:
//
//   - [Value]: a scalar carrying its value and the partial derivatives of
//     that value with respect to every tracked independent variable
//   - [Block]: a contiguous group of independent variables owning raw
//     float64 storage; indexing it manufactures seeded [Value]s
//
// A computation agrees on a global derivative width N. Each differentiable
// [Block] owns the slots [offset, offset+len) of that width; a block whose
// offset is at or beyond N is fixed and yields constants, so fixed and free
// parameters mix in one expression without branching.
//
// # Example
//
//	space := autodiff.NewSpace(2)
//	xy := space.NewBlock(0, 2, 0)
//	xy.Assign([]float64{3, 4})
//	x, y := xy.Index(0), xy.Index(1)
//	f := autodiff.Log(x.Mul(y)).AddConst(1)
//	fmt.Println(f.Float(), f.Derivative()) // 3.4849 [0.3333 0.25]
//
// # Thread Safety
//
// Values are plain values. A Block must not be assigned to while another
// goroutine indexes it; the package does no locking.
package autodiff
