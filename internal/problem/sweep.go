package problem

import (
	"fmt"
	"slices"

	"github.com/san-kum/fwdiff/internal/autodiff"
	"github.com/san-kum/fwdiff/internal/ndarray"
)

// Sweep evaluates p on the outer product of ranges, one axis per label, and
// returns the full dual results in an array of shape len(ranges[i]). The
// problem keeps its starting point.
func Sweep(p *Problem, labels []string, ranges [][]float64) (*ndarray.Array[autodiff.Value], error) {
	if len(labels) != len(ranges) {
		return nil, fmt.Errorf("got %d labels and %d ranges", len(labels), len(ranges))
	}

	all := p.Labels()
	slots := make([]int, len(labels))
	dims := make([]int, len(labels))
	for i, label := range labels {
		k := slices.Index(all, label)
		if k < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, label)
		}
		slots[i] = k
		dims[i] = len(ranges[i])
	}

	saved := p.Point()
	defer p.SetPoint(saved)

	out := ndarray.New(autodiff.Value{}, dims...)
	x := append([]float64(nil), saved...)
	idx := make([]int, len(dims))

	for n := 0; n < out.Len(); n++ {
		for i, k := range slots {
			x[k] = ranges[i][idx[i]]
		}
		if err := p.SetPoint(x); err != nil {
			return nil, err
		}
		v, err := p.Evaluate()
		if err != nil {
			return nil, err
		}
		out.Set(v, idx...)

		// row-major increment
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < dims[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out, nil
}
