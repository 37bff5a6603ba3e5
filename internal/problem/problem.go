// Package problem binds an objective to concrete parameter blocks: free
// parameters share one derivative space, fixed ones are constants.
package problem

import (
	"errors"
	"fmt"

	"github.com/san-kum/fwdiff/internal/autodiff"
	"github.com/san-kum/fwdiff/internal/models"
)

var (
	ErrUnknownParam = errors.New("problem: unknown parameter")
	ErrParamLength  = errors.New("problem: parameter length mismatch")
	ErrPointLength  = errors.New("problem: point length does not match width")
)

// Override replaces the default of one parameter. A nil Fixed keeps the
// objective's choice.
type Override struct {
	Initial []float64
	Fixed   *bool
}

type Problem struct {
	objective models.Objective
	space     *autodiff.Space
	inputs    models.Inputs
	free      []*autodiff.Block
	freeNames []string
	fixed     []string
}

// New allocates the parameter blocks of obj. Free parameters are laid out
// consecutively in declaration order.
func New(obj models.Objective, overrides map[string]Override) (*Problem, error) {
	specs := obj.Params()
	known := make(map[string]bool, len(specs))
	for _, s := range specs {
		known[s.Name] = true
	}
	for name := range overrides {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s (objective %s)", ErrUnknownParam, name, obj.Name())
		}
	}

	type slot struct {
		spec  models.ParamSpec
		vals  []float64
		fixed bool
	}
	slots := make([]slot, len(specs))
	width := 0
	for i, s := range specs {
		sl := slot{spec: s, vals: s.Default, fixed: s.Fixed}
		if o, ok := overrides[s.Name]; ok {
			if o.Initial != nil {
				if len(o.Initial) != s.Len() {
					return nil, fmt.Errorf("%w: %s wants %d values, got %d", ErrParamLength, s.Name, s.Len(), len(o.Initial))
				}
				sl.vals = o.Initial
			}
			if o.Fixed != nil {
				sl.fixed = *o.Fixed
			}
		}
		if !sl.fixed {
			width += s.Len()
		}
		slots[i] = sl
	}

	p := &Problem{
		objective: obj,
		space:     autodiff.NewSpace(width),
		inputs:    make(models.Inputs, len(specs)),
	}
	for _, sl := range slots {
		var b *autodiff.Block
		if sl.fixed {
			b = p.space.NewFixedBlock(sl.spec.Len(), 0)
			p.fixed = append(p.fixed, sl.spec.Name)
		} else {
			var err error
			b, err = p.space.Allocate(sl.spec.Len(), 0)
			if err != nil {
				return nil, err
			}
			p.free = append(p.free, b)
			p.freeNames = append(p.freeNames, sl.spec.Name)
		}
		b.Assign(sl.vals)
		p.inputs[sl.spec.Name] = b
	}
	return p, nil
}

func (p *Problem) Objective() models.Objective { return p.objective }
func (p *Problem) Width() int                  { return p.space.Width() }
func (p *Problem) Inputs() models.Inputs       { return p.inputs }

// FixedNames lists the parameters held constant.
func (p *Problem) FixedNames() []string { return append([]string(nil), p.fixed...) }

// Labels names every slot of the derivative vector, e.g. "xy[1]".
func (p *Problem) Labels() []string {
	labels := make([]string, 0, p.Width())
	for i, b := range p.free {
		if b.Len() == 1 {
			labels = append(labels, p.freeNames[i])
			continue
		}
		for k := 0; k < b.Len(); k++ {
			labels = append(labels, fmt.Sprintf("%s[%d]", p.freeNames[i], k))
		}
	}
	return labels
}

// Evaluate runs the objective at the current point.
func (p *Problem) Evaluate() (autodiff.Value, error) {
	v := p.objective.Evaluate(p.inputs)
	if err := p.space.Check(v); err != nil {
		return autodiff.Value{}, fmt.Errorf("objective %s: %w", p.objective.Name(), err)
	}
	return v, nil
}

// Point returns the free parameters in derivative order.
func (p *Problem) Point() []float64 {
	x := make([]float64, 0, p.Width())
	for _, b := range p.free {
		x = append(x, b.Values()...)
	}
	return x
}

// SetPoint bulk-assigns the free parameters; block offsets are unchanged.
func (p *Problem) SetPoint(x []float64) error {
	if len(x) != p.Width() {
		return fmt.Errorf("%w: got %d, width %d", ErrPointLength, len(x), p.Width())
	}
	off := 0
	for _, b := range p.free {
		b.Assign(x[off : off+b.Len()])
		off += b.Len()
	}
	return nil
}

// SetParam assigns one named block, free or fixed.
func (p *Problem) SetParam(name string, vals []float64) error {
	b, ok := p.inputs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	if len(vals) != b.Len() {
		return fmt.Errorf("%w: %s wants %d values, got %d", ErrParamLength, name, b.Len(), len(vals))
	}
	b.Assign(vals)
	return nil
}

// LossAt evaluates the value only at x, restoring the current point after.
func (p *Problem) LossAt(x []float64) (float64, error) {
	saved := p.Point()
	defer p.SetPoint(saved)

	if err := p.SetPoint(x); err != nil {
		return 0, err
	}
	v, err := p.Evaluate()
	if err != nil {
		return 0, err
	}
	return v.Float(), nil
}
