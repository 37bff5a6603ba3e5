package problem

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fwdiff/internal/models"
)

func TestNewLayout(t *testing.T) {
	p, err := New(models.NewDecayFit(), nil)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if p.Width() != 2 {
		t.Errorf("expected width 2, got %d", p.Width())
	}

	in := p.Inputs()
	if in["amplitude"].Offset() != 0 || in["rate"].Offset() != 1 {
		t.Errorf("expected consecutive offsets, got %d and %d", in["amplitude"].Offset(), in["rate"].Offset())
	}
	if in["times"].Differentiable() {
		t.Error("expected times to be fixed")
	}

	labels := p.Labels()
	if len(labels) != 2 || labels[0] != "amplitude" || labels[1] != "rate" {
		t.Errorf("unexpected labels %v", labels)
	}
	if len(p.FixedNames()) != 2 {
		t.Errorf("expected 2 fixed params, got %v", p.FixedNames())
	}
}

func TestOverrides(t *testing.T) {
	fixed := true
	free := false

	p, err := New(models.NewRosenbrock(), map[string]Override{
		"xy":    {Initial: []float64{0.5, 0.25}},
		"coeff": {Fixed: &free},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if p.Width() != 4 {
		t.Fatalf("expected freed coefficients to widen to 4, got %d", p.Width())
	}
	labels := p.Labels()
	if labels[2] != "coeff[0]" {
		t.Errorf("unexpected labels %v", labels)
	}

	v, err := p.Evaluate()
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	// df/da = 2 (a - x)
	if math.Abs(v.Partial(2)-1) > 1e-12 {
		t.Errorf("expected df/da 1, got %f", v.Partial(2))
	}

	p, err = New(models.NewRosenbrock(), map[string]Override{"xy": {Fixed: &fixed}})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if p.Width() != 0 {
		t.Errorf("expected width 0, got %d", p.Width())
	}
	v, err = p.Evaluate()
	if err != nil || v.Len() != 0 {
		t.Errorf("expected a width-0 constant, got %v (%v)", v, err)
	}
}

func TestOverrideErrors(t *testing.T) {
	_, err := New(models.NewRosenbrock(), map[string]Override{"nope": {}})
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected unknown param, got %v", err)
	}

	_, err = New(models.NewRosenbrock(), map[string]Override{"xy": {Initial: []float64{1}}})
	if !errors.Is(err, ErrParamLength) {
		t.Errorf("expected length mismatch, got %v", err)
	}
}

func TestPointRoundTrip(t *testing.T) {
	p, err := New(models.NewRosenbrock(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SetPoint([]float64{1, 1}); err != nil {
		t.Fatalf("set point failed: %v", err)
	}
	x := p.Point()
	if x[0] != 1 || x[1] != 1 {
		t.Errorf("expected [1 1], got %v", x)
	}
	if p.Inputs()["xy"].Offset() != 0 {
		t.Error("offset changed by SetPoint")
	}

	if err := p.SetPoint([]float64{1}); !errors.Is(err, ErrPointLength) {
		t.Errorf("expected point length error, got %v", err)
	}

	loss, err := p.LossAt([]float64{-1.2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(loss-24.2) > 1e-9 {
		t.Errorf("expected 24.2, got %f", loss)
	}
	if x := p.Point(); x[0] != 1 {
		t.Errorf("LossAt must restore the point, got %v", x)
	}

	if err := p.SetParam("coeff", []float64{1, 10}); err != nil {
		t.Fatal(err)
	}
	if err := p.SetParam("coeff", []float64{1}); !errors.Is(err, ErrParamLength) {
		t.Errorf("expected length error, got %v", err)
	}
	if err := p.SetParam("nope", nil); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected unknown param, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.List()
	if len(names) != 4 {
		t.Errorf("expected 4 objectives, got %v", names)
	}

	for _, name := range names {
		obj, err := r.Get(name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if obj.Name() != name {
			t.Errorf("registered %s returns name %s", name, obj.Name())
		}
		p, err := New(obj, nil)
		if err != nil {
			t.Fatalf("problem %s: %v", name, err)
		}
		if _, err := p.Evaluate(); err != nil {
			t.Errorf("evaluate %s: %v", name, err)
		}
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown objective")
	}
}
