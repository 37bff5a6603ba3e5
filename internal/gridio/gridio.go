// Package gridio reads and writes gridded float64 data as YAML documents.
//
// It never sees derivatives: differentiable grids are written through
// Value.Float only.
package gridio

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fwdiff/internal/autodiff"
	"github.com/san-kum/fwdiff/internal/ndarray"
)

var ErrShape = errors.New("gridio: data length does not match dims")

type Grid struct {
	Name  string            `yaml:"name"`
	Dims  []int             `yaml:"dims"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
	Data  []float64         `yaml:"data,flow"`
}

func FromArray(name string, a *ndarray.Array[float64]) Grid {
	data := make([]float64, a.Len())
	copy(data, a.Raw())
	return Grid{Name: name, Dims: a.Dims(), Data: data}
}

// FromValues extracts the values of a differentiable grid.
func FromValues(name string, a *ndarray.Array[autodiff.Value]) Grid {
	return FromArray(name, ndarray.Convert(a, autodiff.Value.Float))
}

func (g Grid) Validate() error {
	n := 1
	for _, d := range g.Dims {
		n *= d
	}
	if n != len(g.Data) {
		return fmt.Errorf("%w: %q has %d values for dims %v", ErrShape, g.Name, len(g.Data), g.Dims)
	}
	return nil
}

// Array returns the grid data as an array. The data is not copied.
func (g Grid) Array() (*ndarray.Array[float64], error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return ndarray.FromSlice(g.Data, g.Dims...)
}

func Write(path string, g Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Read(path string) (Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grid{}, err
	}
	var g Grid
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Grid{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}
