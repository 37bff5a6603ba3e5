package problem

import (
	"fmt"
	"sort"

	"github.com/san-kum/fwdiff/internal/models"
)

type Registry struct {
	objectives map[string]func() models.Objective
}

func NewRegistry() *Registry {
	r := &Registry{
		objectives: make(map[string]func() models.Objective),
	}

	r.objectives["rosenbrock"] = func() models.Objective { return models.NewRosenbrock() }
	r.objectives["decay_fit"] = func() models.Objective { return models.NewDecayFit() }
	r.objectives["spring_fit"] = func() models.Objective { return models.NewSpringFit() }
	r.objectives["hinge"] = func() models.Objective { return models.NewHinge() }

	return r
}

func (r *Registry) Register(name string, fn func() models.Objective) {
	r.objectives[name] = fn
}

func (r *Registry) Get(name string) (models.Objective, error) {
	fn, ok := r.objectives[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective: %s", name)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.objectives))
	for name := range r.objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
