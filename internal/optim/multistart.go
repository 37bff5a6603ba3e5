package optim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/san-kum/fwdiff/internal/problem"
)

// MultiStart runs gradient descent from several perturbed starting points
// concurrently. Each run gets its own problem from Build, since a problem's
// blocks are not safe to share between goroutines.
type MultiStart struct {
	Build     func() (*problem.Problem, error)
	GD        *GradientDescent
	NumRuns   int
	SeedStart int64
	Spread    float64
}

func (m *MultiStart) validate() error {
	if m.NumRuns <= 0 {
		return fmt.Errorf("number of runs must be positive, got %d", m.NumRuns)
	}
	if m.Build == nil {
		return fmt.Errorf("multistart needs a problem builder")
	}
	if m.GD == nil {
		return fmt.Errorf("multistart needs a gradient descent")
	}
	return m.GD.validate()
}

// Run returns every result in seed order and the index of the best one.
// The first run starts at the unperturbed point. Diverged runs keep their
// partial result but are never chosen as best.
func (m *MultiStart) Run(ctx context.Context) ([]*Result, int, error) {
	if err := m.validate(); err != nil {
		return nil, -1, err
	}

	results := make([]*Result, m.NumRuns)
	errs := make([]error, m.NumRuns)

	var wg sync.WaitGroup
	for i := 0; i < m.NumRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			p, err := m.Build()
			if err != nil {
				errs[idx] = err
				return
			}
			if idx > 0 {
				rng := rand.New(rand.NewSource(m.SeedStart + int64(idx)))
				x := p.Point()
				for k := range x {
					x[k] += m.Spread * (2*rng.Float64() - 1)
				}
				if err := p.SetPoint(x); err != nil {
					errs[idx] = err
					return
				}
			}

			gd := *m.GD
			gd.Logger = m.GD.logger().With("start", idx)
			results[idx], errs[idx] = gd.Run(ctx, p, nil)
		}(i)
	}

	wg.Wait()

	best := -1
	for i, err := range errs {
		if errors.Is(err, ErrDiverged) {
			continue
		}
		if err != nil {
			return nil, -1, err
		}
		if best < 0 || results[i].Loss < results[best].Loss {
			best = i
		}
	}
	if best < 0 {
		return results, -1, ErrDiverged
	}
	return results, best, nil
}
