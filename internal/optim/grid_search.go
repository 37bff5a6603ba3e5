package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/fwdiff/internal/problem"
)

// GridSearch evaluates every combination of candidate values for the named
// slots of a problem's point. Only values are computed.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search returns the best slot values and loss. The problem keeps its
// starting point.
func (g *GridSearch) Search(ctx context.Context, p *problem.Problem) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("got %d params and %d ranges", len(g.paramNames), len(g.ranges))
	}

	index := make(map[string]int)
	for i, label := range p.Labels() {
		index[label] = i
	}
	slots := make([]int, len(g.paramNames))
	for i, name := range g.paramNames {
		k, ok := index[name]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", problem.ErrUnknownParam, name)
		}
		slots[i] = k
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, p, 0, slots, p.Point(), &best, &bestParams); err != nil {
		return bestParams, best, err
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	p *problem.Problem,
	depth int,
	slots []int,
	current []float64,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		val, err := p.LossAt(current)
		if err != nil {
			return err
		}

		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for i, name := range g.paramNames {
				(*bestParams)[name] = current[slots[i]]
			}
		}
		return nil
	}

	for _, val := range g.ranges[depth] {
		next := append([]float64(nil), current...)
		next[slots[depth]] = val

		if err := g.searchRecursive(ctx, p, depth+1, slots, next, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
