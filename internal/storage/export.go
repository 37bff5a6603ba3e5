package storage

import (
	"strconv"

	"github.com/san-kum/fwdiff/internal/gridio"
	"github.com/san-kum/fwdiff/internal/ndarray"
)

// ExportGrid writes a run's parameter trajectory as an iterations × width
// grid.
func (s *Store) ExportGrid(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	steps, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	arr := ndarray.New(0.0, len(steps), meta.Width)
	for i, st := range steps {
		for k, v := range st.Point {
			arr.Set(v, i, k)
		}
	}

	g := gridio.FromArray(meta.Objective+"_params", arr)
	g.Attrs = map[string]string{
		"run":    meta.ID,
		"method": meta.Method,
	}
	for k, label := range meta.Labels {
		g.Attrs["column_"+strconv.Itoa(k)] = label
	}
	return gridio.Write(path, g)
}
