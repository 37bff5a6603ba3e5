package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/fwdiff/internal/optim"
)

var ErrNoTrace = errors.New("storage: run has no trace")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Objective  string             `json:"objective"`
	Method     string             `json:"method"`
	Timestamp  time.Time          `json:"timestamp"`
	Width      int                `json:"width"`
	Labels     []string           `json:"labels"`
	Fixed      []string           `json:"fixed"`
	Params     map[string]float64 `json:"params"`
	Loss       float64            `json:"loss"`
	GradNorm   float64            `json:"grad_norm"`
	Iterations int                `json:"iterations"`
	Converged  bool               `json:"converged"`
}

// Run identifies what was optimised, alongside the optimizer result.
type Run struct {
	Objective string
	Method    string
	Labels    []string
	Fixed     []string
}

func (s *Store) Save(run Run, result *optim.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", run.Objective, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	params := make(map[string]float64, len(run.Labels))
	for i, label := range run.Labels {
		if i < len(result.Point) {
			params[label] = result.Point[i]
		}
	}

	meta := RunMetadata{
		ID:         runID,
		Objective:  run.Objective,
		Method:     run.Method,
		Timestamp:  ts,
		Width:      len(run.Labels),
		Labels:     run.Labels,
		Fixed:      run.Fixed,
		Params:     params,
		Loss:       result.Loss,
		GradNorm:   result.GradNorm,
		Iterations: result.Iterations,
		Converged:  result.Converged,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "trace.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	header := []string{"iter", "loss", "grad_norm", "step"}
	for i := range run.Labels {
		header = append(header, fmt.Sprintf("p%d", i))
	}
	for i := range run.Labels {
		header = append(header, fmt.Sprintf("g%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for _, st := range result.Trace {
		row := []string{strconv.Itoa(st.Iter), format(st.Loss), format(st.GradNorm), format(st.StepSize)}
		for _, v := range st.Point {
			row = append(row, format(v))
		}
		for _, v := range st.Grad {
			row = append(row, format(v))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrace reads the iteration trace of a run. Width is taken from the
// run metadata.
func (s *Store) LoadTrace(runID string) ([]optim.Step, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	csvPath := filepath.Join(s.baseDir, runID, "trace.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrNoTrace, runID)
	}

	n := meta.Width
	steps := make([]optim.Step, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 4+2*n {
			return nil, fmt.Errorf("trace %s: row has %d fields, want %d", runID, len(record), 4+2*n)
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trace %s: %w", runID, err)
			}
			vals[j] = v
		}

		steps = append(steps, optim.Step{
			Iter:     int(vals[0]),
			Loss:     vals[1],
			GradNorm: vals[2],
			StepSize: vals[3],
			Point:    vals[4 : 4+n],
			Grad:     vals[4+n:],
		})
	}

	return steps, nil
}
