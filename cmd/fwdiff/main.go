package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fwdiff/internal/config"
	"github.com/san-kum/fwdiff/internal/gradcheck"
	"github.com/san-kum/fwdiff/internal/gridio"
	"github.com/san-kum/fwdiff/internal/optim"
	"github.com/san-kum/fwdiff/internal/problem"
	"github.com/san-kum/fwdiff/internal/storage"
	"github.com/san-kum/fwdiff/internal/tui"
	"github.com/san-kum/fwdiff/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	paramFlags []string

	method       string
	learningRate float64
	maxIter      int
	tolerance    float64
	noBacktrack  bool
	gridFlags    []string
	live         bool
	starts       int
	seed         int64
	spread       float64

	checkStep float64
	checkTol  float64

	sweepOut  string
	exportOut string
	configOut string
	sweepN    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fwdiff",
		Short:         "forward-mode automatic differentiation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fwdiff", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	problemFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
		cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "initial values, name=v1,v2,...")
	}

	evalCmd := &cobra.Command{
		Use:   "eval [objective]",
		Short: "evaluate an objective and its gradient",
		Args:  cobra.MaximumNArgs(1),
		RunE:  evalObjective,
	}
	problemFlags(evalCmd)

	checkCmd := &cobra.Command{
		Use:   "check [objective]",
		Short: "compare the gradient with finite differences",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkObjective,
	}
	problemFlags(checkCmd)
	checkCmd.Flags().Float64Var(&checkStep, "step", config.DefaultCheckStep, "finite difference step")
	checkCmd.Flags().Float64Var(&checkTol, "tol", config.DefaultCheckTol, "relative error tolerance")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [objective]",
		Short: "minimise an objective and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  optimizeObjective,
	}
	problemFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&method, "method", "gd", "gd or grid")
	optimizeCmd.Flags().Float64Var(&learningRate, "lr", config.DefaultLearningRate, "learning rate")
	optimizeCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "maximum iterations")
	optimizeCmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "gradient norm tolerance")
	optimizeCmd.Flags().BoolVar(&noBacktrack, "no-backtrack", false, "fixed step size")
	optimizeCmd.Flags().StringArrayVar(&gridFlags, "grid", nil, "grid axis, label=min:max:n (method grid)")
	optimizeCmd.Flags().BoolVar(&live, "live", false, "live terminal view")
	optimizeCmd.Flags().IntVar(&starts, "starts", 1, "concurrent gradient descent runs from perturbed points")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 1, "seed for perturbed starts")
	optimizeCmd.Flags().Float64Var(&spread, "spread", 0.5, "perturbation half-width for extra starts")

	sweepCmd := &cobra.Command{
		Use:   "sweep [objective] [label] [label]",
		Short: "write the loss over one or two parameters as a grid file",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  sweepObjective,
	}
	problemFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&gridFlags, "grid", nil, "axis range, label=min:max:n")
	sweepCmd.Flags().IntVar(&sweepN, "n", 21, "points per axis without --grid")
	sweepCmd.Flags().StringVarP(&sweepOut, "out", "o", "sweep.yaml", "output file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the loss of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export the parameter trajectory of a run as a grid file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <run_id>.yaml)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "show a grid file",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectGrid,
	}

	objectivesCmd := &cobra.Command{
		Use:   "objectives",
		Short: "list objectives and their parameters",
		RunE:  listObjectives,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [objective]",
		Short: "list available presets for an objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for objective: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [objective]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	problemFlags(configCmd)
	configCmd.Flags().StringVarP(&configOut, "out", "o", "fwdiff.yaml", "output file")

	rootCmd.AddCommand(evalCmd, checkCmd, optimizeCmd, sweepCmd, listCmd, plotCmd, exportCmd, inspectCmd, objectivesCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, a preset, a config file and flags in that
// order. Flags only apply when set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Objective = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Objective, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Objective))
		}
		if configFile == "" {
			cfg = p
		} else {
			for name, pc := range p.Params {
				if _, ok := cfg.Params[name]; !ok {
					if cfg.Params == nil {
						cfg.Params = make(map[string]config.ParamConfig)
					}
					cfg.Params[name] = pc
				}
			}
		}
	}

	for _, raw := range paramFlags {
		name, vals, err := parseParam(raw)
		if err != nil {
			return nil, err
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]config.ParamConfig)
		}
		pc := cfg.Params[name]
		pc.Initial = vals
		cfg.Params[name] = pc
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Optimizer.Method = method
	}
	if flags.Changed("lr") {
		cfg.Optimizer.LearningRate = learningRate
	}
	if flags.Changed("max-iter") {
		cfg.Optimizer.MaxIter = maxIter
	}
	if flags.Changed("tol") {
		if cmd.Name() == "check" {
			cfg.Check.Tolerance = checkTol
		} else {
			cfg.Optimizer.Tolerance = tolerance
		}
	}
	if flags.Changed("no-backtrack") {
		cfg.Optimizer.Backtracking = !noBacktrack
	}
	if flags.Changed("step") {
		cfg.Check.Step = checkStep
	}

	slog.Debug("config", "objective", cfg.Objective, "method", cfg.Optimizer.Method, "params", len(cfg.Params))
	return cfg, nil
}

func parseParam(raw string) (string, []float64, error) {
	name, list, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid param %q, want name=v1,v2", raw)
	}
	fields := strings.Split(list, ",")
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("param %s: %w", name, err)
		}
		vals[i] = v
	}
	return name, vals, nil
}

// parseAxis parses label=min:max:n into n evenly spaced values.
func parseAxis(raw string) (string, []float64, error) {
	label, spec, ok := strings.Cut(raw, "=")
	if !ok || label == "" {
		return "", nil, fmt.Errorf("invalid grid axis %q, want label=min:max:n", raw)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid grid axis %q, want label=min:max:n", raw)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid axis %s: %w", label, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid axis %s: %w", label, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid axis %s: invalid point count %q", label, parts[2])
	}
	return label, axis(lo, hi, n), nil
}

func axis(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return vals
}

func buildProblem(cfg *config.Config) (*problem.Problem, error) {
	obj, err := problem.NewRegistry().Get(cfg.Objective)
	if err != nil {
		return nil, err
	}
	return problem.New(obj, cfg.Overrides())
}

func evalObjective(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := buildProblem(cfg)
	if err != nil {
		return err
	}

	v, err := p.Evaluate()
	if err != nil {
		return err
	}

	fmt.Println(viz.Gradient(cfg.Objective, p.Labels(), p.Point(), v))
	if fixed := p.FixedNames(); len(fixed) > 0 {
		fmt.Println(viz.Subtle.Render("fixed: " + strings.Join(fixed, ", ")))
	}
	return nil
}

func checkObjective(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := buildProblem(cfg)
	if err != nil {
		return err
	}

	s := cfg.CheckSettings()
	report, err := gradcheck.Check(p, s)
	if report != nil {
		fmt.Println(viz.Check(cfg.Objective, report, s.Tolerance))
	}
	return err
}

func optimizeObjective(cmd *cobra.Command, args []string) error {
	if err := checkOptimizeFlags(); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := buildProblem(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var result *optim.Result
	switch cfg.Optimizer.Method {
	case "gd":
		gd := cfg.GradientDescent()
		gd.Logger = slog.Default()
		switch {
		case starts > 1:
			result, err = multiStart(ctx, cfg, gd)
		case live:
			result, err = tui.Run(ctx, gd, p)
		default:
			result, err = gd.Run(ctx, p, nil)
		}
	case "grid":
		result, err = gridSearch(ctx, p)
	default:
		return fmt.Errorf("unknown method: %s (available: gd, grid)", cfg.Optimizer.Method)
	}
	if result == nil {
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("run stopped", "err", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, saveErr := st.Save(storage.Run{
		Objective: cfg.Objective,
		Method:    cfg.Optimizer.Method,
		Labels:    p.Labels(),
		Fixed:     p.FixedNames(),
	}, result)
	if saveErr != nil {
		return saveErr
	}

	status := viz.StatusOK.Render("converged")
	switch {
	case result.Stalled:
		status = viz.StatusRunning.Render("stalled")
	case !result.Converged:
		status = viz.StatusRunning.Render("not converged")
	}
	fmt.Printf("run %s  %s\n", runID, status)
	fmt.Printf("  loss       %.10g\n", result.Loss)
	fmt.Printf("  grad norm  %.3e\n", result.GradNorm)
	fmt.Printf("  iterations %d\n", result.Iterations)
	for i, label := range p.Labels() {
		fmt.Printf("  %-10s %.8g\n", label, result.Point[i])
	}
	return err
}

func checkOptimizeFlags() error {
	if live && starts > 1 {
		return fmt.Errorf("--live shows a single run and cannot be combined with --starts %d", starts)
	}
	if starts < 1 {
		return fmt.Errorf("--starts must be at least 1, got %d", starts)
	}
	return nil
}

func multiStart(ctx context.Context, cfg *config.Config, gd *optim.GradientDescent) (*optim.Result, error) {
	ms := &optim.MultiStart{
		Build:     func() (*problem.Problem, error) { return buildProblem(cfg) },
		GD:        gd,
		NumRuns:   starts,
		SeedStart: seed,
		Spread:    spread,
	}
	results, best, err := ms.Run(ctx)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		slog.Info("start finished", "start", i, "loss", r.Loss, "iterations", r.Iterations, "converged", r.Converged)
	}
	return results[best], nil
}

// gridSearch runs optim.GridSearch over the --grid axes and evaluates the
// gradient at the best point.
func gridSearch(ctx context.Context, p *problem.Problem) (*optim.Result, error) {
	if len(gridFlags) == 0 {
		return nil, fmt.Errorf("method grid needs at least one --grid axis")
	}
	labels := make([]string, len(gridFlags))
	ranges := make([][]float64, len(gridFlags))
	for i, raw := range gridFlags {
		label, vals, err := parseAxis(raw)
		if err != nil {
			return nil, err
		}
		labels[i], ranges[i] = label, vals
	}

	best, _, err := optim.NewGridSearch(labels, ranges).Search(ctx, p)
	if err != nil {
		return nil, err
	}

	x := p.Point()
	index := make(map[string]int)
	for i, label := range p.Labels() {
		index[label] = i
	}
	for label, v := range best {
		x[index[label]] = v
	}
	if err := p.SetPoint(x); err != nil {
		return nil, err
	}
	v, err := p.Evaluate()
	if err != nil {
		return nil, err
	}

	n := 1
	for _, r := range ranges {
		n *= len(r)
	}
	grad := v.Derivative()
	return &optim.Result{
		Point:      x,
		Loss:       v.Float(),
		GradNorm:   norm(grad),
		Iterations: n,
		Trace:      []optim.Step{{Loss: v.Float(), GradNorm: norm(grad), Point: x, Grad: grad}},
	}, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOBJECTIVE\tMETHOD\tTIME\tLOSS\tGRAD\tITERS\tCONV")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.6g\t%.2e\t%d\t%v\n",
			run.ID,
			run.Objective,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Loss,
			run.GradNorm,
			run.Iterations,
			run.Converged,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	steps, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("objective: %s\n", meta.Objective)
	fmt.Printf("iterations: %d\n\n", len(steps))

	loss := make([]float64, len(steps))
	grad := make([]float64, len(steps))
	for i, s := range steps {
		loss[i] = s.Loss
		grad[i] = log10(s.GradNorm)
	}

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{loss, "loss"},
		{grad, "log10 |grad|"},
	} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	path := exportOut
	if path == "" {
		path = runID + ".yaml"
	}

	st := storage.New(dataDir)
	if err := st.ExportGrid(runID, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func sweepObjective(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	p, err := buildProblem(cfg)
	if err != nil {
		return err
	}

	axes := make(map[string][]float64)
	for _, raw := range gridFlags {
		label, vals, err := parseAxis(raw)
		if err != nil {
			return err
		}
		axes[label] = vals
	}

	labels := args[1:]
	point := p.Point()
	ranges := make([][]float64, len(labels))
	for i, label := range labels {
		if vals, ok := axes[label]; ok {
			ranges[i] = vals
			continue
		}
		k := slices.Index(p.Labels(), label)
		if k < 0 {
			return fmt.Errorf("%w: %s", problem.ErrUnknownParam, label)
		}
		c := point[k]
		ranges[i] = axis(c-1, c+1, sweepN)
	}

	g, err := problem.Sweep(p, labels, ranges)
	if err != nil {
		return err
	}
	grid := gridio.FromValues(cfg.Objective+"_loss", g)
	grid.Attrs = map[string]string{"objective": cfg.Objective}
	for i, label := range labels {
		grid.Attrs["axis_"+strconv.Itoa(i)] = label
		grid.Attrs["axis_"+strconv.Itoa(i)+"_range"] = fmt.Sprintf("%g:%g", ranges[i][0], ranges[i][len(ranges[i])-1])
	}
	if err := gridio.Write(sweepOut, grid); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%v)\n", sweepOut, g.Dims())
	return nil
}

func inspectGrid(cmd *cobra.Command, args []string) error {
	g, err := gridio.Read(args[0])
	if err != nil {
		return err
	}
	arr, err := g.Array()
	if err != nil {
		return err
	}

	fmt.Printf("name: %s\n", g.Name)
	fmt.Printf("dims: %v\n", arr.Dims())
	keys := make([]string, 0, len(g.Attrs))
	for k := range g.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s = %s\n", k, g.Attrs[k])
	}

	dims := arr.Dims()
	if len(dims) == 0 || dims[0] == 0 {
		return nil
	}
	// first column along the leading axis
	series := make([]float64, dims[0])
	stride := arr.Len() / dims[0]
	for i := range series {
		series[i] = arr.Raw()[i*stride]
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(g.Name),
	))
	return nil
}

func listObjectives(cmd *cobra.Command, args []string) error {
	reg := problem.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTIVE\tPARAM\tLEN\tFIXED\tDEFAULT")
	for _, name := range reg.List() {
		obj, err := reg.Get(name)
		if err != nil {
			return err
		}
		for i, ps := range obj.Params() {
			label := ""
			if i == 0 {
				label = name
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%v\n", label, ps.Name, ps.Len(), ps.Fixed, ps.Default)
		}
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := config.Save(configOut, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", configOut)
	return nil
}
