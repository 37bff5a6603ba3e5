package config

import "sort"

func fixed(b bool) *bool { return &b }

var Presets = map[string]map[string]*Config{
	"rosenbrock": {
		"classic": {
			Objective: "rosenbrock",
			Params:    map[string]ParamConfig{"xy": {Initial: []float64{-1.2, 1}}},
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.002, MaxIter: 20000, Tolerance: 1e-6, Backtracking: true, Shrink: 0.5},
		},
		"near": {
			Objective: "rosenbrock",
			Params:    map[string]ParamConfig{"xy": {Initial: []float64{0.8, 0.6}}},
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.002, MaxIter: 5000, Tolerance: 1e-6, Backtracking: true, Shrink: 0.5},
		},
		"free_coeff": {
			Objective: "rosenbrock",
			Params:    map[string]ParamConfig{"coeff": {Initial: []float64{1, 10}, Fixed: fixed(false)}},
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.01, MaxIter: 2000, Tolerance: 1e-6, Backtracking: true, Shrink: 0.5},
		},
	},
	"decay_fit": {
		"default": {
			Objective: "decay_fit",
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.5, MaxIter: 20000, Tolerance: 1e-9, Backtracking: true, Shrink: 0.5},
		},
		"rate_only": {
			Objective: "decay_fit",
			Params:    map[string]ParamConfig{"amplitude": {Initial: []float64{3}, Fixed: fixed(true)}},
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.5, MaxIter: 5000, Tolerance: 1e-9, Backtracking: true, Shrink: 0.5},
		},
	},
	"spring_fit": {
		"default": {
			Objective: "spring_fit",
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.1, MaxIter: 3000, Tolerance: 1e-8, Backtracking: true, Shrink: 0.5},
		},
		"stiffness_only": {
			Objective: "spring_fit",
			Params:    map[string]ParamConfig{"damping": {Initial: []float64{0.3}, Fixed: fixed(true)}},
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.1, MaxIter: 1000, Tolerance: 1e-8, Backtracking: true, Shrink: 0.5},
		},
	},
	"hinge": {
		"default": {
			Objective: "hinge",
			Optimizer: OptimizerConfig{Method: "gd", LearningRate: 0.05, MaxIter: 500, Tolerance: 1e-6, Backtracking: true, Shrink: 0.5},
		},
	},
}

func GetPreset(objective, name string) *Config {
	if presets, ok := Presets[objective]; ok {
		if cfg, ok := presets[name]; ok {
			out := *cfg
			out.Params = make(map[string]ParamConfig, len(cfg.Params))
			for name, pc := range cfg.Params {
				out.Params[name] = pc
			}
			out.Check = DefaultConfig().Check
			return &out
		}
	}
	return nil
}

func ListPresets(objective string) []string {
	presets, ok := Presets[objective]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
