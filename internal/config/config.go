package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fwdiff/internal/gradcheck"
	"github.com/san-kum/fwdiff/internal/optim"
	"github.com/san-kum/fwdiff/internal/problem"
)

const (
	DefaultLearningRate = 0.01
	DefaultMaxIter      = 1000
	DefaultTolerance    = 1e-6
	DefaultShrink       = 0.5
	DefaultCheckStep    = 1e-6
	DefaultCheckTol     = 1e-5
)

type Config struct {
	Objective string                 `yaml:"objective"`
	Params    map[string]ParamConfig `yaml:"params,omitempty"`
	Optimizer OptimizerConfig        `yaml:"optimizer"`
	Check     CheckConfig            `yaml:"check"`
}

type ParamConfig struct {
	Initial []float64 `yaml:"initial,omitempty,flow"`
	Fixed   *bool     `yaml:"fixed,omitempty"`
}

type OptimizerConfig struct {
	Method       string  `yaml:"method"`
	LearningRate float64 `yaml:"learning_rate"`
	MaxIter      int     `yaml:"max_iter"`
	Tolerance    float64 `yaml:"tolerance"`
	Backtracking bool    `yaml:"backtracking"`
	Shrink       float64 `yaml:"shrink"`
}

type CheckConfig struct {
	Step      float64 `yaml:"step"`
	Tolerance float64 `yaml:"tolerance"`
}

func DefaultConfig() *Config {
	return &Config{
		Objective: "rosenbrock",
		Optimizer: OptimizerConfig{
			Method:       "gd",
			LearningRate: DefaultLearningRate,
			MaxIter:      DefaultMaxIter,
			Tolerance:    DefaultTolerance,
			Backtracking: true,
			Shrink:       DefaultShrink,
		},
		Check: CheckConfig{
			Step:      DefaultCheckStep,
			Tolerance: DefaultCheckTol,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Overrides converts the params section for problem.New.
func (c *Config) Overrides() map[string]problem.Override {
	if len(c.Params) == 0 {
		return nil
	}
	out := make(map[string]problem.Override, len(c.Params))
	for name, p := range c.Params {
		out[name] = problem.Override{Initial: p.Initial, Fixed: p.Fixed}
	}
	return out
}

func (c *Config) GradientDescent() *optim.GradientDescent {
	gd := optim.NewGradientDescent()
	gd.LearningRate = c.Optimizer.LearningRate
	gd.MaxIter = c.Optimizer.MaxIter
	gd.Tolerance = c.Optimizer.Tolerance
	gd.Backtracking = c.Optimizer.Backtracking
	if c.Optimizer.Shrink > 0 {
		gd.Shrink = c.Optimizer.Shrink
	}
	return gd
}

func (c *Config) CheckSettings() gradcheck.Settings {
	s := gradcheck.DefaultSettings()
	if c.Check.Step > 0 {
		s.Step = c.Check.Step
	}
	if c.Check.Tolerance > 0 {
		s.Tolerance = c.Check.Tolerance
	}
	return s
}
