// Package config loads and validates YAML descriptions of a molecular
// system: its atoms and the bonded force blocks evaluated over them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps    = 200
	DefaultStepSize = 1e-4
	DefaultGroups   = -1 // all bits set
)

// Config is one loadable system description.
type Config struct {
	Name   string        `yaml:"name"`
	Atoms  []AtomConfig  `yaml:"atoms"`
	Forces []ForceConfig `yaml:"forces"`
	Run    RunConfig     `yaml:"run"`
}

// AtomConfig places one atom.
type AtomConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Mass   float64 `yaml:"mass"`
	Charge float64 `yaml:"charge"`
}

// ForceConfig is one force block. Kind selects the builder; exactly one
// of the term lists should be populated, matching the kind.
type ForceConfig struct {
	Kind     string          `yaml:"kind"`
	Group    int             `yaml:"group"`
	Bonds    []BondConfig    `yaml:"bonds,omitempty"`
	Angles   []AngleConfig   `yaml:"angles,omitempty"`
	Torsions []TorsionConfig `yaml:"torsions,omitempty"`
}

// BondConfig is one harmonic bond: equilibrium length and spring constant.
type BondConfig struct {
	Atoms  [2]int  `yaml:"atoms"`
	Length float64 `yaml:"length"`
	K      float64 `yaml:"k"`
}

// AngleConfig is one harmonic angle, in degrees, vertex in the middle.
type AngleConfig struct {
	Atoms [3]int  `yaml:"atoms"`
	Angle float64 `yaml:"angle"`
	K     float64 `yaml:"k"`
}

// TorsionConfig is one periodic torsion, phase in degrees.
type TorsionConfig struct {
	Atoms       [4]int  `yaml:"atoms"`
	Periodicity int     `yaml:"periodicity"`
	Phase       float64 `yaml:"phase"`
	K           float64 `yaml:"k"`
}

// RunConfig controls the evaluation loop driven around the kernel.
type RunConfig struct {
	Steps    int     `yaml:"steps"`
	StepSize float64 `yaml:"step_size"`
	Groups   int     `yaml:"groups"`
}

func DefaultRun() RunConfig {
	return RunConfig{
		Steps:    DefaultSteps,
		StepSize: DefaultStepSize,
		Groups:   DefaultGroups,
	}
}

// Load reads a config file and applies run defaults for omitted fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Run: DefaultRun()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Run.Steps <= 0 {
		cfg.Run.Steps = DefaultSteps
	}
	if cfg.Run.StepSize <= 0 {
		cfg.Run.StepSize = DefaultStepSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks atom references and masses before any buffers are built.
func (c *Config) Validate() error {
	n := len(c.Atoms)
	if n == 0 {
		return fmt.Errorf("config: %q has no atoms", c.Name)
	}
	for i, a := range c.Atoms {
		if a.Mass <= 0 {
			return fmt.Errorf("config: atom %d has mass %g", i, a.Mass)
		}
	}
	check := func(kind string, atoms []int) error {
		for _, a := range atoms {
			if a < 0 || a >= n {
				return fmt.Errorf("config: %s references atom %d of %d", kind, a, n)
			}
		}
		return nil
	}
	for _, f := range c.Forces {
		if f.Group < 0 || f.Group > 31 {
			return fmt.Errorf("config: force %q group %d out of range", f.Kind, f.Group)
		}
		for _, b := range f.Bonds {
			if err := check(f.Kind, b.Atoms[:]); err != nil {
				return err
			}
		}
		for _, a := range f.Angles {
			if err := check(f.Kind, a.Atoms[:]); err != nil {
				return err
			}
		}
		for _, t := range f.Torsions {
			if err := check(f.Kind, t.Atoms[:]); err != nil {
				return err
			}
		}
	}
	return nil
}
