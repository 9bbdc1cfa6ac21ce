package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kmurari/springpend/internal/dynamo"
	"github.com/kmurari/springpend/internal/model"
)

const (
	DefaultDt         = 0.001
	DefaultDuration   = 10.0
	DefaultTolerance  = 1e-9
	DefaultEpsilon    = 1e-8
	DefaultSaturation = 1.0
	DefaultCacheDir   = ".springpend"
)

type Config struct {
	Integrator string              `yaml:"integrator"`
	Dt         float64             `yaml:"dt"`
	Duration   float64             `yaml:"duration"`
	Tolerance  float64             `yaml:"tolerance"`
	Adaptive   bool                `yaml:"adaptive"`
	CacheDir   string              `yaml:"cache_dir"`
	Params     model.Params        `yaml:"params"`
	InitState  InitStateConfig     `yaml:"init_state"`
	Chaos      ChaosConfig         `yaml:"chaos"`
}

type InitStateConfig struct {
	Theta1 float64 `yaml:"theta1"`
	Omega1 float64 `yaml:"omega1"`
	Theta2 float64 `yaml:"theta2"`
	Omega2 float64 `yaml:"omega2"`
	Ext1   float64 `yaml:"ext1"`
	ExtV1  float64 `yaml:"ext_vel1"`
	Ext2   float64 `yaml:"ext2"`
	ExtV2  float64 `yaml:"ext_vel2"`

	// AtStaticRest overrides Ext1/Ext2 with the hanging equilibrium
	// extensions computed from the parameters.
	AtStaticRest bool `yaml:"at_static_rest"`
}

type ChaosConfig struct {
	Epsilon    float64 `yaml:"epsilon"`
	Saturation float64 `yaml:"saturation"`
	PerturbIdx int     `yaml:"perturb_idx"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  DefaultTolerance,
		CacheDir:   DefaultCacheDir,
		Params:     model.DefaultParams(),
		InitState: InitStateConfig{
			Theta1:       2.0,
			Theta2:       2.0,
			AtStaticRest: true,
		},
		Chaos: ChaosConfig{
			Epsilon:    DefaultEpsilon,
			Saturation: DefaultSaturation,
			PerturbIdx: model.IdxTh1,
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
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.Chaos.Epsilon <= 0 {
		return fmt.Errorf("chaos epsilon must be positive, got %g", c.Chaos.Epsilon)
	}
	if c.Chaos.PerturbIdx < 0 || c.Chaos.PerturbIdx >= model.StateDim {
		return fmt.Errorf("perturb_idx out of range: %d", c.Chaos.PerturbIdx)
	}
	return c.Params.Validate()
}

// GetInitState assembles the flat state vector in solver order.
func (c *Config) GetInitState() dynamo.State {
	x := make(dynamo.State, model.StateDim)
	x[model.IdxTh1] = c.InitState.Theta1
	x[model.IdxA1] = c.InitState.Ext1
	x[model.IdxTh2] = c.InitState.Theta2
	x[model.IdxA2] = c.InitState.Ext2
	x[model.IdxTh1d] = c.InitState.Omega1
	x[model.IdxA1d] = c.InitState.ExtV1
	x[model.IdxTh2d] = c.InitState.Omega2
	x[model.IdxA2d] = c.InitState.ExtV2

	if c.InitState.AtStaticRest {
		a1, a2 := c.Params.StaticExtensions()
		x[model.IdxA1] = a1
		x[model.IdxA2] = a2
	}
	return x
}

// SimConfig translates the file settings into solver settings.
func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Tolerance:     c.Tolerance,
		MaxDt:         c.Dt * 100,
		MinDt:         c.Dt / 100,
		Adaptive:      c.Adaptive,
		ValidateState: true,
	}
}
