package config

import "github.com/kmurari/springpend/internal/model"

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	// Large-angle release, the canonical chaotic scenario.
	"chaos": preset(func(c *Config) {
		c.InitState.Theta1 = 2.0
		c.InitState.Theta2 = 2.0
		c.Duration = 20.0
	}),
	// Small-angle swing, quasi-periodic.
	"gentle": preset(func(c *Config) {
		c.InitState.Theta1 = 0.3
		c.InitState.Theta2 = 0.3
		c.Duration = 30.0
	}),
	// Near-rigid links, approaches the classic double pendulum.
	"stiff": preset(func(c *Config) {
		c.Params.K1 = 4000
		c.Params.K2 = 4000
		c.InitState.Theta1 = 1.5
		c.InitState.Theta2 = 1.5
		c.Dt = 0.0002
	}),
	// Soft springs, extension dynamics dominate.
	"springy": preset(func(c *Config) {
		c.Params.K1 = 10
		c.Params.K2 = 10
		c.InitState.Theta1 = 1.0
		c.InitState.Theta2 = 0.5
	}),
	// Vertical bounce, angles stay at zero.
	"bounce": preset(func(c *Config) {
		c.InitState.Theta1 = 0
		c.InitState.Theta2 = 0
		c.InitState.AtStaticRest = false
		c.InitState.Ext1 = 0.5
		c.InitState.Ext2 = 0.5
		c.Chaos.PerturbIdx = model.IdxA1
	}),
}

// GetPreset returns a copy of the named preset, or nil. Copying keeps
// callers from editing the shared table through the returned pointer.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
