package model

import "fmt"

const (
	DefaultMass      = 1.0
	DefaultLength    = 1.0
	DefaultStiffness = 40.0
	DefaultGravity   = 9.81
)

// Params is the numeric parameter set substituted into the symbolic
// equations to produce a runnable system. Immutable by convention once an
// experiment is built from it.
type Params struct {
	M1 float64 `json:"m1" yaml:"m1"`
	M2 float64 `json:"m2" yaml:"m2"`
	L1 float64 `json:"l1" yaml:"l1"`
	L2 float64 `json:"l2" yaml:"l2"`
	K1 float64 `json:"k1" yaml:"k1"`
	K2 float64 `json:"k2" yaml:"k2"`
	G  float64 `json:"g" yaml:"g"`
}

func DefaultParams() Params {
	return Params{
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
		K1: DefaultStiffness, K2: DefaultStiffness,
		G: DefaultGravity,
	}
}

func (p Params) Validate() error {
	if p.M1 <= 0 || p.M2 <= 0 {
		return fmt.Errorf("model: masses must be positive (m1=%g, m2=%g)", p.M1, p.M2)
	}
	if p.L1 <= 0 || p.L2 <= 0 {
		return fmt.Errorf("model: natural lengths must be positive (l1=%g, l2=%g)", p.L1, p.L2)
	}
	if p.K1 <= 0 || p.K2 <= 0 {
		return fmt.Errorf("model: spring constants must be positive (k1=%g, k2=%g)", p.K1, p.K2)
	}
	return nil
}

// Symbols maps parameter symbol names to their numeric values, in the order
// the symbolic builder introduces them.
func (p Params) Symbols() map[string]float64 {
	return map[string]float64{
		"m1": p.M1, "m2": p.M2,
		"l1": p.L1, "l2": p.L2,
		"k1": p.K1, "k2": p.K2,
		"g": p.G,
	}
}

// StaticExtensions returns the extensions at the hanging equilibrium:
// spring 1 carries both bobs, spring 2 carries the second.
func (p Params) StaticExtensions() (a1, a2 float64) {
	return (p.M1 + p.M2) * p.G / p.K1, p.M2 * p.G / p.K2
}
