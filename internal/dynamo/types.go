package dynamo

import (
	"fmt"
	"math"
)

// State is the phase-space vector of the system. For the spring double
// pendulum the layout is [th1 a1 th2 a2 th1d a1d th2d a2d]: two angles,
// two spring extensions, then their time derivatives.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// Distance is the Euclidean phase-space separation between two states.
func (s State) Distance(other State) float64 {
	sum := 0.0
	for i := range s {
		d := s[i]
		if i < len(other) {
			d -= other[i]
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// System is an autonomous first-order ODE system dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian is implemented by systems that can report total energy,
// used to monitor integration drift.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// AdaptiveIntegrator proposes a step together with a suggested dt for
// the next attempt. The bool reports whether the local error estimate
// met tol; on a rejection the caller retries with the smaller dt and
// must not advance time by the rejected step.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, bool)
}

// Observer receives every accepted step of a simulation run.
type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		Duration:      10.0,
		Tolerance:     1e-9,
		MaxDt:         0.01,
		MinDt:         1e-9,
		Adaptive:      false,
		ValidateState: true,
	}
}

// Result is a recorded trajectory: ordered (time, state) samples plus
// run-level diagnostics. Read-only after the run.
type Result struct {
	States      []State
	Times       []float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

// RadToDeg converts a radian angle to degrees.
func RadToDeg(x float64) float64 { return x * 180 / math.Pi }

// DegToRad converts a degree angle to radians.
func DegToRad(x float64) float64 { return x * math.Pi / 180 }
