package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/kmurari/springpend/internal/dynamo"
)

type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	observers  []dynamo.Observer
}

func New(dyn dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &dynamo.Result{
		States: make([]dynamo.State, 0, steps+1),
		Times:  make([]float64, 0, steps+1),
		Errors: make([]error, 0),
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	// Fixed stepping runs a predetermined step count; adaptive stepping
	// runs on the clock because dt changes as it goes.
	for i := 0; ; i++ {
		if cfg.Adaptive {
			if t >= cfg.Duration {
				break
			}
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		var newX dynamo.State
		var stepErr error
		dtUsed := dt

		if cfg.Adaptive {
			newX, dtUsed, dt, stepErr = s.adaptiveStep(x, t, dt, cfg)
		} else {
			newX = s.integrator.Step(s.dyn, x, t, dt)
		}

		if stepErr != nil {
			result.Errors = append(result.Errors, stepErr)
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := dynamo.SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		t += dtUsed
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	return nil
}

func (s *Simulator) computeEnergy(x dynamo.State) float64 {
	if ec, ok := s.dyn.(dynamo.Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}

// adaptiveStep advances one accepted step, retrying rejected attempts
// with a smaller dt until the tolerance is met or dt hits the floor.
// Returns the new state, the dt actually integrated, and the clamped
// dt suggestion for the next step. A step forced through at MinDt with
// the tolerance still unmet reports ErrStepTooSmall.
func (s *Simulator) adaptiveStep(x dynamo.State, t, dt float64, cfg dynamo.Config) (dynamo.State, float64, float64, error) {
	if adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok {
		for {
			newX, dtNext, accepted := adaptive.StepAdaptive(s.dyn, x, t, dt, cfg.Tolerance)
			dtNext = clampDt(dtNext, cfg)
			if accepted {
				return newX, dt, dtNext, nil
			}
			if dt <= cfg.MinDt {
				return newX, dt, dtNext, dynamo.ErrStepTooSmall
			}
			dt = math.Max(dtNext, cfg.MinDt)
		}
	}

	// Step-doubling fallback for fixed-step integrators.
	for {
		x1 := s.integrator.Step(s.dyn, x, t, dt)
		xHalf := s.integrator.Step(s.dyn, x, t, dt/2)
		x2 := s.integrator.Step(s.dyn, xHalf, t+dt/2, dt/2)

		errEst := x1.Sub(x2).Norm()

		if errEst <= cfg.Tolerance {
			dtNext := dt
			if errEst < cfg.Tolerance/10 {
				dtNext = clampDt(dt*2, cfg)
			}
			return x2, dt, dtNext, nil
		}
		if dt <= cfg.MinDt {
			return x2, dt, dt, dynamo.ErrStepTooSmall
		}
		dt = math.Max(dt/2, cfg.MinDt)
	}
}

func clampDt(dt float64, cfg dynamo.Config) float64 {
	if cfg.MaxDt > 0 && dt > cfg.MaxDt {
		dt = cfg.MaxDt
	}
	if cfg.MinDt > 0 && dt < cfg.MinDt {
		dt = cfg.MinDt
	}
	return dt
}

// RunWithCallback steps the system and hands each state to callback.
// Returning false from the callback stops the run without error.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(dynamo.State, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, t) {
			return nil
		}

		x = s.integrator.Step(s.dyn, x, t, dt)
		t += dt

		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("invalid state at t=%.4f", t)
		}
	}

	return nil
}
