package analysis

import (
	"fmt"
	"sync"

	"github.com/kmurari/springpend/internal/dynamo"
)

// SweepPoint is the fitted exponent for one value of the swept parameter.
type SweepPoint struct {
	Param  float64
	Lambda float64
	R2     float64
}

// SweepConfig bundles the timing and fit settings for a parameter sweep.
type SweepConfig struct {
	Min, Max   float64
	Steps      int
	Epsilon    float64
	Saturation float64
	Dt         float64
	Duration   float64
	PerturbIdx int
}

// StiffnessSweep estimates the largest Lyapunov exponent across a range
// of one parameter. newSystem builds a fresh system for each parameter
// value and runs on its own goroutine, so the factory must not share
// mutable state between calls.
func StiffnessSweep(
	newSystem func(param float64) (dynamo.System, error),
	newInteg func() dynamo.Integrator,
	x0 dynamo.State,
	cfg SweepConfig,
) ([]SweepPoint, error) {
	if cfg.Steps <= 1 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", cfg.Steps)
	}
	step := (cfg.Max - cfg.Min) / float64(cfg.Steps-1)

	points := make([]SweepPoint, cfg.Steps)
	errs := make([]error, cfg.Steps)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Steps; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			param := cfg.Min + float64(idx)*step
			dyn, err := newSystem(param)
			if err != nil {
				errs[idx] = fmt.Errorf("param %.4f: %w", param, err)
				return
			}

			div := Diverge(dyn, newInteg(), x0, cfg.PerturbIdx, cfg.Epsilon, cfg.Dt, cfg.Duration)
			fit := FitExponent(div, cfg.Saturation)
			points[idx] = SweepPoint{Param: param, Lambda: fit.Lambda, R2: fit.R2}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return points, nil
}
