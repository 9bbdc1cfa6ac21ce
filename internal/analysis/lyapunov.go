package analysis

import (
	"math"

	"github.com/kmurari/springpend/internal/dynamo"
)

// Running holds the evolution of the renormalized Lyapunov estimate.
type Running struct {
	Times  []float64
	Lambda []float64
}

// Final returns the last running estimate, or zero when empty.
func (r *Running) Final() float64 {
	if r == nil || len(r.Lambda) == 0 {
		return 0
	}
	return r.Lambda[len(r.Lambda)-1]
}

// RunningExponent estimates the largest Lyapunov exponent with the
// Benettin renormalization method: after every step the perturbed
// trajectory is pulled back to distance d0 along the current
// separation direction, and the accumulated log stretch divided by
// elapsed time gives the running estimate.
//
//	λ(t) = (1/t) Σ ln(|δx_k| / d0)
func RunningExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	d0 float64,
) *Running {
	if len(x0) == 0 || d0 <= 0 {
		return &Running{}
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0

	steps := int(duration / dt)
	run := &Running{
		Times:  make([]float64, 0, steps),
		Lambda: make([]float64, 0, steps),
	}

	t := 0.0
	sumLog := 0.0

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, t, dt)
		xp = integ.Step(dyn, xp, t, dt)
		t += dt

		if !x.IsValid() || !xp.IsValid() {
			break
		}

		sep := x.Distance(xp)
		if sep <= 0 {
			continue
		}

		sumLog += math.Log(sep / d0)

		// Renormalize back to d0 along the separation direction.
		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}

		run.Times = append(run.Times, t)
		run.Lambda = append(run.Lambda, sumLog/t)
	}

	return run
}

// LargestExponent is a convenience wrapper returning only the final
// renormalized estimate.
func LargestExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	d0 float64,
) float64 {
	return RunningExponent(dyn, integ, x0, dt, duration, d0).Final()
}
