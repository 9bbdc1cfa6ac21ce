// Package analysis provides chaos diagnostics for integrated trajectories.
//
// The package includes tools for characterizing dynamical systems:
//
//   - [Diverge]: twin-trajectory separation record for a perturbed pair
//   - [FitExponent]: least-squares Lyapunov estimate from log separation
//   - [RunningExponent]: renormalized running exponent (Benettin method)
//   - [StiffnessSweep]: exponent as a function of a swept parameter
//   - [GeneratePhasePortrait]: 2D phase space trajectories
//   - [GeneratePoincareSection]: stroboscopic section of phase space
//
// # Chaos Detection
//
// A positive fitted exponent with a good linear fit indicates chaos:
//
//	div := analysis.Diverge(dyn, integ, x0, 0, 1e-8, dt, duration)
//	fit := analysis.FitExponent(div, 1.0)
//	if fit.Lambda > 0 && fit.R2 > 0.9 {
//	    // System is chaotic
//	}
package analysis
