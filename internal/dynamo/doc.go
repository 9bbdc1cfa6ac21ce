// Package dynamo provides core numeric primitives for simulating the
// spring double pendulum.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: phase-space vector (coordinates and velocities)
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator], [AdaptiveIntegrator]: numerical stepper interfaces
//   - [Result]: recorded trajectory with diagnostics
//
// # Example
//
//	dyn, _ := compile.NewSystem(eqs, params)
//	integ := integrators.NewRK4()
//	s := sim.New(dyn, integ)
//	result, _ := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulation runs are single-threaded by design; nothing in this package
// is safe for concurrent use.
package dynamo
