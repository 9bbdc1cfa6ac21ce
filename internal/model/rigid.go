package model

import (
	"github.com/njchilds90/gosymbol"

	"github.com/kmurari/springpend/internal/lagrange"
)

// The reference systems below are derived independently of the spring
// model, from their own Lagrangians, and serve as the known-theory side of
// the limit reduction checks. They share parameter symbol names with the
// spring model so residuals can be compared directly.

// BuildRigid derives the rigid double pendulum: two angles, fixed link
// lengths l1 and l2.
func BuildRigid() (*Model, error) {
	coords := []lagrange.Coord{{Name: "th1"}, {Name: "th2"}}
	th1, th2 := coords[0], coords[1]

	m1, m2 := gosymbol.S("m1"), gosymbol.S("m2")
	l1, l2 := gosymbol.S("l1"), gosymbol.S("l2")
	g := gosymbol.S("g")

	x1 := gosymbol.MulOf(l1, gosymbol.SinOf(th1.Sym()))
	y1 := neg(gosymbol.MulOf(l1, gosymbol.CosOf(th1.Sym())))
	x2 := gosymbol.AddOf(x1, gosymbol.MulOf(l2, gosymbol.SinOf(th2.Sym())))
	y2 := gosymbol.AddOf(y1, neg(gosymbol.MulOf(l2, gosymbol.CosOf(th2.Sym()))))

	vx1 := lagrange.TimeDerivative(x1, coords)
	vy1 := lagrange.TimeDerivative(y1, coords)
	vx2 := lagrange.TimeDerivative(x2, coords)
	vy2 := lagrange.TimeDerivative(y2, coords)

	kinetic := gosymbol.Simplify(gosymbol.AddOf(
		gosymbol.MulOf(half(), m1, gosymbol.AddOf(sq(vx1), sq(vy1))),
		gosymbol.MulOf(half(), m2, gosymbol.AddOf(sq(vx2), sq(vy2))),
	))
	potential := gosymbol.Simplify(gosymbol.AddOf(
		gosymbol.MulOf(m1, g, y1),
		gosymbol.MulOf(m2, g, y2),
	))

	lagrangian := gosymbol.AddOf(kinetic, neg(potential))
	residuals := lagrange.EulerLagrange(lagrangian, coords)
	eqs, err := lagrange.Extract(residuals, coords)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:      "rigid_double_pendulum",
		Coords:    coords,
		Kinetic:   kinetic,
		Potential: potential,
		Residuals: residuals,
		Eqs:       eqs,
		Positions: [4]gosymbol.Expr{x1, y1, x2, y2},
	}, nil
}

// BuildSingle derives the rigid single pendulum: one angle, mass m1,
// length l1.
func BuildSingle() (*Model, error) {
	coords := []lagrange.Coord{{Name: "th1"}}
	th1 := coords[0]

	m1 := gosymbol.S("m1")
	l1 := gosymbol.S("l1")
	g := gosymbol.S("g")

	x1 := gosymbol.MulOf(l1, gosymbol.SinOf(th1.Sym()))
	y1 := neg(gosymbol.MulOf(l1, gosymbol.CosOf(th1.Sym())))

	vx1 := lagrange.TimeDerivative(x1, coords)
	vy1 := lagrange.TimeDerivative(y1, coords)

	kinetic := gosymbol.Simplify(gosymbol.MulOf(half(), m1, gosymbol.AddOf(sq(vx1), sq(vy1))))
	potential := gosymbol.Simplify(gosymbol.MulOf(m1, g, y1))

	lagrangian := gosymbol.AddOf(kinetic, neg(potential))
	residuals := lagrange.EulerLagrange(lagrangian, coords)
	eqs, err := lagrange.Extract(residuals, coords)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:      "single_pendulum",
		Coords:    coords,
		Kinetic:   kinetic,
		Potential: potential,
		Residuals: residuals,
		Eqs:       eqs,
		Positions: [4]gosymbol.Expr{x1, y1, x1, y1},
	}, nil
}

// BuildOscillator derives the vertical spring oscillator: mass m1 hanging
// from spring k1 with the angle frozen at zero. Its residual is
// m1·ä1 + k1·a1 − m1·g, harmonic motion about the gravity-stretched
// equilibrium.
func BuildOscillator() (*Model, error) {
	coords := []lagrange.Coord{{Name: "a1"}}
	a1 := coords[0]

	m1 := gosymbol.S("m1")
	l1 := gosymbol.S("l1")
	k1 := gosymbol.S("k1")
	g := gosymbol.S("g")

	y1 := neg(gosymbol.AddOf(l1, a1.Sym()))

	vy1 := lagrange.TimeDerivative(y1, coords)

	kinetic := gosymbol.Simplify(gosymbol.MulOf(half(), m1, sq(vy1)))
	potential := gosymbol.Simplify(gosymbol.AddOf(
		gosymbol.MulOf(m1, g, y1),
		gosymbol.MulOf(half(), k1, sq(a1.Sym())),
	))

	lagrangian := gosymbol.AddOf(kinetic, neg(potential))
	residuals := lagrange.EulerLagrange(lagrangian, coords)
	eqs, err := lagrange.Extract(residuals, coords)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:      "spring_oscillator",
		Coords:    coords,
		Kinetic:   kinetic,
		Potential: potential,
		Residuals: residuals,
		Eqs:       eqs,
		Positions: [4]gosymbol.Expr{gosymbol.N(0), y1, gosymbol.N(0), y1},
	}, nil
}
