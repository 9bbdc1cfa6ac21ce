package model

import (
	"github.com/njchilds90/gosymbol"

	"github.com/kmurari/springpend/internal/lagrange"
)

// State vector layout shared by every numeric consumer:
// [th1 a1 th2 a2 th1d a1d th2d a2d].
const (
	IdxTh1 = iota
	IdxA1
	IdxTh2
	IdxA2
	IdxTh1d
	IdxA1d
	IdxTh2d
	IdxA2d
	StateDim
)

// Model is a fully derived symbolic system: the Lagrangian pieces, the
// Euler–Lagrange residuals, the extracted mass-matrix form, and the bob
// position expressions for rendering. Everything is closed-form and
// immutable once built.
type Model struct {
	Name   string
	Coords []lagrange.Coord

	Kinetic   gosymbol.Expr
	Potential gosymbol.Expr
	Residuals []gosymbol.Expr
	Eqs       *lagrange.Equations

	// Positions are x1, y1, x2, y2 of the two bobs in terms of the
	// coordinates, with the pivot at the origin and y pointing up.
	Positions [4]gosymbol.Expr
}

// StateNames lists the flat variable names in state-vector order.
func (m *Model) StateNames() []string {
	names := make([]string, 0, 2*len(m.Coords))
	for _, c := range m.Coords {
		names = append(names, c.Name)
	}
	for _, c := range m.Coords {
		names = append(names, c.Vel())
	}
	return names
}

func half() gosymbol.Expr { return gosymbol.F(1, 2) }
func neg(e gosymbol.Expr) gosymbol.Expr {
	return gosymbol.MulOf(gosymbol.N(-1), e)
}
func sq(e gosymbol.Expr) gosymbol.Expr {
	return gosymbol.PowOf(e, gosymbol.N(2))
}

// BuildSpring derives the spring double pendulum symbolically.
//
// Coordinates are two angles from the downward vertical and two spring
// extensions. Link i has instantaneous length l_i + a_i; the springs are
// massless and the potential carries gravity plus the elastic terms
// ½·k_i·a_i². The derivation is purely symbolic: positions, velocities via
// the total time derivative, T and V, then the Euler–Lagrange residuals
// extracted into M·q̈ = F.
func BuildSpring() (*Model, error) {
	coords := []lagrange.Coord{{Name: "th1"}, {Name: "a1"}, {Name: "th2"}, {Name: "a2"}}
	th1, a1, th2, a2 := coords[0], coords[1], coords[2], coords[3]

	m1, m2 := gosymbol.S("m1"), gosymbol.S("m2")
	l1, l2 := gosymbol.S("l1"), gosymbol.S("l2")
	k1, k2 := gosymbol.S("k1"), gosymbol.S("k2")
	g := gosymbol.S("g")

	r1 := gosymbol.AddOf(l1, a1.Sym())
	r2 := gosymbol.AddOf(l2, a2.Sym())

	x1 := gosymbol.MulOf(r1, gosymbol.SinOf(th1.Sym()))
	y1 := neg(gosymbol.MulOf(r1, gosymbol.CosOf(th1.Sym())))
	x2 := gosymbol.AddOf(x1, gosymbol.MulOf(r2, gosymbol.SinOf(th2.Sym())))
	y2 := gosymbol.AddOf(y1, neg(gosymbol.MulOf(r2, gosymbol.CosOf(th2.Sym()))))

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
		gosymbol.MulOf(half(), k1, sq(a1.Sym())),
		gosymbol.MulOf(half(), k2, sq(a2.Sym())),
	))

	lagrangian := gosymbol.AddOf(kinetic, neg(potential))
	residuals := lagrange.EulerLagrange(lagrangian, coords)
	eqs, err := lagrange.Extract(residuals, coords)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:      "spring_double_pendulum",
		Coords:    coords,
		Kinetic:   kinetic,
		Potential: potential,
		Residuals: residuals,
		Eqs:       eqs,
		Positions: [4]gosymbol.Expr{x1, y1, x2, y2},
	}, nil
}
