package lagrange

import (
	"fmt"

	"github.com/njchilds90/gosymbol"
)

// Coord is a generalized coordinate. The velocity and acceleration symbols
// are derived from the coordinate name by suffix ("th1" -> "th1d", "th1dd"),
// so a coordinate, its velocity and its acceleration are three independent
// symbols as far as the kernel is concerned.
type Coord struct {
	Name string
}

func (c Coord) Vel() string { return c.Name + "d" }
func (c Coord) Acc() string { return c.Name + "dd" }

func (c Coord) Sym() gosymbol.Expr    { return gosymbol.S(c.Name) }
func (c Coord) VelSym() gosymbol.Expr { return gosymbol.S(c.Vel()) }
func (c Coord) AccSym() gosymbol.Expr { return gosymbol.S(c.Acc()) }

// TimeDerivative applies the total time derivative along the flow defined
// by the coordinate set:
//
//	d/dt = Σ q̇ ∂/∂q + Σ q̈ ∂/∂q̇
//
// Expressions built from positions (functions of q only) therefore pick up
// velocity symbols; expressions containing velocities pick up accelerations.
func TimeDerivative(e gosymbol.Expr, coords []Coord) gosymbol.Expr {
	terms := make([]gosymbol.Expr, 0, 2*len(coords))
	for _, c := range coords {
		terms = append(terms,
			gosymbol.MulOf(gosymbol.Diff(e, c.Name), c.VelSym()),
			gosymbol.MulOf(gosymbol.Diff(e, c.Vel()), c.AccSym()),
		)
	}
	return gosymbol.AddOf(terms...)
}

// EulerLagrange applies the Euler–Lagrange operator to L for every
// coordinate, returning one residual expression per coordinate:
//
//	EL_i = d/dt(∂L/∂q̇_i) − ∂L/∂q_i
//
// A trajectory satisfies the equations of motion when every residual is zero.
func EulerLagrange(L gosymbol.Expr, coords []Coord) []gosymbol.Expr {
	out := make([]gosymbol.Expr, len(coords))
	for i, c := range coords {
		dLdVel := gosymbol.Diff(L, c.Vel())
		out[i] = gosymbol.Simplify(gosymbol.AddOf(
			TimeDerivative(dLdVel, coords),
			gosymbol.MulOf(gosymbol.N(-1), gosymbol.Diff(L, c.Name)),
		))
	}
	return out
}

// Equations holds the equations of motion in mass-matrix form M(q,q̇)·q̈ = F(q,q̇).
type Equations struct {
	Coords []Coord
	M      *gosymbol.Matrix
	F      []gosymbol.Expr
}

// Extract rewrites Euler–Lagrange residuals, which are linear in the
// accelerations, as M·q̈ = F. It fails if any mass-matrix entry still
// contains an acceleration symbol, which would mean the residuals were not
// linear in q̈ (an ill-posed coordinate choice).
func Extract(el []gosymbol.Expr, coords []Coord) (*Equations, error) {
	n := len(coords)
	if len(el) != n {
		return nil, fmt.Errorf("lagrange: %d residuals for %d coordinates", len(el), n)
	}

	m := gosymbol.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			entry := gosymbol.Simplify(gosymbol.Diff(el[i], coords[j].Acc()))
			free := gosymbol.FreeSymbols(entry)
			for _, c := range coords {
				if _, ok := free[c.Acc()]; ok {
					return nil, fmt.Errorf("lagrange: residual for %s not linear in accelerations", coords[i].Name)
				}
			}
			m.Set(i, j, entry)
		}
	}

	f := make([]gosymbol.Expr, n)
	for i := 0; i < n; i++ {
		rest := el[i]
		for _, c := range coords {
			rest = gosymbol.Sub(rest, c.Acc(), gosymbol.N(0))
		}
		f[i] = gosymbol.Simplify(gosymbol.MulOf(gosymbol.N(-1), rest))
	}

	return &Equations{Coords: coords, M: m, F: f}, nil
}

// Derive runs the full pipeline: Euler–Lagrange residuals from the
// Lagrangian, then extraction into mass-matrix form.
func Derive(L gosymbol.Expr, coords []Coord) (*Equations, error) {
	return Extract(EulerLagrange(L, coords), coords)
}

// Solve returns the closed form of each acceleration by Cramer's rule.
// The result is symbolic and exact; a vanishing determinant is fatal.
func (eq *Equations) Solve() ([]gosymbol.Expr, error) {
	n := len(eq.Coords)
	det := gosymbol.Simplify(eq.M.Det())
	if num, ok := det.(*gosymbol.Num); ok && num.IsZero() {
		return nil, fmt.Errorf("lagrange: singular mass matrix")
	}

	invDet := gosymbol.PowOf(det, gosymbol.N(-1))
	out := make([]gosymbol.Expr, n)
	for i := 0; i < n; i++ {
		col := gosymbol.NewMatrix(n, n)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				if c == i {
					col.Set(r, c, eq.F[r])
				} else {
					col.Set(r, c, eq.M.Get(r, c))
				}
			}
		}
		out[i] = gosymbol.MulOf(col.Det(), invDet)
	}
	return out, nil
}

// SubAll substitutes the same value for several symbols in one pass.
func SubAll(e gosymbol.Expr, subs map[string]gosymbol.Expr) gosymbol.Expr {
	for name, val := range subs {
		e = gosymbol.Sub(e, name, val)
	}
	return gosymbol.Simplify(e)
}
