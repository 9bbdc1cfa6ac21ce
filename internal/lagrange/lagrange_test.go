package lagrange

import (
	"testing"

	"github.com/njchilds90/gosymbol"
)

// oscillatorLagrangian is L = ½·m·ẋ² − ½·k·x², the simplest system with a
// known closed-form equation of motion: m·ẍ + k·x = 0.
func oscillatorLagrangian(c Coord) gosymbol.Expr {
	m, k := gosymbol.S("m"), gosymbol.S("k")
	half := gosymbol.F(1, 2)
	return gosymbol.AddOf(
		gosymbol.MulOf(half, m, gosymbol.PowOf(c.VelSym(), gosymbol.N(2))),
		gosymbol.MulOf(gosymbol.N(-1), half, k, gosymbol.PowOf(c.Sym(), gosymbol.N(2))),
	)
}

func TestCoordNames(t *testing.T) {
	c := Coord{Name: "th1"}
	if c.Vel() != "th1d" {
		t.Errorf("velocity symbol = %s, want th1d", c.Vel())
	}
	if c.Acc() != "th1dd" {
		t.Errorf("acceleration symbol = %s, want th1dd", c.Acc())
	}
}

func TestTimeDerivative_Position(t *testing.T) {
	// d/dt(x²) = 2·x·ẋ
	c := Coord{Name: "x"}
	coords := []Coord{c}

	got := TimeDerivative(gosymbol.PowOf(c.Sym(), gosymbol.N(2)), coords)
	want := gosymbol.MulOf(gosymbol.N(2), c.Sym(), c.VelSym())

	if !Equivalent(got, want) {
		t.Errorf("d/dt(x^2) = %s, want 2*x*xd", gosymbol.String(gosymbol.Simplify(got)))
	}
}

func TestTimeDerivative_Velocity(t *testing.T) {
	// d/dt(ẋ) = ẍ
	c := Coord{Name: "x"}
	got := TimeDerivative(c.VelSym(), []Coord{c})
	if !Equivalent(got, c.AccSym()) {
		t.Errorf("d/dt(xd) = %s, want xdd", gosymbol.String(gosymbol.Simplify(got)))
	}
}

func TestEulerLagrange_Oscillator(t *testing.T) {
	c := Coord{Name: "x"}
	coords := []Coord{c}

	residuals := EulerLagrange(oscillatorLagrangian(c), coords)
	if len(residuals) != 1 {
		t.Fatalf("got %d residuals, want 1", len(residuals))
	}

	// m·ẍ + k·x
	want := gosymbol.AddOf(
		gosymbol.MulOf(gosymbol.S("m"), c.AccSym()),
		gosymbol.MulOf(gosymbol.S("k"), c.Sym()),
	)
	if !Equivalent(residuals[0], want) {
		t.Errorf("residual = %s, want m*xdd + k*x", gosymbol.String(gosymbol.Simplify(residuals[0])))
	}
}

func TestExtract_Oscillator(t *testing.T) {
	c := Coord{Name: "x"}
	coords := []Coord{c}

	eqs, err := Derive(oscillatorLagrangian(c), coords)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if !Equivalent(eqs.M.Get(0, 0), gosymbol.S("m")) {
		t.Errorf("M[0][0] = %s, want m", gosymbol.String(eqs.M.Get(0, 0)))
	}
	wantF := gosymbol.MulOf(gosymbol.N(-1), gosymbol.S("k"), c.Sym())
	if !Equivalent(eqs.F[0], wantF) {
		t.Errorf("F[0] = %s, want -k*x", gosymbol.String(eqs.F[0]))
	}
}

func TestExtract_ResidualCountMismatch(t *testing.T) {
	coords := []Coord{{Name: "x"}, {Name: "y"}}
	_, err := Extract([]gosymbol.Expr{gosymbol.N(0)}, coords)
	if err == nil {
		t.Error("expected error for residual/coordinate count mismatch")
	}
}

func TestExtract_NonlinearAcceleration(t *testing.T) {
	// A residual quadratic in ẍ cannot be put in mass-matrix form.
	c := Coord{Name: "x"}
	residual := gosymbol.PowOf(c.AccSym(), gosymbol.N(2))
	_, err := Extract([]gosymbol.Expr{residual}, []Coord{c})
	if err == nil {
		t.Error("expected error for residual nonlinear in acceleration")
	}
}

func TestSolve_Oscillator(t *testing.T) {
	c := Coord{Name: "x"}
	eqs, err := Derive(oscillatorLagrangian(c), []Coord{c})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	accels, err := eqs.Solve()
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// ẍ = −k·x/m
	want := gosymbol.MulOf(
		gosymbol.N(-1), gosymbol.S("k"), c.Sym(),
		gosymbol.PowOf(gosymbol.S("m"), gosymbol.N(-1)),
	)
	if !Equivalent(accels[0], want) {
		t.Errorf("xdd = %s, want -k*x/m", gosymbol.String(gosymbol.Simplify(accels[0])))
	}
}

func TestSolve_SingularMatrix(t *testing.T) {
	c := Coord{Name: "x"}
	m := gosymbol.NewMatrix(1, 1)
	m.Set(0, 0, gosymbol.N(0))
	eqs := &Equations{Coords: []Coord{c}, M: m, F: []gosymbol.Expr{gosymbol.N(1)}}

	if _, err := eqs.Solve(); err == nil {
		t.Error("expected error for singular mass matrix")
	}
}

func TestSolve_TwoCoordinates(t *testing.T) {
	// Two uncoupled oscillators: the equations must decouple exactly.
	cx, cy := Coord{Name: "x"}, Coord{Name: "y"}
	coords := []Coord{cx, cy}

	L := gosymbol.AddOf(oscillatorLagrangian(cx), oscillatorLagrangian(cy))
	eqs, err := Derive(L, coords)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if !IsZeroExpr(eqs.M.Get(0, 1)) || !IsZeroExpr(eqs.M.Get(1, 0)) {
		t.Error("uncoupled oscillators should have zero off-diagonal mass entries")
	}

	accels, err := eqs.Solve()
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	wantY := gosymbol.MulOf(
		gosymbol.N(-1), gosymbol.S("k"), cy.Sym(),
		gosymbol.PowOf(gosymbol.S("m"), gosymbol.N(-1)),
	)
	if !Equivalent(accels[1], wantY) {
		t.Errorf("ydd = %s, want -k*y/m", gosymbol.String(gosymbol.Simplify(accels[1])))
	}
}

func TestSubAll(t *testing.T) {
	// x + y with x=1, y=2 evaluates to 3.
	e := gosymbol.AddOf(gosymbol.S("x"), gosymbol.S("y"))
	got := SubAll(e, map[string]gosymbol.Expr{
		"x": gosymbol.N(1),
		"y": gosymbol.N(2),
	})
	if !Equivalent(got, gosymbol.N(3)) {
		t.Errorf("SubAll result = %s, want 3", gosymbol.String(got))
	}
}

func TestEquivalent(t *testing.T) {
	x := gosymbol.S("x")

	tests := []struct {
		name string
		a, b gosymbol.Expr
		want bool
	}{
		{"commuted sum", gosymbol.AddOf(x, gosymbol.S("y")), gosymbol.AddOf(gosymbol.S("y"), x), true},
		{"pythagorean identity",
			gosymbol.AddOf(
				gosymbol.PowOf(gosymbol.SinOf(x), gosymbol.N(2)),
				gosymbol.PowOf(gosymbol.CosOf(x), gosymbol.N(2)),
			),
			gosymbol.N(1), true},
		{"distinct symbols", x, gosymbol.S("y"), false},
		{"off by constant", x, gosymbol.AddOf(x, gosymbol.N(1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equivalent(tt.a, tt.b); got != tt.want {
				t.Errorf("Equivalent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVanishesOnGrid_NonZero(t *testing.T) {
	if VanishesOnGrid(gosymbol.S("x")) {
		t.Error("a bare symbol does not vanish on a positive grid")
	}
}
