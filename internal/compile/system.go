package compile

import (
	"fmt"
	"math"

	"github.com/njchilds90/gosymbol"
	"gonum.org/v1/gonum/mat"

	"github.com/kmurari/springpend/internal/dynamo"
	"github.com/kmurari/springpend/internal/lagrange"
	"github.com/kmurari/springpend/internal/model"
)

// System is a derived symbolic model bound to one parameter set and
// lowered to numeric form. It implements dynamo.System by evaluating the
// compiled mass matrix and forcing vector at the current state and solving
// M·q̈ = F with an LU factorization each step.
//
// Not safe for concurrent use: Derive reuses internal scratch storage.
type System struct {
	name   string
	n      int // number of coordinates
	mass   []Fn
	force  []Fn
	energy Fn
	pos    [4]Fn

	mDense *mat.Dense
	fVec   *mat.VecDense
	acc    *mat.VecDense
	lu     *mat.LU
}

// NewSystem substitutes the parameter set into the symbolic equations and
// compiles everything down to closures over the flat state vector.
func NewSystem(m *model.Model, p model.Params) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	names := m.StateNames()
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	subs := make(map[string]gosymbol.Expr, len(p.Symbols()))
	for name, val := range p.Symbols() {
		subs[name] = gosymbol.NFloat(val)
	}
	bind := func(e gosymbol.Expr) (Fn, error) {
		return Compile(lagrange.SubAll(e, subs), index)
	}

	n := len(m.Coords)
	s := &System{
		name:   m.Name,
		n:      n,
		mass:   make([]Fn, n*n),
		force:  make([]Fn, n),
		mDense: mat.NewDense(n, n, nil),
		fVec:   mat.NewVecDense(n, nil),
		acc:    mat.NewVecDense(n, nil),
		lu:     &mat.LU{},
	}

	var err error
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if s.mass[i*n+j], err = bind(m.Eqs.M.Get(i, j)); err != nil {
				return nil, fmt.Errorf("mass matrix entry (%d,%d): %w", i, j, err)
			}
		}
		if s.force[i], err = bind(m.Eqs.F[i]); err != nil {
			return nil, fmt.Errorf("forcing entry %d: %w", i, err)
		}
	}

	total := gosymbol.AddOf(m.Kinetic, m.Potential)
	if s.energy, err = bind(total); err != nil {
		return nil, fmt.Errorf("energy: %w", err)
	}
	for i, e := range m.Positions {
		if s.pos[i], err = bind(e); err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
	}

	return s, nil
}

func (s *System) Name() string  { return s.name }
func (s *System) StateDim() int { return 2 * s.n }

// Derive evaluates dX/dt. The first half of the result copies the velocity
// block; the second half comes from the per-step linear solve. A singular
// mass matrix yields NaN accelerations, which the simulator's state
// validation turns into a halt.
func (s *System) Derive(x dynamo.State, t float64) dynamo.State {
	n := s.n
	dx := make(dynamo.State, 2*n)
	for i := 0; i < n; i++ {
		dx[i] = x[n+i]
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s.mDense.Set(i, j, s.mass[i*n+j](x))
		}
		s.fVec.SetVec(i, s.force[i](x))
	}

	s.lu.Factorize(s.mDense)
	if err := s.lu.SolveVecTo(s.acc, false, s.fVec); err != nil {
		for i := 0; i < n; i++ {
			dx[n+i] = math.NaN()
		}
		return dx
	}
	for i := 0; i < n; i++ {
		dx[n+i] = s.acc.AtVec(i)
	}
	return dx
}

// Energy reports total mechanical energy T + V at the given state.
func (s *System) Energy(x dynamo.State) float64 {
	return s.energy(x)
}

// Positions returns the Cartesian bob coordinates (x1, y1, x2, y2) for
// rendering, with the pivot at the origin and y pointing up.
func (s *System) Positions(x dynamo.State) (x1, y1, x2, y2 float64) {
	return s.pos[0](x), s.pos[1](x), s.pos[2](x), s.pos[3](x)
}
