package lagrange

import (
	"math"
	"sort"

	"github.com/njchilds90/gosymbol"
)

// SampleTol is the tolerance for the numeric fallback of the equivalence
// predicate. An expression whose canonical form is not a literal zero is
// still accepted as zero when it evaluates below this bound on every
// assignment of the sample grid.
const SampleTol = 1e-9

// Fixed positive sample values assigned to free symbols during the numeric
// fallback. Irrational-ish spacing avoids accidental cancellations that a
// round grid (0.5, 1.0, ...) could produce.
var samplePool = []float64{0.37, 0.83, 1.19, 1.61, 2.23, 2.71}

// Equivalent reports whether two expressions are algebraically equal.
// Exact symbolic equality is attempted first: the difference is expanded and
// canonicalized, then trig-simplified. When canonicalization stops short of
// a literal zero the difference is evaluated on a deterministic grid of
// assignments and accepted if it vanishes everywhere within SampleTol.
func Equivalent(a, b gosymbol.Expr) bool {
	diff := gosymbol.Canonicalize(gosymbol.AddOf(a, gosymbol.MulOf(gosymbol.N(-1), b)))
	if isZero(diff) {
		return true
	}
	diff = gosymbol.Simplify(gosymbol.TrigSimplify(diff))
	if isZero(diff) {
		return true
	}
	return VanishesOnGrid(diff)
}

// IsZeroExpr reports whether e is algebraically zero.
func IsZeroExpr(e gosymbol.Expr) bool {
	return Equivalent(e, gosymbol.N(0))
}

func isZero(e gosymbol.Expr) bool {
	n, ok := e.(*gosymbol.Num)
	return ok && n.IsZero()
}

// VanishesOnGrid evaluates e on a fixed grid of positive assignments to its
// free symbols and reports whether every value is below SampleTol. The grid
// rotates each symbol through the sample pool with a per-symbol offset so no
// two symbols share a value within one assignment.
func VanishesOnGrid(e gosymbol.Expr) bool {
	free := gosymbol.FreeSymbols(e)
	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		v, ok := e.Eval()
		return ok && math.Abs(v.Float64()) < SampleTol
	}

	for shift := 0; shift < len(samplePool); shift++ {
		point := e
		for i, name := range names {
			val := samplePool[(shift+i)%len(samplePool)]
			point = gosymbol.Sub(point, name, gosymbol.NFloat(val))
		}
		v, ok := gosymbol.Simplify(point).Eval()
		if !ok {
			return false
		}
		if math.Abs(v.Float64()) >= SampleTol {
			return false
		}
	}
	return true
}
