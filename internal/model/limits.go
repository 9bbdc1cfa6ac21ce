package model

import (
	"fmt"

	"github.com/njchilds90/gosymbol"

	"github.com/kmurari/springpend/internal/lagrange"
)

// LimitCheck is the outcome of a single reduction check.
type LimitCheck struct {
	Name   string
	Passed bool
	Detail string
}

// LimitReport collects the outcomes of every reduction check. The checks
// are the correctness oracle for the derived model: there is no other
// validation of the symbolic pipeline.
type LimitReport struct {
	Checks []LimitCheck
}

func (r *LimitReport) AllPassed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

func (r *LimitReport) add(name string, passed bool, detail string) {
	r.Checks = append(r.Checks, LimitCheck{Name: name, Passed: passed, Detail: detail})
}

func zero() gosymbol.Expr { return gosymbol.N(0) }

// frozenExtensions pins both extensions: a = ȧ = ä = 0. This is the
// operational form of the infinite-stiffness limit, where the springs
// become rigid rods.
func frozenExtensions(e gosymbol.Expr) gosymbol.Expr {
	return lagrange.SubAll(e, map[string]gosymbol.Expr{
		"a1": zero(), "a1d": zero(), "a1dd": zero(),
		"a2": zero(), "a2d": zero(), "a2dd": zero(),
	})
}

// CheckReductions derives the spring model and the independent reference
// systems, then verifies every limiting-case reduction. A nil error with a
// failed check in the report means the algebra disagreed, not that the
// machinery broke.
func CheckReductions() (*LimitReport, error) {
	spring, err := BuildSpring()
	if err != nil {
		return nil, fmt.Errorf("deriving spring model: %w", err)
	}
	rigid, err := BuildRigid()
	if err != nil {
		return nil, fmt.Errorf("deriving rigid reference: %w", err)
	}
	single, err := BuildSingle()
	if err != nil {
		return nil, fmt.Errorf("deriving single pendulum reference: %w", err)
	}
	osc, err := BuildOscillator()
	if err != nil {
		return nil, fmt.Errorf("deriving oscillator reference: %w", err)
	}

	report := &LimitReport{}

	// Stiff limit: with the extensions pinned, the angular residuals of
	// the spring system must match the rigid double pendulum exactly.
	for i, name := range []string{"th1", "th2"} {
		springRes := frozenExtensions(spring.Residuals[2*i])
		rigidRes := rigid.Residuals[i]
		ok := lagrange.Equivalent(springRes, rigidRes)
		report.add(
			fmt.Sprintf("stiff limit (%s equation vs rigid double pendulum)", name),
			ok,
			fmt.Sprintf("constrained residual: %s", gosymbol.String(springRes)),
		)
	}

	// Static extension vanishes as stiffness grows: substitute k1 = 1/eps
	// and take the genuine symbolic limit eps -> 0 of
	// a* = (m1+m2)·g·cos(th1)/k1.
	aStar := gosymbol.MulOf(
		gosymbol.AddOf(gosymbol.S("m1"), gosymbol.S("m2")),
		gosymbol.S("g"),
		gosymbol.CosOf(gosymbol.S("th1")),
		gosymbol.PowOf(gosymbol.S("k1"), gosymbol.N(-1)),
	)
	inEps := gosymbol.Sub(aStar, "k1", gosymbol.PowOf(gosymbol.S("eps"), gosymbol.N(-1)))
	lim := gosymbol.Limit(inEps, "eps", gosymbol.N(0))
	limOK := lim.Success && lagrange.IsZeroExpr(lim.Value)
	detail := "limit failed"
	if lim.Success {
		detail = fmt.Sprintf("lim = %s", gosymbol.String(lim.Value))
	}
	report.add("stiff limit (static extension -> 0)", limOK, detail)

	// Single pendulum: removing the second bob and pinning the first
	// spring must reduce the th1 equation to the rigid single pendulum.
	th1Res := lagrange.SubAll(spring.Residuals[0], map[string]gosymbol.Expr{
		"m2": zero(),
		"a1": zero(), "a1d": zero(), "a1dd": zero(),
	})
	ok := lagrange.Equivalent(th1Res, single.Residuals[0])
	report.add("single pendulum limit (m2 = 0, first spring rigid)", ok,
		fmt.Sprintf("reduced residual: %s", gosymbol.String(th1Res)))

	// Spring SHM: with the angle frozen and the second bob removed, the a1
	// equation must be the vertical spring oscillator.
	a1Res := lagrange.SubAll(spring.Residuals[1], map[string]gosymbol.Expr{
		"m2": zero(),
		"th1": zero(), "th1d": zero(), "th1dd": zero(),
	})
	ok = lagrange.Equivalent(a1Res, osc.Residuals[0])
	report.add("spring oscillator limit (angle frozen, m2 = 0)", ok,
		fmt.Sprintf("reduced residual: %s", gosymbol.String(a1Res)))

	// Slack second spring: with k2 = 0 and the support frozen, the a2
	// equation loses its restoring term and reduces to free fall along
	// the rod: m2·ä2 − m2·g = 0.
	a2Res := lagrange.SubAll(spring.Residuals[3], map[string]gosymbol.Expr{
		"k2":  zero(),
		"th1": zero(), "th1d": zero(), "th1dd": zero(),
		"a1d": zero(), "a1dd": zero(),
		"th2": zero(), "th2d": zero(), "th2dd": zero(),
	})
	freeFall := gosymbol.AddOf(
		gosymbol.MulOf(gosymbol.S("m2"), gosymbol.S("a2dd")),
		gosymbol.MulOf(gosymbol.N(-1), gosymbol.S("m2"), gosymbol.S("g")),
	)
	ok = lagrange.Equivalent(a2Res, freeFall)
	report.add("slack spring limit (k2 = 0, free radial motion)", ok,
		fmt.Sprintf("reduced residual: %s", gosymbol.String(a2Res)))

	return report, nil
}
