// Package compile lowers symbolic expressions into plain float64 closures
// so the derived equations of motion can drive a numeric integrator at
// full speed. Parameters are substituted symbolically before compilation,
// matching the pipeline: symbolic model -> parameter substitution ->
// numeric functions -> trajectories.
package compile

import (
	"fmt"
	"math"

	"github.com/njchilds90/gosymbol"
)

// Fn evaluates a compiled expression against a flat variable vector.
type Fn func(vars []float64) float64

// Compile walks the expression tree once and returns a closure evaluating
// it against the variable layout given by index. Symbols missing from the
// index are an error: every free symbol must be either a state variable or
// have been substituted away beforehand.
func Compile(e gosymbol.Expr, index map[string]int) (Fn, error) {
	switch v := e.(type) {
	case *gosymbol.Num:
		c := v.Float64()
		return func([]float64) float64 { return c }, nil

	case *gosymbol.Sym:
		i, ok := index[v.Name()]
		if !ok {
			return nil, fmt.Errorf("compile: unbound symbol %q", v.Name())
		}
		return func(vars []float64) float64 { return vars[i] }, nil

	case *gosymbol.Add:
		terms, err := compileAll(v.Terms(), index)
		if err != nil {
			return nil, err
		}
		return func(vars []float64) float64 {
			sum := 0.0
			for _, t := range terms {
				sum += t(vars)
			}
			return sum
		}, nil

	case *gosymbol.Mul:
		factors, err := compileAll(v.Factors(), index)
		if err != nil {
			return nil, err
		}
		return func(vars []float64) float64 {
			prod := 1.0
			for _, f := range factors {
				prod *= f(vars)
			}
			return prod
		}, nil

	case *gosymbol.Pow:
		return compilePow(v, index)

	case *gosymbol.Func:
		return compileFunc(v, index)
	}
	return nil, fmt.Errorf("compile: unsupported expression %s", gosymbol.String(e))
}

func compileAll(exprs []gosymbol.Expr, index map[string]int) ([]Fn, error) {
	fns := make([]Fn, len(exprs))
	for i, e := range exprs {
		fn, err := Compile(e, index)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return fns, nil
}

func compilePow(p *gosymbol.Pow, index map[string]int) (Fn, error) {
	base, err := Compile(p.Base(), index)
	if err != nil {
		return nil, err
	}

	if n, ok := p.ExpExpr().(*gosymbol.Num); ok {
		if n.IsInteger() {
			k := int(n.Float64())
			switch k {
			case -1:
				return func(vars []float64) float64 { return 1.0 / base(vars) }, nil
			case 2:
				return func(vars []float64) float64 { v := base(vars); return v * v }, nil
			case 3:
				return func(vars []float64) float64 { v := base(vars); return v * v * v }, nil
			}
			if k >= 0 && k <= 8 {
				return func(vars []float64) float64 {
					v := base(vars)
					out := 1.0
					for i := 0; i < k; i++ {
						out *= v
					}
					return out
				}, nil
			}
			return func(vars []float64) float64 { return math.Pow(base(vars), float64(k)) }, nil
		}
		c := n.Float64()
		if c == 0.5 {
			return func(vars []float64) float64 { return math.Sqrt(base(vars)) }, nil
		}
		return func(vars []float64) float64 { return math.Pow(base(vars), c) }, nil
	}

	exp, err := Compile(p.ExpExpr(), index)
	if err != nil {
		return nil, err
	}
	return func(vars []float64) float64 { return math.Pow(base(vars), exp(vars)) }, nil
}

func compileFunc(f *gosymbol.Func, index map[string]int) (Fn, error) {
	arg, err := Compile(f.Arg(), index)
	if err != nil {
		return nil, err
	}

	var op func(float64) float64
	switch f.FuncName() {
	case "sin":
		op = math.Sin
	case "cos":
		op = math.Cos
	case "tan":
		op = math.Tan
	case "exp":
		op = math.Exp
	case "ln":
		op = math.Log
	case "abs":
		op = math.Abs
	case "asin":
		op = math.Asin
	case "acos":
		op = math.Acos
	case "atan":
		op = math.Atan
	case "sinh":
		op = math.Sinh
	case "cosh":
		op = math.Cosh
	case "tanh":
		op = math.Tanh
	default:
		return nil, fmt.Errorf("compile: unsupported function %q", f.FuncName())
	}
	return func(vars []float64) float64 { return op(arg(vars)) }, nil
}
