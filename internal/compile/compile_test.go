package compile

import (
	"math"
	"testing"

	"github.com/njchilds90/gosymbol"
)

func TestCompile_Arithmetic(t *testing.T) {
	index := map[string]int{"x": 0, "y": 1}

	tests := []struct {
		name string
		expr gosymbol.Expr
		vars []float64
		want float64
	}{
		{"constant", gosymbol.N(3), []float64{0, 0}, 3},
		{"symbol", gosymbol.S("y"), []float64{1, 7}, 7},
		{"sum", gosymbol.AddOf(gosymbol.S("x"), gosymbol.S("y")), []float64{2, 3}, 5},
		{"product", gosymbol.MulOf(gosymbol.N(2), gosymbol.S("x"), gosymbol.S("y")), []float64{3, 4}, 24},
		{"square", gosymbol.PowOf(gosymbol.S("x"), gosymbol.N(2)), []float64{5, 0}, 25},
		{"reciprocal", gosymbol.PowOf(gosymbol.S("x"), gosymbol.N(-1)), []float64{4, 0}, 0.25},
		{"sine", gosymbol.SinOf(gosymbol.S("x")), []float64{math.Pi / 2, 0}, 1},
		{"cosine", gosymbol.CosOf(gosymbol.S("x")), []float64{0, 0}, 1},
		{"fraction", gosymbol.F(1, 2), []float64{0, 0}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Compile(tt.expr, index)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if got := fn(tt.vars); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("eval = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestCompile_UnboundSymbol(t *testing.T) {
	_, err := Compile(gosymbol.S("missing"), map[string]int{"x": 0})
	if err == nil {
		t.Error("expected error for a symbol outside the index")
	}
}

func TestCompile_HighIntegerPower(t *testing.T) {
	fn, err := Compile(gosymbol.PowOf(gosymbol.S("x"), gosymbol.N(5)), map[string]int{"x": 0})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if got := fn([]float64{2}); got != 32 {
		t.Errorf("2^5 = %g", got)
	}
}
