package analysis

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/kmurari/springpend/internal/dynamo"
	"github.com/kmurari/springpend/internal/integrators"
)

// saddle has eigenvalues +1 and -1, so any generic perturbation
// grows like e^t and the largest exponent is exactly 1.
type saddle struct{}

func (s *saddle) StateDim() int { return 2 }

func (s *saddle) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], x[0]}
}

type contraction struct{}

func (c *contraction) StateDim() int { return 2 }

func (c *contraction) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-x[0], -x[1]}
}

func TestFitExponent_Saddle(t *testing.T) {
	div := Diverge(&saddle{}, integrators.NewRK4(), dynamo.State{0, 0}, 0, 1e-8, 0.01, 10.0)
	if div == nil {
		t.Fatal("Diverge returned nil")
	}

	fit := FitExponent(div, 0)
	if fit.Samples == 0 {
		t.Fatal("fit has no samples")
	}

	if math.Abs(fit.Lambda-1.0) > 0.05 {
		t.Errorf("expected exponent ~1, got %.4f", fit.Lambda)
	}
	if fit.R2 < 0.99 {
		t.Errorf("expected tight linear fit, R2=%.4f", fit.R2)
	}
}

func TestFitExponent_Contraction(t *testing.T) {
	div := Diverge(&contraction{}, integrators.NewRK4(), dynamo.State{1, 1}, 0, 1e-6, 0.01, 5.0)
	fit := FitExponent(div, 0)

	if fit.Lambda >= 0 {
		t.Errorf("contracting flow should give negative exponent, got %.4f", fit.Lambda)
	}
}

func TestFitExponent_SaturationCutoff(t *testing.T) {
	div := Diverge(&saddle{}, integrators.NewRK4(), dynamo.State{0, 0}, 0, 1e-8, 0.01, 25.0)

	full := FitExponent(div, 0)
	cut := FitExponent(div, 1.0)

	if cut.WindowEnd >= full.WindowEnd {
		t.Errorf("saturation cutoff did not shorten window: %.2f vs %.2f", cut.WindowEnd, full.WindowEnd)
	}
	if cut.Samples >= full.Samples {
		t.Errorf("saturation cutoff did not drop samples: %d vs %d", cut.Samples, full.Samples)
	}
}

func TestFitExponent_Empty(t *testing.T) {
	fit := FitExponent(nil, 1.0)
	if fit.Samples != 0 || fit.Lambda != 0 {
		t.Errorf("nil divergence should give zero fit, got %+v", fit)
	}
}

func TestDiverge_BadIndex(t *testing.T) {
	if div := Diverge(&saddle{}, integrators.NewRK4(), dynamo.State{0, 0}, 5, 1e-8, 0.01, 1.0); div != nil {
		t.Error("expected nil for out-of-range perturbation index")
	}
}

func TestRunningExponent_Saddle(t *testing.T) {
	run := RunningExponent(&saddle{}, integrators.NewRK4(), dynamo.State{0, 0}, 0.01, 10.0, 1e-8)
	if len(run.Lambda) == 0 {
		t.Fatal("no running estimates produced")
	}

	if got := run.Final(); math.Abs(got-1.0) > 0.1 {
		t.Errorf("expected running exponent ~1, got %.4f", got)
	}
}

func TestLargestExponent_MatchesRunning(t *testing.T) {
	run := RunningExponent(&saddle{}, integrators.NewRK4(), dynamo.State{0, 0}, 0.01, 5.0, 1e-8)
	single := LargestExponent(&saddle{}, integrators.NewRK4(), dynamo.State{0, 0}, 0.01, 5.0, 1e-8)

	if math.Abs(run.Final()-single) > 1e-12 {
		t.Errorf("LargestExponent disagrees with RunningExponent: %v vs %v", single, run.Final())
	}
}

type expander struct {
	rate float64
}

func (e *expander) StateDim() int { return 1 }

func (e *expander) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{e.rate * x[0]}
}

func TestStiffnessSweep_RecoverRates(t *testing.T) {
	newSystem := func(param float64) (dynamo.System, error) {
		return &expander{rate: param}, nil
	}
	newInteg := func() dynamo.Integrator { return integrators.NewRK4() }

	cfg := SweepConfig{
		Min: 0.5, Max: 1.5, Steps: 3,
		Epsilon: 1e-8, Saturation: 0,
		Dt: 0.01, Duration: 5.0,
	}

	points, err := StiffnessSweep(newSystem, newInteg, dynamo.State{0}, cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	for _, p := range points {
		if math.Abs(p.Lambda-p.Param) > 0.05 {
			t.Errorf("param %.2f: expected exponent ~%.2f, got %.4f", p.Param, p.Param, p.Lambda)
		}
	}
}

func TestStiffnessSweep_TooFewSteps(t *testing.T) {
	newSystem := func(param float64) (dynamo.System, error) {
		return &expander{rate: param}, nil
	}
	newInteg := func() dynamo.Integrator { return integrators.NewRK4() }

	if _, err := StiffnessSweep(newSystem, newInteg, dynamo.State{0}, SweepConfig{Steps: 1}); err == nil {
		t.Error("expected error for single-step sweep")
	}
}

func TestDivergence_WriteCSV(t *testing.T) {
	div := &Divergence{
		Times:      []float64{0.1, 0.2, 0.3},
		Separation: []float64{1e-9, 2e-9, 4e-9},
	}

	var buf bytes.Buffer
	if err := div.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "time,separation" {
		t.Errorf("bad header: %q", lines[0])
	}

	fields := strings.Split(lines[2], ",")
	if len(fields) != 2 {
		t.Fatalf("bad row: %q", lines[2])
	}
	sep, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || sep != 2e-9 {
		t.Errorf("row 2 separation = %q, want 2e-9", fields[1])
	}
}
