package analysis

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/kmurari/springpend/internal/dynamo"
)

// Divergence records the separation history of two trajectories that
// start a distance Epsilon apart along one state dimension.
type Divergence struct {
	Epsilon    float64
	PerturbIdx int
	Times      []float64
	Separation []float64
	Baseline   []dynamo.State
	Perturbed  []dynamo.State
}

// Diverge integrates a baseline and a perturbed copy side by side and
// records their Euclidean separation at every step. No renormalization
// is applied, so the record saturates once the pair decorrelates.
func Diverge(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	perturbIdx int,
	epsilon float64,
	dt, duration float64,
) *Divergence {
	if len(x0) == 0 || perturbIdx < 0 || perturbIdx >= len(x0) {
		return nil
	}

	steps := int(duration / dt)
	div := &Divergence{
		Epsilon:    epsilon,
		PerturbIdx: perturbIdx,
		Times:      make([]float64, 0, steps),
		Separation: make([]float64, 0, steps),
		Baseline:   make([]dynamo.State, 0, steps),
		Perturbed:  make([]dynamo.State, 0, steps),
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[perturbIdx] += epsilon

	t := 0.0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, t, dt)
		xp = integ.Step(dyn, xp, t, dt)
		t += dt

		if !x.IsValid() || !xp.IsValid() {
			break
		}

		div.Times = append(div.Times, t)
		div.Separation = append(div.Separation, x.Distance(xp))
		div.Baseline = append(div.Baseline, x.Clone())
		div.Perturbed = append(div.Perturbed, xp.Clone())
	}

	return div
}

// WriteCSV writes the separation series as (time, separation) rows.
func (d *Divergence) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "separation"}); err != nil {
		return err
	}
	for i := range d.Times {
		rec := []string{
			strconv.FormatFloat(d.Times[i], 'g', 17, 64),
			strconv.FormatFloat(d.Separation[i], 'g', 17, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the separation series to path.
func (d *Divergence) WriteCSVFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return d.WriteCSV(file)
}

// Fit is a least-squares line through ln(separation) versus time.
// Lambda is the slope, the largest Lyapunov exponent estimate.
type Fit struct {
	Lambda    float64
	Intercept float64
	R2        float64
	WindowEnd float64
	Samples   int
}

// FitExponent fits ln(separation) against time over the window before
// the separation first reaches saturation. Samples past saturation sit
// on the attractor diameter and carry no exponent information. A
// non-positive saturation disables the cutoff.
func FitExponent(div *Divergence, saturation float64) Fit {
	if div == nil || len(div.Times) < 2 {
		return Fit{}
	}

	end := len(div.Times)
	if saturation > 0 {
		for i, s := range div.Separation {
			if s >= saturation {
				end = i
				break
			}
		}
	}
	if end < 2 {
		end = int(math.Min(2, float64(len(div.Times))))
	}

	xs := make([]float64, 0, end)
	ys := make([]float64, 0, end)
	for i := 0; i < end; i++ {
		if div.Separation[i] <= 0 {
			continue
		}
		xs = append(xs, div.Times[i])
		ys = append(ys, math.Log(div.Separation[i]))
	}
	if len(xs) < 2 {
		return Fit{}
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)

	return Fit{
		Lambda:    beta,
		Intercept: alpha,
		R2:        r2,
		WindowEnd: xs[len(xs)-1],
		Samples:   len(xs),
	}
}
