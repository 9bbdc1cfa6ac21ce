package viz

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kmurari/springpend/internal/analysis"
	"github.com/kmurari/springpend/internal/dynamo"
)

func linePoints(xs, ys []float64) (plotter.XYs, error) {
	if len(xs) != len(ys) || len(xs) == 0 {
		return nil, fmt.Errorf("plot data invalid: %d x-values, %d y-values", len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts, nil
}

func addLine(p *plot.Plot, xs, ys []float64) error {
	pts, err := linePoints(xs, ys)
	if err != nil {
		return err
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return nil
}

// SaveSeriesPNG plots one state component against time.
func SaveSeriesPNG(path, title, ylabel string, times []float64, states []dynamo.State, idx int) error {
	if len(states) == 0 || idx < 0 || idx >= len(states[0]) {
		return fmt.Errorf("state index %d out of range", idx)
	}

	ys := make([]float64, len(states))
	for i, s := range states {
		ys[i] = s[idx]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = ylabel

	if err := addLine(p, times, ys); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// SaveDivergencePNG plots ln(separation) against time with the fitted
// exponent line overlaid.
func SaveDivergencePNG(path string, div *analysis.Divergence, fit analysis.Fit) error {
	if div == nil || len(div.Times) == 0 {
		return fmt.Errorf("empty divergence record")
	}

	xs := make([]float64, 0, len(div.Times))
	ys := make([]float64, 0, len(div.Times))
	for i, sep := range div.Separation {
		if sep <= 0 {
			continue
		}
		xs = append(xs, div.Times[i])
		ys = append(ys, math.Log(sep))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("separation growth  λ=%.3f  R²=%.3f", fit.Lambda, fit.R2)
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "ln separation"

	if err := addLine(p, xs, ys); err != nil {
		return err
	}

	if fit.Samples > 1 {
		fitYs := []float64{fit.Intercept, fit.Intercept + fit.Lambda*fit.WindowEnd}
		fitXs := []float64{0, fit.WindowEnd}
		pts, err := linePoints(fitXs, fitYs)
		if err != nil {
			return err
		}
		fitLine, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		fitLine.LineStyle.Width = vg.Points(1)
		fitLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(fitLine)
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// SaveSweepPNG plots the fitted exponent across the swept parameter.
func SaveSweepPNG(path, xlabel string, points []analysis.SweepPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("empty sweep")
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, pt := range points {
		xs[i] = pt.Param
		ys[i] = pt.Lambda
	}

	p := plot.New()
	p.Title.Text = "largest Lyapunov exponent"
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "λ (1/s)"

	if err := addLine(p, xs, ys); err != nil {
		return err
	}

	pts, err := linePoints(xs, ys)
	if err != nil {
		return err
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(scatter)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
