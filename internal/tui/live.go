package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/kmurari/springpend/internal/dynamo"
	springmodel "github.com/kmurari/springpend/internal/model"
	"github.com/kmurari/springpend/internal/viz"
)

const (
	liveWidth   = 70
	liveHeight  = 22
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer prints the pendulum to the terminal as the simulation
// runs. It implements dynamo.Observer, throttled to the frame rate.
type LiveRenderer struct {
	positions func(dynamo.State) (x1, y1, x2, y2 float64)
	frameRate int
	lastFrame time.Time
	canvas    *viz.Canvas
	proj      viz.Projection
	trail     []viz.TrailPoint
}

// NewLiveRenderer builds a renderer. reach is the world radius to fit
// on screen, typically the maximum stretched length of both links.
func NewLiveRenderer(positions func(dynamo.State) (x1, y1, x2, y2 float64), reach float64, frameRate int) *LiveRenderer {
	canvas := viz.NewCanvas(liveWidth, liveHeight)
	return &LiveRenderer{
		positions: positions,
		frameRate: frameRate,
		canvas:    canvas,
		proj:      viz.NewProjection(canvas, reach),
		trail:     make([]viz.TrailPoint, 0, 120),
	}
}

func (r *LiveRenderer) OnStep(x dynamo.State, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	x1, y1, x2, y2 := r.positions(x)

	r.trail = append(r.trail, viz.TrailPoint{X: x2, Y: y2})
	if len(r.trail) > 120 {
		r.trail = r.trail[1:]
	}

	r.canvas.Clear()
	viz.DrawPendulum(r.canvas, r.proj, x1, y1, x2, y2, r.trail)
	r.render(x, t)
}

func (r *LiveRenderer) render(x dynamo.State, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  spring double pendulum  t=%.2fs\n", t))
	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")
	b.WriteString(r.canvas.String())
	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")

	if len(x) >= springmodel.StateDim {
		b.WriteString(fmt.Sprintf("  th1=%6.3f  a1=%6.3f  th2=%6.3f  a2=%6.3f\n",
			x[springmodel.IdxTh1], x[springmodel.IdxA1], x[springmodel.IdxTh2], x[springmodel.IdxA2]))
	}

	fmt.Print(b.String())
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }
