package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille-dot drawing surface. One terminal cell packs a
// 2x4 dot grid, so the drawable area is (Width*2) x (Height*4) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// DotWidth and DotHeight are the drawable extents in dot coordinates.
func (c *Canvas) DotWidth() int  { return c.Width * 2 }
func (c *Canvas) DotHeight() int { return c.Height * 4 }

// Set lights the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCoil draws a spring as a sinusoid along the segment from
// (x0, y0) to (x1, y1), offset perpendicular to the segment. coils is
// the number of full windings, amp the dot-space amplitude.
func (c *Canvas) DrawCoil(x0, y0, x1, y1 int, coils int, amp float64) {
	fx0, fy0 := float64(x0), float64(y0)
	fx1, fy1 := float64(x1), float64(y1)
	length := math.Hypot(fx1-fx0, fy1-fy0)
	if length < 1 {
		c.Set(x0, y0)
		return
	}

	// Unit direction and its perpendicular.
	ux, uy := (fx1-fx0)/length, (fy1-fy0)/length
	px, py := -uy, ux

	steps := int(length * 2)
	prevX, prevY := x0, y0
	for i := 1; i <= steps; i++ {
		s := float64(i) / float64(steps)
		phase := s * float64(coils) * 2 * math.Pi
		off := math.Sin(phase) * amp

		x := int(fx0 + ux*s*length + px*off)
		y := int(fy0 + uy*s*length + py*off)
		c.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
}

// DrawCircle lights dots on a circle of radius r (dot coordinates).
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	steps := 8 * r
	for i := 0; i < steps; i++ {
		a := float64(i) / float64(steps) * 2 * math.Pi
		c.Set(cx+int(float64(r)*math.Cos(a)), cy+int(float64(r)*math.Sin(a)))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Projection maps world coordinates onto canvas dots, y up in world
// space, y down on the canvas.
type Projection struct {
	CenterX, CenterY int
	Scale            float64
}

// NewProjection centers the world origin and fits worldRadius into the
// smaller canvas dimension.
func NewProjection(c *Canvas, worldRadius float64) Projection {
	w, h := float64(c.DotWidth()), float64(c.DotHeight())
	scale := math.Min(w, h) / (2 * worldRadius)
	return Projection{
		CenterX: c.DotWidth() / 2,
		CenterY: c.DotHeight() / 2,
		Scale:   scale,
	}
}

func (p Projection) Dot(wx, wy float64) (int, int) {
	// Braille dots are taller than wide, stretch x to compensate.
	return p.CenterX + int(wx*p.Scale*1.6), p.CenterY - int(wy*p.Scale)
}
