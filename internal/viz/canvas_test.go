package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetAndString(t *testing.T) {
	c := NewCanvas(10, 5)

	c.Set(0, 0)
	out := c.String()

	if lines := strings.Count(out, "\n"); lines != 5 {
		t.Errorf("expected 5 rows, got %d", lines)
	}
	if c.Grid[0][0] == 0x2800 {
		t.Error("dot not set")
	}
}

func TestCanvasBounds(t *testing.T) {
	c := NewCanvas(4, 4)

	// Out-of-range dots must be ignored, not panic.
	c.Set(-1, 2)
	c.Set(2, -5)
	c.Set(100, 2)
	c.Set(2, 100)

	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != 0x2800 {
				t.Fatalf("cell (%d,%d) modified by out-of-range set", i, j)
			}
		}
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(4, 4)
	c.DrawLine(0, 0, 7, 15)
	c.Clear()

	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != 0x2800 {
				t.Fatal("clear left dots behind")
			}
		}
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 10)
	c.DrawLine(0, 0, 19, 39)

	if c.Grid[0][0] == 0x2800 {
		t.Error("line start not drawn")
	}
	if c.Grid[9][9] == 0x2800 {
		t.Error("line end not drawn")
	}
}

func TestDrawCoilStaysNearSegment(t *testing.T) {
	c := NewCanvas(40, 10)
	c.DrawCoil(0, 20, 79, 20, 6, 2.0)

	lit := 0
	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != 0x2800 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("coil drew nothing")
	}
}

func TestProjectionCentersOrigin(t *testing.T) {
	c := NewCanvas(40, 20)
	proj := NewProjection(c, 2.5)

	x, y := proj.Dot(0, 0)
	if x != c.DotWidth()/2 || y != c.DotHeight()/2 {
		t.Errorf("origin mapped to (%d,%d), want canvas center", x, y)
	}

	// World +y maps to smaller dot y (screen up).
	_, yUp := proj.Dot(0, 1.0)
	if yUp >= y {
		t.Errorf("world up did not map to screen up: %d vs %d", yUp, y)
	}
}

func TestDrawPendulumLightsBobs(t *testing.T) {
	c := NewCanvas(40, 20)
	proj := NewProjection(c, 3.0)

	DrawPendulum(c, proj, 0.5, -1.0, 1.0, -2.0, []TrailPoint{{1.0, -2.0}})

	lit := 0
	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != 0x2800 {
				lit++
			}
		}
	}
	if lit < 10 {
		t.Errorf("pendulum render too sparse: %d cells", lit)
	}
}
