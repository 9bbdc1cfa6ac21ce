package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kmurari/springpend/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(10, 5)
	c.Set(3, 3)
	c.Set(10, 10)

	svg := CanvasToSVG(c, 4.0)

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML header")
	}
	if !strings.Contains(svg, "<circle") {
		t.Error("lit dots should produce circles")
	}
	if !strings.Contains(svg, "</svg>") {
		t.Error("document not closed")
	}
}

func TestCanvasToSVG_Nil(t *testing.T) {
	if svg := CanvasToSVG(nil, 4.0); svg != "" {
		t.Errorf("nil canvas should produce empty output, got %d bytes", len(svg))
	}
}

func TestTrailToSVG(t *testing.T) {
	trail := []viz.TrailPoint{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 2, Y: 0},
	}

	svg := TrailToSVG(trail, 400, 300, "#00ff88")

	if !strings.Contains(svg, "<polyline") {
		t.Error("missing polyline element")
	}
	if !strings.Contains(svg, `width="400"`) || !strings.Contains(svg, `height="300"`) {
		t.Error("wrong document dimensions")
	}
}

func TestTrailToSVG_TooFewPoints(t *testing.T) {
	if svg := TrailToSVG([]viz.TrailPoint{{X: 1, Y: 1}}, 100, 100, "#fff"); svg != "" {
		t.Error("single point should produce empty output")
	}
}

func TestTrailToSVG_DegenerateRange(t *testing.T) {
	// All points on a vertical line: x range is zero and must not
	// divide by zero.
	trail := []viz.TrailPoint{
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 1, Y: 2},
	}
	svg := TrailToSVG(trail, 100, 100, "#fff")
	if !strings.Contains(svg, "<polyline") {
		t.Error("degenerate range should still render")
	}
}

func TestWriteCanvasSVG(t *testing.T) {
	c := viz.NewCanvas(10, 5)
	c.DrawLine(0, 0, 15, 15)

	path := filepath.Join(t.TempDir(), "frame.svg")
	if err := WriteCanvasSVG(path, c, 4.0); err != nil {
		t.Fatalf("WriteCanvasSVG failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(raw), "<circle") {
		t.Error("expected dot circles in written SVG")
	}
}

func TestWriteCanvasSVG_NilCanvas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.svg")
	if err := WriteCanvasSVG(path, nil, 4.0); err == nil {
		t.Error("expected error for nil canvas")
	}
}
