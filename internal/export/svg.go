// Package export renders trajectories and terminal canvases as SVG
// documents for use outside the terminal.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/kmurari/springpend/internal/viz"
)

// braille dot-to-bit layout, matching the viz canvas packing.
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG renders a Braille canvas as an SVG dot grid. scale is the
// pixel size of one Braille dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.DotWidth()) * scale
	height := float64(canvas.DotHeight()) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// WriteCanvasSVG writes a canvas snapshot SVG to path.
func WriteCanvasSVG(path string, canvas *viz.Canvas, scale float64) error {
	svg := CanvasToSVG(canvas, scale)
	if svg == "" {
		return fmt.Errorf("export: nothing to render")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

// TrailToSVG renders a bob trajectory as a polyline. World coordinates
// have y pointing up; SVG has y pointing down, so the path is flipped.
func TrailToSVG(trail []viz.TrailPoint, width, height int, strokeColor string) string {
	if len(trail) < 2 {
		return ""
	}

	minX, maxX := trail[0].X, trail[0].X
	minY, maxY := trail[0].Y, trail[0].Y
	for _, p := range trail {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	// Margin keeps the stroke off the document edge.
	margin := 10.0
	w := float64(width) - 2*margin
	h := float64(height) - 2*margin

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, width, height, width, height, strokeColor))

	for i, p := range trail {
		px := margin + (p.X-minX)/rangeX*w
		py := margin + (maxY-p.Y)/rangeY*h
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteTrailSVG writes a trajectory SVG to path.
func WriteTrailSVG(path string, trail []viz.TrailPoint, width, height int) error {
	svg := TrailToSVG(trail, width, height, "#00ff88")
	if svg == "" {
		return fmt.Errorf("export: not enough points for a trajectory")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
