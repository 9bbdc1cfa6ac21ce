package viz

// TrailPoint is a faded bob position in world coordinates.
type TrailPoint struct {
	X, Y float64
}

// DrawPendulum renders the two-link spring pendulum onto the canvas:
// coiled springs for the links, circles for the bobs, dots for the
// trail of the outer bob. Positions are world coordinates with the
// pivot at the origin and y pointing up.
func DrawPendulum(c *Canvas, proj Projection, x1, y1, x2, y2 float64, trail []TrailPoint) {
	for _, pt := range trail {
		tx, ty := proj.Dot(pt.X, pt.Y)
		c.Set(tx, ty)
	}

	pivotX, pivotY := proj.Dot(0, 0)
	b1x, b1y := proj.Dot(x1, y1)
	b2x, b2y := proj.Dot(x2, y2)

	c.DrawCoil(pivotX, pivotY, b1x, b1y, 6, 2.0)
	c.DrawCoil(b1x, b1y, b2x, b2y, 6, 2.0)

	c.DrawCircle(pivotX, pivotY, 1)
	c.DrawCircle(b1x, b1y, 2)
	c.DrawCircle(b2x, b2y, 3)
}
