// Package camera provides a 2D camera system for viewport control.
package camera

// Camera controls the viewport into the simulation world. The world is
// Y-up (physics convention); the screen is Y-down, so WorldToScreen
// flips the vertical axis around the camera center.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	// Follow smoothing factor per frame, in (0, 1]; 1 snaps instantly
	FollowLerp float64
}

// New creates a camera centered on (x, y) with 1:1 zoom.
func New(viewportW, viewportH, x, y float64) *Camera {
	return &Camera{
		X:          x,
		Y:          y,
		Zoom:       1.0,
		ViewportW:  viewportW,
		ViewportH:  viewportH,
		MinZoom:    0.25,
		MaxZoom:    4.0,
		FollowLerp: 0.08,
	}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius could
// be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Follow eases the camera center toward the target point.
func (c *Camera) Follow(tx, ty float64) {
	c.X += (tx - c.X) * c.FollowLerp
	c.Y += (ty - c.Y) * c.FollowLerp
}

// SetZoom clamps and applies a zoom level.
func (c *Camera) SetZoom(z float64) {
	if z < c.MinZoom {
		z = c.MinZoom
	}
	if z > c.MaxZoom {
		z = c.MaxZoom
	}
	c.Zoom = z
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
