package arena

import (
	"github.com/bytearena/box2d"

	"github.com/pthm-cable/scorch/config"
)

// Frame is a render snapshot of the world. The display layer draws frames
// and never touches the physics engine.
type Frame struct {
	GroundY        float64
	GroundHalfSpan float64

	LaserX      float64
	LaserWidth  float64
	LaserHeight float64

	Parts  []PartQuad
	Debris []DebrisDot
}

// PartQuad is one body segment's world-space corner points.
type PartQuad struct {
	AgentID int
	Segment SegmentTag
	Color   Color
	V       [4]Vec2
}

// DebrisDot is one debris particle.
type DebrisDot struct {
	Pos    Vec2
	Radius float64
}

// Frame captures the current world state for drawing.
func (w *World) Frame() *Frame {
	cfg := config.Cfg()

	f := &Frame{
		GroundY:        cfg.Physics.GroundY,
		GroundHalfSpan: cfg.Physics.GroundHalfSpan,
		LaserX:         w.LaserX(),
		LaserWidth:     cfg.Laser.Width,
		LaserHeight:    cfg.Laser.Height,
	}

	for _, d := range w.agents {
		f.Parts = d.appendQuads(f.Parts)
	}
	for _, b := range w.debris {
		p := b.GetPosition()
		f.Debris = append(f.Debris, DebrisDot{Pos: Vec2{p.X, p.Y}, Radius: cfg.Debris.Radius})
	}
	return f
}

// appendQuads appends one quad per body segment in world space.
func (d *Dummy) appendQuads(out []PartQuad) []PartQuad {
	if d.removed {
		return out
	}
	for _, b := range d.bodies {
		fixture := b.GetFixtureList()
		if fixture == nil {
			continue
		}
		poly, ok := fixture.GetShape().(*box2d.B2PolygonShape)
		if !ok || poly.M_count < 4 {
			continue
		}
		ref, _ := fixture.GetUserData().(fixtureRef)

		q := PartQuad{AgentID: d.id, Segment: ref.Segment, Color: d.color}
		for i := 0; i < 4; i++ {
			p := b.GetWorldPoint(poly.M_vertices[i])
			q.V[i] = Vec2{p.X, p.Y}
		}
		out = append(out, q)
	}
	return out
}
