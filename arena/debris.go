package arena

import (
	"math"

	"github.com/bytearena/box2d"

	"github.com/pthm-cable/scorch/config"
)

// SpawnDebris creates a burst of circular particles at center with
// randomized outward velocity and spin. Debris masks against nothing, so
// it can never affect agents, the ground or the laser; it exists as
// visual feedback for a kill and falls freely until culled.
func (w *World) SpawnDebris(center Vec2) {
	cfg := config.Cfg().Debris

	for i := 0; i < cfg.Count; i++ {
		bd := box2d.MakeB2BodyDef()
		bd.Type = box2d.B2BodyType.B2_dynamicBody
		bd.Position.Set(center.X, center.Y)
		body := w.physics.CreateBody(&bd)

		shape := box2d.MakeB2CircleShape()
		shape.M_radius = cfg.Radius

		fd := box2d.MakeB2FixtureDef()
		fd.Shape = &shape
		fd.Density = 1
		fd.Filter.CategoryBits = categoryDebris
		fd.Filter.MaskBits = 0
		fd.UserData = fixtureRef{Kind: fixDebris}
		body.CreateFixtureFromDef(&fd)

		dir := w.rng.Float64() * 2 * math.Pi
		speed := cfg.MinSpeed + w.rng.Float64()*(cfg.MaxSpeed-cfg.MinSpeed)
		body.SetLinearVelocity(box2d.MakeB2Vec2(math.Cos(dir)*speed, math.Sin(dir)*speed))
		body.SetAngularVelocity((w.rng.Float64()*2 - 1) * cfg.MaxSpin)

		w.debris = append(w.debris, body)
	}
}

// CleanupDebris removes particles that have fallen below the cleanup
// threshold. Called once per tick after Step.
func (w *World) CleanupDebris() {
	cleanupY := config.Cfg().Debris.CleanupY

	kept := w.debris[:0]
	for _, b := range w.debris {
		if b.GetPosition().Y < cleanupY {
			w.physics.DestroyBody(b)
			continue
		}
		kept = append(kept, b)
	}
	w.debris = kept
}

// DebrisCount returns the number of live debris particles.
func (w *World) DebrisCount() int {
	return len(w.debris)
}
