package arena

import (
	"math/rand"
	"time"

	"github.com/bytearena/box2d"

	"github.com/pthm-cable/scorch/config"
)

// World owns the physics space shared by one evaluation: static ground,
// the kinematic laser sweeping left to right, the live agent registry and
// transient death debris.
//
// Collision side effects run off Box2D's begin/separate events. The world
// is locked while those callbacks fire, so kill sequences are queued and
// drained right after each Step.
type World struct {
	physics box2d.B2World
	rng     *rand.Rand

	laser *box2d.B2Body

	// Agent registry: collision callbacks carry only an agent id; the
	// owning Dummy is resolved here. Killed agents are deregistered.
	agents map[int]*Dummy
	nextID int

	debris  []*box2d.B2Body
	strikes []int // agent ids struck during the last Step
}

// NewWorld builds the space with ground and laser and registers the
// collision listener. A nil rng gets a time-seeded one.
func NewWorld(rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cfg := config.Cfg()

	w := &World{
		physics: box2d.MakeB2World(box2d.MakeB2Vec2(0, cfg.Physics.GravityY)),
		rng:     rng,
		agents:  make(map[int]*Dummy),
	}
	w.addGround()
	w.addLaser()
	w.physics.SetContactListener(w)
	return w
}

func (w *World) addGround() {
	cfg := config.Cfg().Physics

	bd := box2d.MakeB2BodyDef()
	body := w.physics.CreateBody(&bd)

	edge := box2d.MakeB2EdgeShape()
	edge.Set(
		box2d.MakeB2Vec2(-cfg.GroundHalfSpan, cfg.GroundY),
		box2d.MakeB2Vec2(cfg.GroundHalfSpan, cfg.GroundY),
	)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &edge
	fd.Friction = cfg.GroundFriction
	fd.Restitution = cfg.GroundRestitution
	fd.Filter.CategoryBits = categoryGround
	fd.Filter.MaskBits = categoryDummy
	fd.UserData = fixtureRef{Kind: fixGround}
	body.CreateFixtureFromDef(&fd)
}

func (w *World) addLaser() {
	cfg := config.Cfg().Laser

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_kinematicBody
	bd.Position.Set(cfg.StartX, cfg.Height/2)
	w.laser = w.physics.CreateBody(&bd)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(cfg.Width/2, cfg.Height/2)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	// Sensor: the laser kills on touch but never pushes
	fd.IsSensor = true
	fd.Filter.CategoryBits = categoryLaser
	fd.Filter.MaskBits = categoryDummy
	fd.UserData = fixtureRef{Kind: fixLaser}
	w.laser.CreateFixtureFromDef(&fd)

	w.laser.SetLinearVelocity(box2d.MakeB2Vec2(cfg.Speed, 0))
}

// ResetLaser repositions the laser at its start offset with its constant
// sweep velocity restored. Called between generations, not between ticks.
func (w *World) ResetLaser() {
	cfg := config.Cfg().Laser
	w.laser.SetTransform(box2d.MakeB2Vec2(cfg.StartX, cfg.Height/2), 0)
	w.laser.SetLinearVelocity(box2d.MakeB2Vec2(cfg.Speed, 0))
}

// LaserX returns the laser's current horizontal position.
func (w *World) LaserX() float64 {
	return w.laser.GetPosition().X
}

// AddDummy creates an agent body at pos and registers it.
func (w *World) AddDummy(pos Vec2) *Dummy {
	w.nextID++
	d := newDummy(w, w.nextID, pos)
	w.agents[d.id] = d
	return d
}

// AgentCount returns the number of registered (non-terminal) agents.
func (w *World) AgentCount() int {
	return len(w.agents)
}

// KillAgent runs the full kill sequence: mark hit, spawn a debris burst
// at the final position, detach the body from the space. Idempotent.
// Must not be called while the physics world is stepping.
func (w *World) KillAgent(d *Dummy) {
	pos, ok := d.MarkAsHit()
	if !ok {
		return
	}
	w.SpawnDebris(pos)
	d.RemoveFromWorld()
	delete(w.agents, d.id)
}

// Step advances physics by exactly dt and then drains any kill events the
// step produced. Callers step once per tick; there is no sub-stepping.
func (w *World) Step(dt float64) {
	cfg := config.Cfg().Physics
	w.physics.Step(dt, cfg.VelocityIterations, cfg.PositionIterations)
	w.drainStrikes()
}

func (w *World) drainStrikes() {
	for _, id := range w.strikes {
		if d, ok := w.agents[id]; ok {
			w.KillAgent(d)
		}
	}
	w.strikes = w.strikes[:0]
}

// ClearTransient removes all debris, and optionally any agents still in
// the space. Used at generation boundaries to guarantee a clean world no
// matter how the previous generation ended.
func (w *World) ClearTransient(removeAgents bool) {
	for _, b := range w.debris {
		w.physics.DestroyBody(b)
	}
	w.debris = w.debris[:0]
	w.strikes = w.strikes[:0]

	if removeAgents {
		for id, d := range w.agents {
			d.RemoveFromWorld()
			delete(w.agents, id)
		}
	}
}

// BeginContact queues kill events and raises contact flags.
// Part of box2d.B2ContactListenerInterface; the world is locked here.
func (w *World) BeginContact(contact box2d.B2ContactInterface) {
	refA, okA := contact.GetFixtureA().GetUserData().(fixtureRef)
	refB, okB := contact.GetFixtureB().GetUserData().(fixtureRef)
	if !okA || !okB {
		return
	}
	w.dispatchContact(refA, refB, true)
	w.dispatchContact(refB, refA, true)
}

// EndContact clears contact flags on separation.
func (w *World) EndContact(contact box2d.B2ContactInterface) {
	refA, okA := contact.GetFixtureA().GetUserData().(fixtureRef)
	refB, okB := contact.GetFixtureB().GetUserData().(fixtureRef)
	if !okA || !okB {
		return
	}
	w.dispatchContact(refA, refB, false)
	w.dispatchContact(refB, refA, false)
}

// PreSolve is part of box2d.B2ContactListenerInterface.
func (w *World) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {}

// PostSolve is part of box2d.B2ContactListenerInterface.
func (w *World) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {}

// dispatchContact handles one ordered (agent, other) fixture pairing.
func (w *World) dispatchContact(agent, other fixtureRef, begin bool) {
	if agent.Kind != fixAgent {
		return
	}
	d, ok := w.agents[agent.AgentID]
	if !ok {
		return
	}

	switch other.Kind {
	case fixLaser:
		if begin {
			w.strikes = append(w.strikes, agent.AgentID)
		}
	case fixGround:
		switch agent.Segment {
		case SegHead:
			if begin {
				w.strikes = append(w.strikes, agent.AgentID)
			}
		case SegLowerLegRight, SegLowerLegLeft, SegArmRight, SegArmLeft:
			d.setContact(agent.Segment, begin)
		}
	}
}
