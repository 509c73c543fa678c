package arena

import (
	"fmt"
	"math"

	"github.com/bytearena/box2d"

	"github.com/pthm-cable/scorch/config"
)

// MotorCount is the width of the motor command vector: two shoulders,
// two hips, two knees. The head joint is unmotored.
const MotorCount = 6

// SensorCount is the width of the sensor vector.
const SensorCount = 29

// Motor command / joint sensor ordering.
const (
	jointShoulderR = iota
	jointShoulderL
	jointHipR
	jointHipL
	jointKneeR
	jointKneeL
)

// Contact flag ordering within the sensor vector.
const (
	contactFootR = iota
	contactFootL
	contactHandR
	contactHandL
	contactCount
)

// Dummy is one articulated agent body: a trunk with head, arms and
// two-segment legs, driven by six rate-controlled motors.
//
// Lifecycle is Alive -> Hit, with no way back. Once hit the body is
// detached from the world: sensors read all zeros, motor commands are
// ignored, and position reads return the last simulated value.
type Dummy struct {
	id    int
	world *World
	color Color

	startX float64

	trunk  *box2d.B2Body
	head   *box2d.B2Body
	bodies []*box2d.B2Body

	// Absolute orientation sensors read these seven segments in order:
	// trunk, arms, upper legs, lower legs. The head is deliberately not
	// part of the sensed chain; its angle feeds the stability metric only.
	oriented [7]*box2d.B2Body

	motored   [MotorCount]*box2d.B2RevoluteJoint
	headJoint *box2d.B2RevoluteJoint

	contacts [contactCount]bool

	hit     bool
	removed bool
	finalX  float64
	lastPos Vec2
}

// newDummy assembles the body parts, joints and motors at pos.
// The id comes from the World's allocator.
func newDummy(w *World, id int, pos Vec2) *Dummy {
	cfg := config.Cfg().Dummy

	d := &Dummy{
		id:     id,
		world:  w,
		startX: pos.X,
		color: Color{
			R: uint8(60 + w.rng.Intn(180)),
			G: uint8(60 + w.rng.Intn(180)),
			B: uint8(60 + w.rng.Intn(180)),
			A: 255,
		},
		lastPos: pos,
	}

	// Trunk
	d.trunk = d.addPart(SegTrunk, cfg.TrunkMass, cfg.TrunkWidth, cfg.TrunkHeight, pos, cfg.LimbFriction)

	// Head, pivoted on the trunk top, no motor
	headAnchor := Vec2{pos.X, pos.Y + cfg.TrunkHeight/2}
	headPos := Vec2{headAnchor.X, headAnchor.Y + cfg.HeadSize/2}
	d.head = d.addPart(SegHead, cfg.HeadMass, cfg.HeadSize, cfg.HeadSize, headPos, cfg.LimbFriction)
	d.headJoint = d.pivot(d.trunk, d.head, headAnchor, false, 0, 0)

	// Arms hang from the shoulders at the upper trunk
	for i, side := range []float64{1, -1} {
		anchor := Vec2{pos.X + side*cfg.TrunkWidth/2, pos.Y + cfg.TrunkHeight/4}
		armPos := Vec2{anchor.X, anchor.Y - cfg.ArmLength/2}
		tag := SegArmRight
		if side < 0 {
			tag = SegArmLeft
		}
		arm := d.addPart(tag, cfg.LimbMass, cfg.ArmWidth, cfg.ArmLength, armPos, cfg.LimbFriction)
		d.motored[jointShoulderR+i] = d.motorPivot(d.trunk, arm, anchor, false, 0, 0)
		d.oriented[1+i] = arm
	}

	// Legs: upper segment from the hip, lower segment from the knee
	for i, side := range []float64{1, -1} {
		hip := Vec2{pos.X + side*cfg.TrunkWidth/4, pos.Y - cfg.TrunkHeight/2}
		upperPos := Vec2{hip.X, hip.Y - cfg.UpperLegLen/2}
		upperTag, lowerTag := SegUpperLegRight, SegLowerLegRight
		if side < 0 {
			upperTag, lowerTag = SegUpperLegLeft, SegLowerLegLeft
		}
		upper := d.addPart(upperTag, cfg.LimbMass, cfg.UpperLegWidth, cfg.UpperLegLen, upperPos, cfg.LimbFriction)
		d.motored[jointHipR+i] = d.motorPivot(d.trunk, upper, hip, true, -math.Pi/2, math.Pi/2)

		knee := Vec2{hip.X, hip.Y - cfg.UpperLegLen}
		lowerPos := Vec2{knee.X, knee.Y - cfg.LowerLegLen/2}
		lower := d.addPart(lowerTag, cfg.LimbMass, cfg.LowerLegWidth, cfg.LowerLegLen, lowerPos, cfg.LimbFriction)
		// Knees bend one way only
		d.motored[jointKneeR+i] = d.motorPivot(upper, lower, knee, true, 0, math.Pi/2)

		d.oriented[3+i] = upper
		d.oriented[5+i] = lower
	}

	d.oriented[0] = d.trunk

	return d
}

// addPart creates one rectangular segment with the dummy's collision filter.
func (d *Dummy) addPart(tag SegmentTag, mass, width, height float64, pos Vec2, friction float64) *box2d.B2Body {
	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(pos.X, pos.Y)
	body := d.world.physics.CreateBody(&bd)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(width/2, height/2)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = mass / (width * height)
	fd.Friction = friction
	fd.Filter.CategoryBits = categoryDummy
	fd.Filter.MaskBits = categoryGround | categoryLaser
	fd.Filter.GroupIndex = dummyGroup
	fd.UserData = fixtureRef{Kind: fixAgent, AgentID: d.id, Segment: tag}
	body.CreateFixtureFromDef(&fd)

	d.bodies = append(d.bodies, body)
	return body
}

// pivot attaches child to parent with a revolute joint at the world anchor.
func (d *Dummy) pivot(parent, child *box2d.B2Body, anchor Vec2, limited bool, lower, upper float64) *box2d.B2RevoluteJoint {
	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(parent, child, box2d.MakeB2Vec2(anchor.X, anchor.Y))
	jd.CollideConnected = false
	if limited {
		jd.EnableLimit = true
		jd.LowerAngle = lower
		jd.UpperAngle = upper
	}
	return d.world.physics.CreateJoint(&jd).(*box2d.B2RevoluteJoint)
}

// motorPivot is pivot plus a rate-controlled motor with a torque cap.
func (d *Dummy) motorPivot(parent, child *box2d.B2Body, anchor Vec2, limited bool, lower, upper float64) *box2d.B2RevoluteJoint {
	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(parent, child, box2d.MakeB2Vec2(anchor.X, anchor.Y))
	jd.CollideConnected = false
	jd.EnableMotor = true
	jd.MotorSpeed = 0
	jd.MaxMotorTorque = config.Cfg().Dummy.MotorMaxTorque
	if limited {
		jd.EnableLimit = true
		jd.LowerAngle = lower
		jd.UpperAngle = upper
	}
	return d.world.physics.CreateJoint(&jd).(*box2d.B2RevoluteJoint)
}

// ID returns the process-unique agent id.
func (d *Dummy) ID() int { return d.id }

// Color returns the display color picked at creation.
func (d *Dummy) Color() Color { return d.color }

// Hit reports whether the dummy has reached its terminal state.
func (d *Dummy) Hit() bool { return d.hit }

// StartX returns the spawn x position, used for displacement metrics.
func (d *Dummy) StartX() float64 { return d.startX }

// FinalX returns the trunk x captured when the dummy was hit.
// Zero until MarkAsHit.
func (d *Dummy) FinalX() float64 { return d.finalX }

// Position returns the current trunk position. After removal it returns
// the last simulated value; it never errors.
func (d *Dummy) Position() Vec2 {
	if !d.removed {
		p := d.trunk.GetPosition()
		d.lastPos = Vec2{p.X, p.Y}
	}
	return d.lastPos
}

// HeadAngle returns the head's absolute angle, wrapped to [-pi, pi].
// Used by the orientation-stability metric, not part of the sensor vector.
func (d *Dummy) HeadAngle() float64 {
	if d.removed {
		return 0
	}
	return normAngle(d.head.GetAngle())
}

// SetMotorRates assigns target angular velocities to the six motors,
// scaling each rate in [-1,1] by the configured rate ceiling. A slice of
// the wrong length is rejected without touching any motor. No-op once hit.
func (d *Dummy) SetMotorRates(rates []float64) error {
	if d.hit {
		return nil
	}
	if len(rates) != MotorCount {
		return fmt.Errorf("dummy %d: got %d motor rates, want %d", d.id, len(rates), MotorCount)
	}
	ceiling := config.Cfg().Dummy.MotorRate
	for i, r := range rates {
		d.motored[i].SetMotorSpeed(r * ceiling)
	}
	return nil
}

// SensorData returns the 29-float sensor vector:
//
//	[0:6]   relative joint angles / pi, clamped to [-1, 1]
//	[6:13]  absolute segment orientations, wrapped, / 2pi
//	[13:19] joint angular velocities / velocity ceiling, clamped to [-1, 1]
//	[19:25] motor load fractions |torque| / max torque, clamped to [0, 1]
//	[25:29] contact flags: right/left foot, right/left hand
//
// All zeros once hit.
func (d *Dummy) SensorData() []float64 {
	out := make([]float64, SensorCount)
	if d.hit {
		return out
	}

	cfg := config.Cfg()
	invDT := cfg.Derived.InvDT
	maxTorque := cfg.Dummy.MotorMaxTorque
	velCeiling := cfg.Dummy.VelocityCeiling

	for i, j := range d.motored {
		out[i] = clamp(j.GetJointAngle()/math.Pi, -1, 1)
		out[13+i] = clamp(j.GetJointSpeed()/velCeiling, -1, 1)
		out[19+i] = clamp(math.Abs(j.GetMotorTorque(invDT))/maxTorque, 0, 1)
	}
	for i, b := range d.oriented {
		out[6+i] = normAngle(b.GetAngle()) / (2 * math.Pi)
	}
	for i := 0; i < contactCount; i++ {
		if d.contacts[i] {
			out[25+i] = 1
		}
	}
	return out
}

// MarkAsHit transitions the dummy to its terminal state. The first call
// captures the trunk position and returns it with ok=true; later calls
// are no-ops returning ok=false. final x never changes after the first call.
func (d *Dummy) MarkAsHit() (Vec2, bool) {
	if d.hit {
		return Vec2{}, false
	}
	d.hit = true
	pos := d.Position()
	d.finalX = pos.X
	return pos, true
}

// RemoveFromWorld detaches every owned joint and body from the physics
// world. Safe to call more than once; after the first call the dummy
// holds no world-owned resources.
func (d *Dummy) RemoveFromWorld() {
	if d.removed {
		return
	}
	d.Position() // refresh lastPos before the bodies go away
	d.removed = true

	for _, j := range d.motored {
		d.world.physics.DestroyJoint(j)
	}
	d.world.physics.DestroyJoint(d.headJoint)
	for _, b := range d.bodies {
		d.world.physics.DestroyBody(b)
	}
	d.bodies = nil
}

// setContact toggles the flag for ground contact on feet and hands.
// Called from the world's contact listener; other segments are ignored.
func (d *Dummy) setContact(tag SegmentTag, touching bool) {
	switch tag {
	case SegLowerLegRight:
		d.contacts[contactFootR] = touching
	case SegLowerLegLeft:
		d.contacts[contactFootL] = touching
	case SegArmRight:
		d.contacts[contactHandR] = touching
	case SegArmLeft:
		d.contacts[contactHandL] = touching
	}
}

// normAngle wraps an angle to [-pi, pi].
func normAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
