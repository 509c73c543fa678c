// Package arena owns the shared physics space: the ground, the advancing
// laser, the articulated dummies and their death debris. Rigid-body
// dynamics are delegated to Box2D; arena reacts to its contact events.
package arena

// Vec2 is a world-space point in pixel units, Y up.
type Vec2 struct {
	X, Y float64
}

// Color is a display color picked per dummy at creation.
type Color struct {
	R, G, B, A uint8
}

// SegmentTag identifies which body part a fixture belongs to. Collision
// callbacks switch on the tag instead of comparing body identities.
type SegmentTag uint8

const (
	SegTrunk SegmentTag = iota
	SegHead
	SegArmRight
	SegArmLeft
	SegUpperLegRight
	SegUpperLegLeft
	SegLowerLegRight
	SegLowerLegLeft
)

// String returns the segment name for logs and frames.
func (t SegmentTag) String() string {
	switch t {
	case SegTrunk:
		return "trunk"
	case SegHead:
		return "head"
	case SegArmRight:
		return "arm_r"
	case SegArmLeft:
		return "arm_l"
	case SegUpperLegRight:
		return "upper_leg_r"
	case SegUpperLegLeft:
		return "upper_leg_l"
	case SegLowerLegRight:
		return "lower_leg_r"
	case SegLowerLegLeft:
		return "lower_leg_l"
	}
	return "unknown"
}

// Collision categories. Debris masks against nothing so it can never
// affect agent physics.
const (
	categoryDummy  uint16 = 1 << 0
	categoryGround uint16 = 1 << 1
	categoryLaser  uint16 = 1 << 2
	categoryDebris uint16 = 1 << 3
)

// All dummy fixtures share one negative group index: parts of one dummy
// never collide with each other, and dummies never collide with dummies.
const dummyGroup int16 = -1

// fixtureKind partitions fixtures for contact dispatch.
type fixtureKind uint8

const (
	fixGround fixtureKind = iota
	fixLaser
	fixDebris
	fixAgent
)

// fixtureRef is stored as fixture user data. For agent fixtures it names
// the owning agent by id; the World's registry resolves the id to the
// Dummy, so no fixture holds an ownership edge back into the agent.
type fixtureRef struct {
	Kind    fixtureKind
	AgentID int
	Segment SegmentTag
}
