package component

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/core/ecs"
)

// Pos is the world position in blocks.
type Pos struct{ mgl64.Vec3 }

// Vel is the velocity in blocks per second.
type Vel struct{ mgl64.Vec3 }

// Ori is the facing direction, a unit vector.
type Ori struct{ Look mgl64.Vec3 }

// DefaultOri faces north.
func DefaultOri() Ori { return Ori{Look: mgl64.Vec3{0, 1, 0}} }

// PhysicsState is recomputed every tick by the physics system.
type PhysicsState struct {
	OnGround      bool
	OnCeiling     bool
	OnWall        *mgl64.Vec3
	TouchEntities []ecs.EntityID
	InLiquid      *float64 // submersion depth
	GroundVel     mgl64.Vec3
}

// Reset clears the per-tick contact data. The TouchEntities backing array and
// GroundVel, the velocity of the last contact, are kept.
func (p *PhysicsState) Reset() {
	touch := p.TouchEntities[:0]
	ground := p.GroundVel
	*p = PhysicsState{TouchEntities: touch, GroundVel: ground}
}

// OnSurface returns the normal of the surface the entity rests against,
// preferring ground, then ceiling, then wall.
func (p *PhysicsState) OnSurface() (mgl64.Vec3, bool) {
	switch {
	case p.OnGround:
		return mgl64.Vec3{0, 0, -1}, true
	case p.OnCeiling:
		return mgl64.Vec3{0, 0, 1}, true
	case p.OnWall != nil:
		return *p.OnWall, true
	}
	return mgl64.Vec3{}, false
}

// Submerged returns the liquid depth, zero when dry.
func (p *PhysicsState) Submerged() float64 {
	if p.InLiquid == nil {
		return 0
	}
	return *p.InLiquid
}
