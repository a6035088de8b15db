package charstate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/component"
)

// Glide is airborne with the glider deployed.
type Glide struct{ noInput }

func (Glide) Kind() Kind { return KindGlide }

func (s Glide) Behavior(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	switch {
	case d.onGround():
		u.Character = GlideWield{}
		return u
	case d.submerged() > SubmergedExit, !d.hasGlider():
		u.Character = Idle{}
		return u
	}

	xy := mgl64.Vec2{u.Vel.X(), u.Vel.Y()}
	horizontal := xy.Len()
	if horizontal < GlideSpeed {
		dir := d.Inputs.MoveDir
		if l := dir.Len(); l > 1 {
			dir = dir.Mul(1 / l)
		}
		xy = xy.Add(dir.Mul(GlideAccel * d.Dt))
		if l := xy.Len(); l > GlideSpeed {
			xy = xy.Mul(GlideSpeed / l)
		}
	}
	vz := u.Vel.Z()
	if vz < 0 {
		lift := (GlideAntigrav + vz*vz*0.15) * clamp(xy.Len()*0.075, 0.2, 1.0)
		vz += d.Dt * lift
	}
	u.Vel.Vec3 = mgl64.Vec3{xy.X(), xy.Y(), vz}

	if xy.Len() > 1e-6 {
		face := xy.Normalize()
		u.Ori.Look = mgl64.Vec3{face.X(), face.Y(), 0}
	}
	return u
}

func (Glide) Unwield(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	u.Character = Idle{}
	return u
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

// GlideWield holds the glider on the ground, ready to take off.
type GlideWield struct{}

func (GlideWield) Kind() Kind { return KindGlideWield }

func (s GlideWield) Behavior(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	handleMove(d, &u, 1.0)
	handleOrientation(d, &u, 1.0)
	handleJump(d, &u)
	switch {
	case !d.hasGlider(), d.submerged() > SubmergedExit:
		u.Character = Idle{}
	case !d.onGround():
		u.Character = Glide{}
	}
	return u
}

func (GlideWield) Wield(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	u.Character = Wielding{}
	return u
}

func (GlideWield) Unwield(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	u.Character = Idle{}
	return u
}

func (GlideWield) SwapLoadout(d *JoinData, _ *OutputEvents) StateUpdate { return swapLoadout(d) }
func (GlideWield) Sit(d *JoinData, _ *OutputEvents) StateUpdate         { return groundOnly(d, Sit{}) }
func (GlideWield) Stand(d *JoinData, _ *OutputEvents) StateUpdate       { return NewUpdate(d) }
func (GlideWield) Dance(d *JoinData, _ *OutputEvents) StateUpdate       { return groundOnly(d, Dance{}) }
func (GlideWield) Sneak(d *JoinData, _ *OutputEvents) StateUpdate       { return groundOnly(d, Sneak{}) }
func (GlideWield) GlideWield(d *JoinData, _ *OutputEvents) StateUpdate  { return NewUpdate(d) }

func (GlideWield) ModifyLoadout(d *JoinData, out *OutputEvents, a component.ControlAction) StateUpdate {
	return modifyLoadout(d, out, a)
}
