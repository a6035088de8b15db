package charstate

import "github.com/voxrpg/server/internal/component"

// Idle is the unarmed default state.
type Idle struct{}

func (Idle) Kind() Kind { return KindIdle }

func (s Idle) Behavior(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	handleMove(d, &u, 1.0)
	handleOrientation(d, &u, 1.0)
	handleJump(d, &u)
	if handleGlide(d, &u) || handleDodge(d, &u) {
		return u
	}
	if anyAbilityInput(d) {
		u.Character = Wielding{}
	}
	return u
}

func (Idle) Wield(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	u.Character = Wielding{}
	return u
}

func (Idle) Unwield(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }

func (Idle) SwapLoadout(d *JoinData, _ *OutputEvents) StateUpdate { return swapLoadout(d) }

func (Idle) Sit(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Sit{}) }

func (Idle) Stand(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }

func (Idle) Dance(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Dance{}) }

func (Idle) Sneak(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Sneak{}) }

func (Idle) GlideWield(d *JoinData, _ *OutputEvents) StateUpdate { return glideWield(d) }

func (Idle) ModifyLoadout(d *JoinData, out *OutputEvents, a component.ControlAction) StateUpdate {
	return modifyLoadout(d, out, a)
}

// groundOnly switches to next when the entity stands on the ground.
func groundOnly(d *JoinData, next State) StateUpdate {
	u := NewUpdate(d)
	if d.onGround() {
		u.Character = next
	}
	return u
}

func glideWield(d *JoinData) StateUpdate {
	u := NewUpdate(d)
	if d.onGround() && d.hasGlider() && d.submerged() <= SubmergedExit {
		u.Character = GlideWield{}
	}
	return u
}
