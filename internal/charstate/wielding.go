package charstate

import "github.com/voxrpg/server/internal/component"

// Wielding holds the main-hand tool ready and starts abilities.
type Wielding struct{}

func (Wielding) Kind() Kind { return KindWielding }

func (s Wielding) Behavior(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	handleMove(d, &u, 1.0)
	handleOrientation(d, &u, 1.0)
	handleJump(d, &u)
	if handleGlide(d, &u) || handleDodge(d, &u) {
		return u
	}
	handleAbilityInputs(d, &u)
	return u
}

func (Wielding) Wield(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }

func (Wielding) Unwield(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	u.Character = Idle{}
	return u
}

func (Wielding) SwapLoadout(d *JoinData, _ *OutputEvents) StateUpdate { return swapLoadout(d) }

func (Wielding) Sit(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Sit{}) }

func (Wielding) Stand(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }

func (Wielding) Dance(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Dance{}) }

func (Wielding) Sneak(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Sneak{}) }

func (Wielding) GlideWield(d *JoinData, _ *OutputEvents) StateUpdate { return glideWield(d) }

func (Wielding) ModifyLoadout(d *JoinData, out *OutputEvents, a component.ControlAction) StateUpdate {
	return modifyLoadout(d, out, a)
}
