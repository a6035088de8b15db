package charstate

import "github.com/voxrpg/server/internal/component"

// anchored leaves an anchor state on any move input or when the ground is
// lost.
func anchored(d *JoinData) StateUpdate {
	u := NewUpdate(d)
	if d.Inputs.MoveDir.Len() > 0 || !d.onGround() {
		u.Character = Idle{}
	}
	return u
}

// anchorInputs are the reactions shared by Sit, Dance and Sneak.
type anchorInputs struct{}

func (anchorInputs) Wield(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	u.Character = Wielding{}
	return u
}

func (anchorInputs) Unwield(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }

func (anchorInputs) SwapLoadout(d *JoinData, _ *OutputEvents) StateUpdate { return swapLoadout(d) }

func (anchorInputs) Stand(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	u.Character = Idle{}
	return u
}

func (anchorInputs) GlideWield(d *JoinData, _ *OutputEvents) StateUpdate { return glideWield(d) }

func (anchorInputs) ModifyLoadout(d *JoinData, out *OutputEvents, a component.ControlAction) StateUpdate {
	return modifyLoadout(d, out, a)
}

// Sit is seated on the ground.
type Sit struct{ anchorInputs }

func (Sit) Kind() Kind { return KindSit }

func (Sit) Behavior(d *JoinData, _ *OutputEvents) StateUpdate { return anchored(d) }

func (Sit) Sit(d *JoinData, _ *OutputEvents) StateUpdate   { return NewUpdate(d) }
func (Sit) Dance(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Dance{}) }
func (Sit) Sneak(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Sneak{}) }

// Dance is an emote.
type Dance struct{ anchorInputs }

func (Dance) Kind() Kind { return KindDance }

func (Dance) Behavior(d *JoinData, _ *OutputEvents) StateUpdate { return anchored(d) }

func (Dance) Sit(d *JoinData, _ *OutputEvents) StateUpdate   { return groundOnly(d, Sit{}) }
func (Dance) Dance(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }
func (Dance) Sneak(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Sneak{}) }

// Sneak crouches in place.
type Sneak struct{ anchorInputs }

func (Sneak) Kind() Kind { return KindSneak }

func (Sneak) Behavior(d *JoinData, _ *OutputEvents) StateUpdate {
	u := anchored(d)
	handleOrientation(d, &u, 0.5)
	return u
}

func (Sneak) Sit(d *JoinData, _ *OutputEvents) StateUpdate   { return groundOnly(d, Sit{}) }
func (Sneak) Dance(d *JoinData, _ *OutputEvents) StateUpdate { return groundOnly(d, Dance{}) }
func (Sneak) Sneak(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }
