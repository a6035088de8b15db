package charstate

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/component"
)

const (
	Gravity       = 25.0
	GroundAccel   = 100.0
	AirAccel      = 15.0
	MaxRunSpeed   = 9.0
	JumpImpulse   = 10.0
	TurnRate      = 10.0
	GlideAccel    = 12.0
	GlideSpeed    = 45.0
	GlideAntigrav = Gravity * 0.90
	BoostAccel    = 500.0

	// SubmergedExit is the liquid depth at which gliding and glider
	// wielding stop.
	SubmergedExit = 0.5
)

// handleMove accelerates towards the move direction, scaled by efficiency.
func handleMove(d *JoinData, u *StateUpdate, efficiency float64) {
	dir := d.Inputs.MoveDir
	if l := dir.Len(); l > 1 {
		dir = dir.Mul(1 / l)
	}
	if dir.Len() == 0 {
		return
	}
	accel := AirAccel
	if d.onGround() {
		accel = GroundAccel
	}
	xy := mgl64.Vec2{u.Vel.X(), u.Vel.Y()}.Add(dir.Mul(accel * efficiency * d.Dt))
	if limit := MaxRunSpeed * efficiency; xy.Len() > limit {
		xy = xy.Normalize().Mul(limit)
	}
	u.Vel.Vec3 = mgl64.Vec3{xy.X(), xy.Y(), u.Vel.Z()}
}

// handleOrientation turns towards the look direction, falling back to the
// move direction, at rate times the base turn rate.
func handleOrientation(d *JoinData, u *StateUpdate, rate float64) {
	target := mgl64.Vec3{d.Inputs.LookDir.X(), d.Inputs.LookDir.Y(), 0}
	if target.Len() < 1e-6 {
		target = mgl64.Vec3{d.Inputs.MoveDir.X(), d.Inputs.MoveDir.Y(), 0}
	}
	if target.Len() < 1e-6 {
		return
	}
	target = target.Normalize()
	t := math.Min(1, rate*TurnRate*d.Dt)
	look := u.Ori.Look.Add(target.Sub(u.Ori.Look).Mul(t))
	if look.Len() < 1e-6 {
		look = target
	}
	u.Ori.Look = look.Normalize()
}

func handleJump(d *JoinData, u *StateUpdate) bool {
	if d.Inputs.Jump && d.onGround() {
		u.Vel.Vec3[2] = JumpImpulse
		return true
	}
	return false
}

// handleGlide deploys the glider mid-air.
func handleGlide(d *JoinData, u *StateUpdate) bool {
	if d.Inputs.Fly && !d.onGround() && d.hasGlider() && d.submerged() <= SubmergedExit {
		u.Character = Glide{}
		return true
	}
	return false
}

func handleDodge(d *JoinData, u *StateUpdate) bool {
	if d.Inputs.Roll && d.onGround() {
		return attemptAbility(d, u, InputDodge)
	}
	return false
}

// handleAbilityInputs starts the ability bound to the first pressed input.
func handleAbilityInputs(d *JoinData, u *StateUpdate) bool {
	switch {
	case d.Inputs.Primary:
		return attemptAbility(d, u, InputPrimary)
	case d.Inputs.Secondary:
		return attemptAbility(d, u, InputSecondary)
	case d.Inputs.Ability1:
		return attemptAbility(d, u, InputAbility1)
	}
	return false
}

func anyAbilityInput(d *JoinData) bool {
	return d.Inputs.Primary || d.Inputs.Secondary || d.Inputs.Ability1
}

// attemptAbility pays the energy cost and enters the ability state. An
// unaffordable ability does nothing.
func attemptAbility(d *JoinData, u *StateUpdate, in AbilityInput) bool {
	if d.Abilities == nil {
		return false
	}
	tool := component.ToolEmpty
	if d.Inventory != nil {
		tool = d.Inventory.ActiveTool()
	}
	a := d.Abilities.Lookup(tool, in)
	if a == nil {
		return false
	}
	if a.EnergyCost > math.MaxInt32 {
		return false
	}
	if a.EnergyCost > 0 {
		if err := u.Energy.TryChangeBy(-int32(a.EnergyCost), component.EnergyAbility, d.Now); err != nil {
			return false
		}
	}
	u.Character = a.Start(d, in)
	return true
}

// drainEnergy spends perSecond energy over this tick, saturating at zero,
// and reports whether any energy is left.
func drainEnergy(d *JoinData, u *StateUpdate, perSecond float64) bool {
	if perSecond <= 0 {
		return true
	}
	amount := int32(math.Ceil(perSecond * d.Dt))
	u.Energy.ChangeBy(component.EnergyChange{Amount: -amount, Source: component.EnergyAbility, Time: d.Now})
	return u.Energy.Current() > 0
}

// advance adds dt to timer and reports whether dur has been reached.
func advance(timer *time.Duration, dt, dur time.Duration) bool {
	*timer += dt
	return *timer >= dur
}

// lookDir is the horizontal facing, never zero.
func lookDir(u *StateUpdate) mgl64.Vec2 {
	v := mgl64.Vec2{u.Ori.Look.X(), u.Ori.Look.Y()}
	if v.Len() < 1e-6 {
		return mgl64.Vec2{0, 1}
	}
	return v.Normalize()
}

func meleeEvent(d *JoinData, m component.Melee) component.MeleeAttack {
	return component.MeleeAttack{Entity: d.Entity, Melee: m}
}

func swapLoadout(d *JoinData) StateUpdate {
	u := NewUpdate(d)
	u.SwapLoadout = true
	return u
}

// modifyLoadout equips bag slot a.Bag into a.Slot, or unequips a.Slot when
// Bag is negative.
func modifyLoadout(d *JoinData, out *OutputEvents, a component.ControlAction) StateUpdate {
	ev := component.InventoryManip{Entity: d.Entity, Kind: component.InvEquip, A: a.Bag, Slot: a.Slot}
	if a.Bag < 0 {
		ev.Kind = component.InvUnequip
	}
	out.Emit(ev)
	return NewUpdate(d)
}
