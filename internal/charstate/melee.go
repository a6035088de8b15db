package charstate

import (
	"time"

	"github.com/voxrpg/server/internal/component"
)

// Strike is one hit of a melee ability.
type Strike struct {
	BuildupDuration time.Duration `yaml:"buildup_duration"`
	SwingDuration   time.Duration `yaml:"swing_duration"`
	RecoverDuration time.Duration `yaml:"recover_duration"`
	BaseDamage      float64       `yaml:"base_damage"`
	Range           float64       `yaml:"range"`
	Angle           float64       `yaml:"angle"`
	Knockback       float64       `yaml:"knockback"`
}

func (s Strike) melee(damage float64) component.Melee {
	return component.Melee{Range: s.Range, MaxAngle: s.Angle, Damage: damage, Knockback: s.Knockback}
}

// ComboMeleeData is the static data of a chain of strikes.
type ComboMeleeData struct {
	Strikes []Strike `yaml:"strikes"`
	// ComboDamage is the extra damage fraction per combo point.
	ComboDamage float64 `yaml:"combo_damage"`
}

// ComboMelee runs a chain of strikes. Holding primary at the end of a
// recover continues with the next strike.
type ComboMelee struct {
	noInput
	Static    ComboMeleeData
	Stage     int
	Timer     time.Duration
	Section   StageSection
	Exhausted bool
}

func (ComboMelee) Kind() Kind { return KindComboMelee }

func (s ComboMelee) Behavior(d *JoinData, out *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	if s.Stage < 0 || s.Stage >= len(s.Static.Strikes) {
		u.Character = Wielding{}
		return u
	}
	strike := s.Static.Strikes[s.Stage]
	dt := d.dt()
	switch s.Section {
	case Buildup:
		handleOrientation(d, &u, 1.0)
		handleMove(d, &u, 0.5)
		if !advance(&s.Timer, dt, strike.BuildupDuration) {
			break
		}
		if !s.Exhausted {
			damage := strike.BaseDamage * (1 + s.Static.ComboDamage*float64(d.Combo))
			out.Emit(meleeEvent(d, strike.melee(damage)))
			s.Exhausted = true
		}
		s.Timer = 0
		s.Section = Swing
	case Swing:
		handleMove(d, &u, 0.3)
		if advance(&s.Timer, dt, strike.SwingDuration) {
			out.Emit(component.MeleeEnd{Entity: d.Entity})
			s.Timer = 0
			s.Section = Recover
		}
	case Recover:
		handleOrientation(d, &u, 0.5)
		if !advance(&s.Timer, dt, strike.RecoverDuration) {
			break
		}
		if d.Inputs.Primary && s.Stage+1 < len(s.Static.Strikes) {
			s.Stage++
			s.Timer = 0
			s.Section = Buildup
			s.Exhausted = false
			break
		}
		u.Character = Wielding{}
		return u
	default:
		u.Character = Wielding{}
		return u
	}
	u.Character = s
	return u
}

// DashMeleeData is the static data of a charging dash attack.
type DashMeleeData struct {
	BuildupDuration time.Duration `yaml:"buildup_duration"`
	ChargeDuration  time.Duration `yaml:"charge_duration"`
	SwingDuration   time.Duration `yaml:"swing_duration"`
	RecoverDuration time.Duration `yaml:"recover_duration"`
	ForwardSpeed    float64       `yaml:"forward_speed"`
	EnergyDrain     float64       `yaml:"energy_drain"`
	Strike          Strike        `yaml:"strike"`
}

// DashMelee runs forward while charging, then strikes.
type DashMelee struct {
	noInput
	Static    DashMeleeData
	Input     AbilityInput
	Timer     time.Duration
	Section   StageSection
	Exhausted bool
}

func (DashMelee) Kind() Kind { return KindDashMelee }

func (s DashMelee) Behavior(d *JoinData, out *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	dt := d.dt()
	switch s.Section {
	case Buildup:
		handleOrientation(d, &u, 1.0)
		if advance(&s.Timer, dt, s.Static.BuildupDuration) {
			s.Timer = 0
			s.Section = Charge
		}
	case Charge:
		handleOrientation(d, &u, 0.1)
		dir := lookDir(&u).Mul(s.Static.ForwardSpeed)
		u.Vel.Vec3[0], u.Vel.Vec3[1] = dir.X(), dir.Y()
		left := drainEnergy(d, &u, s.Static.EnergyDrain)
		if !advance(&s.Timer, dt, s.Static.ChargeDuration) && left && d.held(s.Input) {
			break
		}
		if !s.Exhausted {
			out.Emit(meleeEvent(d, s.Static.Strike.melee(s.Static.Strike.BaseDamage)))
			s.Exhausted = true
		}
		s.Timer = 0
		s.Section = Swing
	case Swing:
		if advance(&s.Timer, dt, s.Static.SwingDuration) {
			out.Emit(component.MeleeEnd{Entity: d.Entity})
			s.Timer = 0
			s.Section = Recover
		}
	case Recover:
		if advance(&s.Timer, dt, s.Static.RecoverDuration) {
			u.Character = Wielding{}
			return u
		}
	default:
		u.Character = Wielding{}
		return u
	}
	u.Character = s
	return u
}

// ChargedMeleeData is the static data of a hold-to-charge attack.
type ChargedMeleeData struct {
	ChargeDuration  time.Duration `yaml:"charge_duration"`
	SwingDuration   time.Duration `yaml:"swing_duration"`
	RecoverDuration time.Duration `yaml:"recover_duration"`
	EnergyDrain     float64       `yaml:"energy_drain"`
	ScaledDamage    float64       `yaml:"scaled_damage"`
	Strike          Strike        `yaml:"strike"`
}

// ChargedMelee charges while its input is held and strikes on release or
// when fully charged, dealing base damage plus the charged share of
// ScaledDamage.
type ChargedMelee struct {
	noInput
	Static       ChargedMeleeData
	Input        AbilityInput
	Timer        time.Duration
	Section      StageSection
	Exhausted    bool
	ChargeAmount float64
}

func (ChargedMelee) Kind() Kind { return KindChargedMelee }

func (s ChargedMelee) Behavior(d *JoinData, out *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	dt := d.dt()
	switch s.Section {
	case Charge:
		handleOrientation(d, &u, 1.0)
		handleMove(d, &u, 0.7)
		full := advance(&s.Timer, dt, s.Static.ChargeDuration)
		left := drainEnergy(d, &u, s.Static.EnergyDrain)
		s.ChargeAmount = 1
		if s.Static.ChargeDuration > 0 {
			s.ChargeAmount = min(1, float64(s.Timer)/float64(s.Static.ChargeDuration))
		}
		if !full && left && d.held(s.Input) {
			break
		}
		if !s.Exhausted {
			damage := s.Static.Strike.BaseDamage + s.Static.ScaledDamage*s.ChargeAmount
			out.Emit(meleeEvent(d, s.Static.Strike.melee(damage)))
			s.Exhausted = true
		}
		s.Timer = 0
		s.Section = Swing
	case Swing:
		if advance(&s.Timer, dt, s.Static.SwingDuration) {
			out.Emit(component.MeleeEnd{Entity: d.Entity})
			s.Timer = 0
			s.Section = Recover
		}
	case Recover:
		if advance(&s.Timer, dt, s.Static.RecoverDuration) {
			u.Character = Wielding{}
			return u
		}
	default:
		u.Character = Wielding{}
		return u
	}
	u.Character = s
	return u
}

// LeapMeleeData is the static data of a leaping attack.
type LeapMeleeData struct {
	BuildupDuration  time.Duration `yaml:"buildup_duration"`
	MovementDuration time.Duration `yaml:"movement_duration"`
	SwingDuration    time.Duration `yaml:"swing_duration"`
	RecoverDuration  time.Duration `yaml:"recover_duration"`
	ForwardLeap      float64       `yaml:"forward_leap"`
	VerticalLeap     float64       `yaml:"vertical_leap"`
	Strike           Strike        `yaml:"strike"`
}

// LeapMelee jumps forward at the end of buildup and strikes on landing or
// when the movement time runs out.
type LeapMelee struct {
	noInput
	Static    LeapMeleeData
	Timer     time.Duration
	Section   StageSection
	Exhausted bool
}

func (LeapMelee) Kind() Kind { return KindLeapMelee }

func (s LeapMelee) Behavior(d *JoinData, out *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	dt := d.dt()
	switch s.Section {
	case Buildup:
		handleOrientation(d, &u, 1.0)
		if !advance(&s.Timer, dt, s.Static.BuildupDuration) {
			break
		}
		fwd := lookDir(&u).Mul(s.Static.ForwardLeap)
		u.Vel.Vec3[0], u.Vel.Vec3[1], u.Vel.Vec3[2] = fwd.X(), fwd.Y(), s.Static.VerticalLeap
		s.Timer = 0
		s.Section = Movement
	case Movement:
		landed := s.Timer > 0 && d.onGround()
		if !advance(&s.Timer, dt, s.Static.MovementDuration) && !landed {
			break
		}
		if !s.Exhausted {
			out.Emit(meleeEvent(d, s.Static.Strike.melee(s.Static.Strike.BaseDamage)))
			s.Exhausted = true
		}
		s.Timer = 0
		s.Section = Swing
	case Swing:
		if advance(&s.Timer, dt, s.Static.SwingDuration) {
			out.Emit(component.MeleeEnd{Entity: d.Entity})
			s.Timer = 0
			s.Section = Recover
		}
	case Recover:
		if advance(&s.Timer, dt, s.Static.RecoverDuration) {
			u.Character = Wielding{}
			return u
		}
	default:
		u.Character = Wielding{}
		return u
	}
	u.Character = s
	return u
}
