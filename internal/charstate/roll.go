package charstate

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// RollData is the static data of a dodge roll.
type RollData struct {
	BuildupDuration  time.Duration `yaml:"buildup_duration"`
	MovementDuration time.Duration `yaml:"movement_duration"`
	RecoverDuration  time.Duration `yaml:"recover_duration"`
	RollStrength     float64       `yaml:"roll_strength"`
}

// Roll dashes along the move direction, or the facing when not moving.
type Roll struct {
	noInput
	Static     RollData
	Timer      time.Duration
	Section    StageSection
	Dir        mgl64.Vec2
	WasWielded bool
}

func (Roll) Kind() Kind { return KindRoll }

func (s Roll) Behavior(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	dt := d.dt()
	switch s.Section {
	case Buildup:
		if advance(&s.Timer, dt, s.Static.BuildupDuration) {
			s.Timer = 0
			s.Section = Movement
		}
	case Movement:
		u.Vel.Vec3 = mgl64.Vec3{s.Dir.X() * s.Static.RollStrength, s.Dir.Y() * s.Static.RollStrength, u.Vel.Z()}
		if advance(&s.Timer, dt, s.Static.MovementDuration) {
			s.Timer = 0
			s.Section = Recover
		}
	case Recover:
		if advance(&s.Timer, dt, s.Static.RecoverDuration) {
			u.Character = s.exit()
			return u
		}
	default:
		u.Character = Wielding{}
		return u
	}
	u.Character = s
	return u
}

func (s Roll) exit() State {
	if s.WasWielded {
		return Wielding{}
	}
	return Idle{}
}

func newRoll(d *JoinData, data RollData) Roll {
	dir := d.Inputs.MoveDir
	if dir.Len() < 1e-6 {
		dir = mgl64.Vec2{d.Ori.Look.X(), d.Ori.Look.Y()}
	}
	if dir.Len() < 1e-6 {
		dir = mgl64.Vec2{0, 1}
	}
	_, idle := d.State.(Idle)
	return Roll{Static: data, Dir: dir.Normalize(), WasWielded: !idle}
}
