package charstate

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// BoostData is the static data of a boost.
type BoostData struct {
	MovementDuration time.Duration `yaml:"movement_duration"`
	OnlyUp           bool          `yaml:"only_up"`
}

// Boost pushes the entity with a constant impulse for MovementDuration.
type Boost struct {
	noInput
	Static BoostData
	Timer  time.Duration
}

func (Boost) Kind() Kind { return KindBoost }

func (s Boost) Behavior(d *JoinData, _ *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	handleMove(d, &u, 1.0)

	if s.Timer >= s.Static.MovementDuration {
		u.Character = Wielding{}
		return u
	}
	impulse := BoostAccel * d.Dt
	if s.Static.OnlyUp {
		u.Vel.Vec3[2] += impulse
	} else {
		dir := d.Inputs.LookDir
		if dir.Len() < 1e-6 {
			dir = mgl64.Vec3{lookDir(&u).X(), lookDir(&u).Y(), 0}
		}
		u.Vel.Vec3 = u.Vel.Add(dir.Normalize().Mul(impulse))
	}
	s.Timer += d.dt()
	u.Character = s
	return u
}
