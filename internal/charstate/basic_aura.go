package charstate

import (
	"math"
	"time"

	"github.com/voxrpg/server/internal/component"
)

// BasicAuraData is the static data of an aura cast.
type BasicAuraData struct {
	BuildupDuration time.Duration         `yaml:"buildup_duration"`
	CastDuration    time.Duration         `yaml:"cast_duration"`
	RecoverDuration time.Duration         `yaml:"recover_duration"`
	Radius          float64               `yaml:"radius"`
	Duration        time.Duration         `yaml:"duration"`
	Target          component.GroupTarget `yaml:"target"`
	Buff            component.Buff        `yaml:"buff"`
	ScalesWithCombo bool                  `yaml:"scales_with_combo"`
}

// BasicAura creates an aura around the caster at the end of its buildup.
type BasicAura struct {
	noInput
	Static      BasicAuraData
	Timer       time.Duration
	Section     StageSection
	Exhausted   bool
	ComboAtCast uint32
}

func newBasicAura(d *JoinData, data BasicAuraData) BasicAura {
	s := BasicAura{Static: data, Section: Buildup}
	if data.ScalesWithCombo {
		s.ComboAtCast = d.Combo
	}
	return s
}

func (BasicAura) Kind() Kind { return KindBasicAura }

func (s BasicAura) Behavior(d *JoinData, out *OutputEvents) StateUpdate {
	u := NewUpdate(d)
	dt := d.dt()
	switch s.Section {
	case Buildup:
		handleOrientation(d, &u, 0.5)
		handleMove(d, &u, 0.3)
		if !advance(&s.Timer, dt, s.Static.BuildupDuration) {
			break
		}
		if !s.Exhausted {
			s.castAura(d, out)
			s.Exhausted = true
		}
		s.Timer = 0
		s.Section = Cast
	case Cast:
		handleMove(d, &u, 0.3)
		if advance(&s.Timer, dt, s.Static.CastDuration) {
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

// castAura consumes the sampled combo and emits the aura, its strength
// multiplied by 1 + log2(combo) when the combo was positive.
func (s BasicAura) castAura(d *JoinData, out *OutputEvents) {
	buff := s.Static.Buff
	if s.Static.ScalesWithCombo && s.ComboAtCast > 0 {
		out.Emit(component.ComboChange{Entity: d.Entity, Change: -int32(s.ComboAtCast)})
		buff.Strength *= 1 + math.Log2(float64(s.ComboAtCast))
	}
	out.Emit(component.AuraEvent{
		Entity: d.Entity,
		Kind:   component.AuraAdd,
		Aura: component.Aura{
			Radius:   s.Static.Radius,
			Duration: s.Static.Duration,
			Target:   s.Static.Target,
			Buff:     buff,
		},
	})
}
