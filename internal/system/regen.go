package system

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/scripting"
	"github.com/voxrpg/server/internal/world"
)

const movingSpeed = 0.1

// EnergySystem regenerates energy pools that are not full.
type EnergySystem struct {
	base
	world    *world.State
	formulas Formulas
}

func NewEnergySystem(ws *world.State, f Formulas) *EnergySystem {
	if f == nil {
		f = goFormulas{}
	}
	return &EnergySystem{
		base:     base{name: "energy_regen", origin: coresys.OriginCommon, phase: coresys.PhaseLogic},
		world:    ws,
		formulas: f,
	}
}

func (s *EnergySystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.CharState, ws.Vel).Write(ws.Energy)
}

func (s *EnergySystem) Update(t coresys.Tick) {
	ws := s.world
	ws.Energy.Each(func(e ecs.EntityID, en *component.Energy) {
		if en.Current() >= en.Maximum() {
			return
		}
		ctx := scripting.EnergyRegenContext{
			Current: en.Current(),
			Maximum: en.Maximum(),
			State:   charstate.KindIdle.String(),
			Dt:      t.Dt.Seconds(),
		}
		if st, ok := ws.CharState.Get(e); ok {
			ctx.State = (*st).Kind().String()
		}
		if v, ok := ws.Vel.Get(e); ok {
			ctx.Moving = horizontalSpeed(v.Vec3) > movingSpeed
		}
		amount := s.formulas.CalcEnergyRegen(ctx)
		if amount <= 0 {
			return
		}
		w, _ := ws.Energy.GetMut(e)
		w.ChangeBy(component.EnergyChange{Amount: amount, Source: component.EnergyRegen, Time: t.Now})
	})
}

// ComboDecaySystem resets combo counters that have not changed for the
// configured decay time.
type ComboDecaySystem struct {
	base
	world *world.State
}

func NewComboDecaySystem(ws *world.State) *ComboDecaySystem {
	return &ComboDecaySystem{
		base:  base{name: "combo_decay", origin: coresys.OriginCommon, phase: coresys.PhaseLogic},
		world: ws,
	}
}

func (s *ComboDecaySystem) Access() coresys.Access {
	return coresys.Read().Write(s.world.Combo)
}

func (s *ComboDecaySystem) Update(t coresys.Tick) {
	decay := s.world.Opts.ComboDecay
	if decay <= 0 {
		return
	}
	s.world.Combo.Each(func(_ ecs.EntityID, c *component.Combo) {
		if c.Counter() > 0 && t.Now.Sub(c.LastChange) >= decay {
			c.Reset(t.Now)
		}
	})
}

func horizontalSpeed(v mgl64.Vec3) float64 {
	return mgl64.Vec2{v.X(), v.Y()}.Len()
}
