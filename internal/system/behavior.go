package system

import (
	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/world"
)

// CharacterBehaviorSystem runs the queued actions and then the per-tick
// behaviour of every character state. Updates are written back only where
// they differ so replication sees real changes.
type CharacterBehaviorSystem struct {
	base
	world *world.State
	out   charstate.OutputEvents
}

func NewCharacterBehaviorSystem(ws *world.State) *CharacterBehaviorSystem {
	return &CharacterBehaviorSystem{
		base:  base{name: "character_behavior", origin: coresys.OriginCommon, phase: coresys.PhaseLogic},
		world: ws,
	}
}

func (s *CharacterBehaviorSystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.Uids, ws.Physics, ws.Combo, ws.Inventory).
		Write(ws.CharState, ws.Pos, ws.Vel, ws.Ori, ws.Energy, ws.Controller)
}

func (s *CharacterBehaviorSystem) Update(t coresys.Tick) {
	ws := s.world
	dt := t.Dt.Seconds()
	ws.CharState.Each(func(e ecs.EntityID, st *charstate.State) {
		d, ok := s.join(e, *st, dt, t)
		if !ok {
			return
		}
		ctrl, _ := ws.Controller.Get(e)
		if ctrl != nil {
			d.Inputs = ctrl.Inputs
			for _, a := range ctrl.Actions {
				s.apply(e, st, &d, charstate.HandleAction(d.State, &d, &s.out, a))
			}
			ctrl.Actions = ctrl.Actions[:0]
		}
		s.apply(e, st, &d, d.State.Behavior(&d, &s.out))
	})
	if s.out.Len() > 0 {
		ws.Bus.EmitAll(append([]any(nil), s.out.Events()...))
		s.out.Reset()
	}
}

func (s *CharacterBehaviorSystem) join(e ecs.EntityID, st charstate.State, dt float64, t coresys.Tick) (charstate.JoinData, bool) {
	ws := s.world
	pos, ok1 := ws.Pos.Get(e)
	vel, ok2 := ws.Vel.Get(e)
	ori, ok3 := ws.Ori.Get(e)
	energy, ok4 := ws.Energy.Get(e)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return charstate.JoinData{}, false
	}
	d := charstate.JoinData{
		Entity:    e,
		State:     st,
		Pos:       *pos,
		Vel:       *vel,
		Ori:       *ori,
		Energy:    *energy,
		Abilities: ws.Abilities,
		Dt:        dt,
		Now:       t.Now,
	}
	if u, ok := ws.UidOf(e); ok {
		d.Uid = u
	}
	if p, ok := ws.Physics.Get(e); ok {
		d.Physics = p
	}
	if inv, ok := ws.Inventory.Get(e); ok {
		d.Inventory = inv
	}
	if c, ok := ws.Combo.Get(e); ok {
		d.Combo = c.Counter()
	}
	return d, true
}

// apply writes u back to the stores and refreshes d so the next handler
// sees the result.
func (s *CharacterBehaviorSystem) apply(e ecs.EntityID, st *charstate.State, d *charstate.JoinData, u charstate.StateUpdate) {
	ws := s.world
	if u.Character.Kind() != d.State.Kind() {
		ws.CharState.Insert(e, u.Character)
	} else {
		// Same-kind updates only move stage timers and sections. Replication
		// sends the kind alone, so these skip the change log.
		*st = u.Character
	}
	if u.Pos != d.Pos {
		if p, ok := ws.Pos.GetMut(e); ok {
			*p = u.Pos
		}
	}
	if u.Vel != d.Vel {
		if v, ok := ws.Vel.GetMut(e); ok {
			*v = u.Vel
		}
	}
	if u.Ori != d.Ori {
		if o, ok := ws.Ori.GetMut(e); ok {
			*o = u.Ori
		}
	}
	if u.Energy != d.Energy {
		if en, ok := ws.Energy.GetMut(e); ok {
			*en = u.Energy
		}
	}
	if u.SwapLoadout {
		s.out.Emit(component.InventoryManip{Entity: e, Kind: component.InvSwapLoadout})
	}
	d.State = u.Character
	d.Pos, d.Vel, d.Ori, d.Energy = u.Pos, u.Vel, u.Ori, u.Energy
}
