package system

import (
	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/world"
)

type field uint8

const (
	fieldPos field = 1 << iota
	fieldVel
	fieldOri
	fieldState
	fieldEnergy
	fieldHealth
	fieldAlignment
	fieldPet

	fieldAll = fieldPos | fieldVel | fieldOri | fieldState | fieldEnergy | fieldHealth | fieldAlignment | fieldPet
)

// ReplicationSystem is the only consumer of the flagged storages. Each tick
// it drains them once and sends every client the changes of entities within
// view distance. Entities entering a client's view, and every entity for a
// client tagged ForceUpdate, are sent in full.
type ReplicationSystem struct {
	base
	world        *world.State
	viewDistance float64
	fields       map[ecs.Key]field
	known        map[ecs.EntityID]map[ecs.EntityID]struct{} // viewer -> entities it has seen
}

func NewReplicationSystem(ws *world.State, viewDistance float64) *ReplicationSystem {
	return &ReplicationSystem{
		base:         base{name: "replication", origin: coresys.OriginServer, phase: coresys.PhaseSync},
		world:        ws,
		viewDistance: viewDistance,
		fields: map[ecs.Key]field{
			ws.Pos.Key():       fieldPos,
			ws.Vel.Key():       fieldVel,
			ws.Ori.Key():       fieldOri,
			ws.CharState.Key(): fieldState,
			ws.Energy.Key():    fieldEnergy,
			ws.Health.Key():    fieldHealth,
			ws.Alignment.Key(): fieldAlignment,
			ws.Pet.Key():       fieldPet,
		},
		known: make(map[ecs.EntityID]map[ecs.EntityID]struct{}),
	}
}

func (s *ReplicationSystem) Access() coresys.Access { return coresys.Exclusive() }

func (s *ReplicationSystem) Update(t coresys.Tick) {
	ws := s.world
	changed := s.drain(t.Number)

	if deleted := ws.TakeDeleted(); len(deleted) > 0 {
		msg := packet.MustEncode(packet.SEntityDeleted, packet.EntityDeleted{Uids: deleted})
		ws.Streams.Each(func(_ ecs.EntityID, st *component.InGameStream) {
			if st.Out != nil {
				st.Out.Send(msg)
			}
		})
	}

	var forced []ecs.EntityID
	viewers := make(map[ecs.EntityID]struct{}, ws.Streams.Len())
	ws.Streams.Each(func(viewer ecs.EntityID, st *component.InGameStream) {
		viewers[viewer] = struct{}{}
		if st.Out == nil {
			return
		}
		pos, ok := ws.Pos.Get(viewer)
		if !ok {
			return
		}
		seen := s.known[viewer]
		if seen == nil || ws.ForceUpdate.Has(viewer) {
			seen = make(map[ecs.EntityID]struct{})
			s.known[viewer] = seen
			forced = append(forced, viewer)
		}

		var states []packet.EntityState
		inView := make(map[ecs.EntityID]struct{})
		for _, e := range ws.Nearby(pos.Vec3, s.viewDistance) {
			inView[e] = struct{}{}
			mask := changed[e]
			if _, ok := seen[e]; !ok {
				mask = fieldAll
				seen[e] = struct{}{}
			}
			if mask == 0 {
				continue
			}
			if es, ok := s.entityState(e, mask); ok {
				states = append(states, es)
			}
		}
		for e := range seen {
			if _, ok := inView[e]; !ok {
				delete(seen, e)
			}
		}
		if len(states) > 0 {
			st.Out.Send(packet.MustEncode(packet.SEntitySync, packet.EntitySync{Tick: t.Number, Entities: states}))
		}
	})

	for _, e := range forced {
		ws.ForceUpdate.Remove(e)
	}
	for viewer := range s.known {
		if _, ok := viewers[viewer]; !ok {
			delete(s.known, viewer)
		}
	}
}

// drain consumes every change log and folds it into a field mask per entity.
func (s *ReplicationSystem) drain(tick uint64) map[ecs.EntityID]field {
	changed := make(map[ecs.EntityID]field)
	for _, d := range s.world.World.Registry().Drainables() {
		f := s.fields[d.Key()]
		for _, c := range d.Drain(tick) {
			if c.Kind == ecs.Removed || f == 0 {
				continue
			}
			changed[c.Entity] |= f
		}
	}
	return changed
}

func (s *ReplicationSystem) entityState(e ecs.EntityID, mask field) (packet.EntityState, bool) {
	ws := s.world
	uid, ok := ws.UidOf(e)
	if !ok {
		return packet.EntityState{}, false
	}
	es := packet.EntityState{Uid: uid}
	if mask&fieldPos != 0 {
		if p, ok := ws.Pos.Get(e); ok {
			v := [3]float64(p.Vec3)
			es.Pos = &v
		}
	}
	if mask&fieldVel != 0 {
		if p, ok := ws.Vel.Get(e); ok {
			v := [3]float64(p.Vec3)
			es.Vel = &v
		}
	}
	if mask&fieldOri != 0 {
		if o, ok := ws.Ori.Get(e); ok {
			v := [3]float64(o.Look)
			es.Ori = &v
		}
	}
	if mask&fieldState != 0 {
		if st, ok := ws.CharState.Get(e); ok {
			es.State = stateName(*st)
		}
	}
	if mask&fieldEnergy != 0 {
		if en, ok := ws.Energy.Get(e); ok {
			es.Energy = &[2]int32{int32(en.Current()), int32(en.Maximum())}
		}
	}
	if mask&fieldHealth != 0 {
		if h, ok := ws.Health.Get(e); ok {
			es.Health = &[2]int32{int32(h.Current), int32(h.Maximum)}
		}
	}
	if mask&fieldAlignment != 0 {
		if al, ok := ws.Alignment.Get(e); ok {
			es.Alignment = alignmentName(al.Kind)
			if al.Kind == component.AlignOwned {
				owner := al.Owner
				es.Owner = &owner
			}
		}
	}
	if mask&fieldPet != 0 {
		if p, ok := ws.Pet.Get(e); ok {
			es.Pet = p.Name
		}
	}
	return es, true
}

func stateName(st charstate.State) string {
	if st == nil {
		return ""
	}
	return st.Kind().String()
}

func alignmentName(k component.AlignmentKind) string {
	switch k {
	case component.AlignEnemy:
		return "enemy"
	case component.AlignNpc:
		return "npc"
	case component.AlignOwned:
		return "owned"
	}
	return "wild"
}
