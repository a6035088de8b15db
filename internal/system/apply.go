package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	"github.com/voxrpg/server/internal/core/event"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/world"
)

// EventApplySystem applies the server events emitted during the tick, in
// push order, with exclusive world access.
type EventApplySystem struct {
	base
	world *world.State
	now   time.Time
	log   *zap.Logger
}

// NewEventApplySystem subscribes the handlers of every server event on the
// world bus.
func NewEventApplySystem(ws *world.State, log *zap.Logger) *EventApplySystem {
	s := &EventApplySystem{
		base:  base{name: "event_apply", origin: coresys.OriginServer, phase: coresys.PhaseApply},
		world: ws,
		log:   log,
	}
	b := ws.Bus
	event.Subscribe(b, s.comboChange)
	event.Subscribe(b, s.aura)
	event.Subscribe(b, s.meleeAttack)
	event.Subscribe(b, s.meleeEnd)
	event.Subscribe(b, s.inventoryManip)
	event.Subscribe(b, s.initiateInvite)
	event.Subscribe(b, s.inviteResponse)
	event.Subscribe(b, s.groupManip)
	event.Subscribe(b, s.tamePet)
	event.Subscribe(b, s.destroy)
	event.Subscribe(b, s.setWaypoint)
	return s
}

func (s *EventApplySystem) Access() coresys.Access { return coresys.Exclusive() }

func (s *EventApplySystem) Update(t coresys.Tick) {
	s.now = t.Now
	if n := s.world.Bus.DispatchAll(); n > 0 {
		s.log.Debug("events applied", zap.Int("count", n), zap.Uint64("tick", t.Number))
	}
}

func (s *EventApplySystem) notice(e ecs.EntityID, text string) {
	s.world.Send(e, packet.SNotice, packet.Notice{Text: text})
}

func (s *EventApplySystem) comboChange(ev component.ComboChange) {
	if c, ok := s.world.Combo.Get(ev.Entity); ok {
		c.Change(ev.Change, s.now)
	}
}

func (s *EventApplySystem) aura(ev component.AuraEvent) {
	ws := s.world
	if !ws.World.Alive(ev.Entity) {
		return
	}
	auras, ok := ws.Auras.Get(ev.Entity)
	switch ev.Kind {
	case component.AuraAdd:
		if !ok {
			ws.Auras.Insert(ev.Entity, component.Auras{})
			auras, _ = ws.Auras.Get(ev.Entity)
		}
		auras.Insert(ev.Aura)
	case component.AuraRemove:
		if ok {
			auras.Remove(ev.Key)
		}
	}
}

func (s *EventApplySystem) meleeAttack(ev component.MeleeAttack) {
	s.world.Melee.Insert(ev.Entity, ev.Melee)
}

func (s *EventApplySystem) meleeEnd(ev component.MeleeEnd) {
	s.world.Melee.Remove(ev.Entity)
}

func (s *EventApplySystem) inventoryManip(ev component.InventoryManip) {
	inv, ok := s.world.Inventory.Get(ev.Entity)
	if !ok {
		return
	}
	switch ev.Kind {
	case component.InvSwap:
		inv.Swap(ev.A, ev.B)
	case component.InvEquip:
		inv.Equip(ev.A, ev.Slot)
	case component.InvUnequip:
		inv.Unequip(ev.Slot)
	case component.InvSwapLoadout:
		inv.SwapLoadout()
	}
}

func (s *EventApplySystem) initiateInvite(ev component.InitiateInvite) {
	if err := s.world.InitiateInvite(ev.Inviter, ev.Invitee, s.now); err != nil {
		s.notice(ev.Inviter, err.Error())
	}
}

func (s *EventApplySystem) inviteResponse(ev component.InviteResponse) {
	if err := s.world.RespondInvite(ev.Invitee, ev.Accept); err != nil {
		s.notice(ev.Invitee, err.Error())
	}
}

func (s *EventApplySystem) groupManip(ev component.GroupManip) {
	ws := s.world
	if ev.Kind == component.GroupLeave {
		ws.Groups.Leave(ev.Entity, ws.NotifyGroup)
		return
	}
	target, ok := ws.ByUid(ev.Target)
	if !ok {
		s.notice(ev.Entity, "unknown group member")
		return
	}
	var err error
	switch ev.Kind {
	case component.GroupKick:
		err = ws.Groups.Kick(ev.Entity, target, ws.NotifyGroup)
	case component.GroupAssignLeader:
		err = ws.Groups.AssignLeader(ev.Entity, target, ws.NotifyGroup)
	}
	if err != nil {
		s.notice(ev.Entity, err.Error())
	}
}

func (s *EventApplySystem) tamePet(ev component.TamePet) {
	ws := s.world
	if !ws.CanTame(ev.Pet, ev.Owner) || !ws.TamePet(ev.Pet, ev.Owner) {
		s.notice(ev.Owner, "cannot tame that")
	}
}

// destroy respawns characters and deletes everything else.
func (s *EventApplySystem) destroy(ev component.Destroy) {
	ws := s.world
	e := ev.Entity
	if !ws.World.Alive(e) {
		return
	}
	p, ok := ws.Presence.Get(e)
	if !ok || p.Kind != component.PresenceCharacter {
		ws.Delete(e)
		return
	}

	at := ws.Opts.SpawnPoint
	if wp, ok := ws.Waypoint.Get(e); ok {
		at = wp.Pos
	}
	if pos, ok := ws.Pos.GetMut(e); ok {
		pos.Vec3 = at
	}
	ws.AOI.Update(e, at)
	if v, ok := ws.Vel.GetMut(e); ok {
		*v = component.Vel{}
	}
	if h, ok := ws.Health.GetMut(e); ok {
		h.Current = h.Maximum
	}
	ws.CharState.Insert(e, charstate.Idle{})
	if c, ok := ws.Combo.Get(e); ok {
		c.Reset(s.now)
	}
	ws.Melee.Remove(e)
	ws.ForceUpdate.Insert(e)
	s.notice(e, "you died")
	s.log.Info("character respawned", zap.String("name", p.Name), zap.String("cause", ev.Cause))
}

func (s *EventApplySystem) setWaypoint(ev component.SetWaypoint) {
	ws := s.world
	pos, ok := ws.Pos.Get(ev.Entity)
	if !ok {
		return
	}
	ws.Waypoint.Insert(ev.Entity, component.Waypoint{Pos: pos.Vec3, Time: s.now})
	s.notice(ev.Entity, "waypoint set")
}
