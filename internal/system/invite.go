package system

import (
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/world"
)

// InviteTimeoutSystem expires pending invites whose deadline has passed. An
// invite whose deadline equals the current time survives this tick.
type InviteTimeoutSystem struct {
	base
	world *world.State
}

func NewInviteTimeoutSystem(ws *world.State) *InviteTimeoutSystem {
	return &InviteTimeoutSystem{
		base:  base{name: "invite_timeout", origin: coresys.OriginServer, phase: coresys.PhaseLogic},
		world: ws,
	}
}

func (s *InviteTimeoutSystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.Uids, ws.Streams).Write(ws.Invite, ws.PendingInvites)
}

func (s *InviteTimeoutSystem) Update(t coresys.Tick) {
	ws := s.world
	var expired []ecs.EntityID
	ws.Invite.Each(func(invitee ecs.EntityID, inv *component.Invite) {
		pending, ok := ws.PendingInvites.Get(inv.Inviter)
		if !ok {
			return
		}
		i := pending.Find(invitee)
		if i < 0 || !t.Now.After(pending.Entries[i].Deadline) {
			return
		}
		pending.SwapRemove(i)
		if pending.Len() == 0 {
			ws.PendingInvites.Remove(inv.Inviter)
		}
		if u, ok := ws.UidOf(invitee); ok {
			ws.Send(inv.Inviter, packet.SInviteComplete, packet.InviteComplete{Target: u, Answer: packet.InviteTimedOut})
		}
		expired = append(expired, invitee)
	})
	for _, e := range expired {
		ws.Invite.Remove(e)
	}
}
