package handler

import (
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/event"
	"github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
)

var groupKinds = map[string]component.GroupManipKind{
	"leave":         component.GroupLeave,
	"kick":          component.GroupKick,
	"assign_leader": component.GroupAssignLeader,
}

// HandleInvite asks another entity to join the sender's group.
func HandleInvite(sess *net.Session, r *packet.Reader, deps *Deps) {
	var req packet.InviteRequest
	if err := r.Decode(&req); err != nil || req.Target.IsZero() {
		return
	}
	e, ok := entityOf(sess, deps)
	if !ok {
		return
	}
	event.Emit(deps.World.Bus, component.InitiateInvite{Inviter: e, Invitee: req.Target})
}

func HandleInviteResponse(sess *net.Session, r *packet.Reader, deps *Deps) {
	var req packet.InviteAnswer
	if err := r.Decode(&req); err != nil {
		return
	}
	e, ok := entityOf(sess, deps)
	if !ok {
		return
	}
	event.Emit(deps.World.Bus, component.InviteResponse{Invitee: e, Accept: req.Accept})
}

func HandleGroup(sess *net.Session, r *packet.Reader, deps *Deps) {
	var req packet.GroupRequest
	if err := r.Decode(&req); err != nil {
		return
	}
	kind, ok := groupKinds[req.Kind]
	if !ok {
		deps.Log.Debug("unknown group request", zap.String("kind", req.Kind))
		return
	}
	e, ok := entityOf(sess, deps)
	if !ok {
		return
	}
	event.Emit(deps.World.Bus, component.GroupManip{Entity: e, Kind: kind, Target: req.Target})
}

// HandleTame asks to tame a creature. Range and ownership are checked when
// the event is applied.
func HandleTame(sess *net.Session, r *packet.Reader, deps *Deps) {
	var req packet.TameRequest
	if err := r.Decode(&req); err != nil {
		return
	}
	e, ok := entityOf(sess, deps)
	if !ok {
		return
	}
	pet, ok := deps.World.ByUid(req.Pet)
	if !ok {
		notice(sess, "nothing to tame")
		return
	}
	event.Emit(deps.World.Bus, component.TamePet{Pet: pet, Owner: e})
}
