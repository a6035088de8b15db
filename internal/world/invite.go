package world

import (
	"errors"
	"time"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	"github.com/voxrpg/server/internal/net/packet"
)

var (
	ErrInviteSelf     = errors.New("cannot invite yourself")
	ErrUnknownTarget  = errors.New("unknown invite target")
	ErrAlreadyInvited = errors.New("target already has an invite")
	ErrNoInvite       = errors.New("no open invite")
)

// InitiateInvite asks the entity behind target to join the group of inviter.
// The invitee holds Invite(inviter) exactly as long as the inviter lists the
// invitee in its PendingInvites.
func (s *State) InitiateInvite(inviter ecs.EntityID, target component.Uid, now time.Time) error {
	invitee, ok := s.ByUid(target)
	if !ok || !s.Presence.Has(invitee) {
		return ErrUnknownTarget
	}
	if invitee == inviter {
		return ErrInviteSelf
	}
	if s.Invite.Has(invitee) {
		return ErrAlreadyInvited
	}
	if s.Groups.SameGroup(inviter, invitee) {
		return ErrAlreadyGroup
	}

	members := 1
	if g, ok := s.Groups.GroupOf(inviter); ok {
		members = g.Players()
	}
	pending, _ := s.PendingInvites.Get(inviter)
	if pending != nil {
		members += pending.Len()
	}
	if members >= s.Groups.MaxSize() {
		return ErrGroupFull
	}

	if _, err := s.Invite.Insert(invitee, component.Invite{Inviter: inviter}); err != nil {
		return err
	}
	entry := component.PendingInvite{Invitee: invitee, Deadline: now.Add(s.Opts.InviteTTL)}
	if pending != nil {
		pending.Entries = append(pending.Entries, entry)
	} else {
		s.PendingInvites.Insert(inviter, component.PendingInvites{Entries: []component.PendingInvite{entry}})
	}

	inviterUid, _ := s.UidOf(inviter)
	name := ""
	if p, ok := s.Presence.Get(inviter); ok {
		name = p.Name
	}
	s.Send(invitee, packet.SInvite, packet.Invite{Inviter: inviterUid, Name: name, TTL: s.Opts.InviteTTL.Seconds()})
	s.Send(inviter, packet.SInvitePending, packet.InvitePending{Target: target})
	return nil
}

// RespondInvite answers the open invite of invitee. Accepting joins the
// inviter's group.
func (s *State) RespondInvite(invitee ecs.EntityID, accept bool) error {
	inv, ok := s.Invite.Get(invitee)
	if !ok {
		return ErrNoInvite
	}
	inviter := inv.Inviter
	s.Invite.Remove(invitee)
	s.dropPending(inviter, invitee)

	answer := packet.InviteDeclined
	var err error
	if accept && s.World.Alive(inviter) {
		answer = packet.InviteAccepted
		if err = s.Groups.AddMember(inviter, invitee, s.NotifyGroup); err != nil {
			answer = packet.InviteDeclined
		}
	}
	if u, ok := s.UidOf(invitee); ok {
		s.Send(inviter, packet.SInviteComplete, packet.InviteComplete{Target: u, Answer: answer})
	}
	return err
}
