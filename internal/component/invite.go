package component

import (
	"time"

	"github.com/voxrpg/server/internal/core/ecs"
)

// Invite is held by an entity with an open group invitation from Inviter.
type Invite struct {
	Inviter ecs.EntityID
}

// PendingInvite is one outstanding invitation of an inviter.
type PendingInvite struct {
	Invitee  ecs.EntityID
	Deadline time.Time
}

// PendingInvites lists the invitations an entity has extended.
type PendingInvites struct {
	Entries []PendingInvite
}

// Find returns the index of the entry for invitee, or -1.
func (p *PendingInvites) Find(invitee ecs.EntityID) int {
	for i, e := range p.Entries {
		if e.Invitee == invitee {
			return i
		}
	}
	return -1
}

// SwapRemove removes entry i without preserving order.
func (p *PendingInvites) SwapRemove(i int) {
	last := len(p.Entries) - 1
	p.Entries[i] = p.Entries[last]
	p.Entries = p.Entries[:last]
}

func (p *PendingInvites) Len() int { return len(p.Entries) }
