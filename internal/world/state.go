package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	"github.com/voxrpg/server/internal/core/event"
	"github.com/voxrpg/server/internal/net/packet"
)

// Options are the gameplay settings the world needs.
type Options struct {
	InviteTTL       time.Duration
	MaxGroupSize    int
	TameRange       float64
	LostPetDistance float64
	SeaLevel        float64
	ComboDecay      time.Duration
	SpawnPoint      mgl64.Vec3
}

// State owns the ECS world and every storage, plus the indexes that map
// network identities to entities. Structural changes happen from exclusive
// systems or through deferred world commands.
type State struct {
	World     *ecs.World
	Bus       *event.Bus
	Groups    *GroupManager
	AOI       *AOIGrid
	Abilities *charstate.AbilityTable
	Opts      Options

	Uids           *ecs.Store[component.Uid]
	Presence       *ecs.Store[component.Presence]
	Streams        *ecs.Store[component.InGameStream]
	Pos            *ecs.FlaggedStore[component.Pos]
	Vel            *ecs.FlaggedStore[component.Vel]
	Ori            *ecs.FlaggedStore[component.Ori]
	Physics        *ecs.Store[component.PhysicsState]
	CharState      *ecs.FlaggedStore[charstate.State]
	Energy         *ecs.FlaggedStore[component.Energy]
	Health         *ecs.FlaggedStore[component.Health]
	Combo          *ecs.Store[component.Combo]
	Controller     *ecs.Store[component.Controller]
	Skills         *ecs.Store[component.SkillSet]
	Inventory      *ecs.Store[component.Inventory]
	Waypoint       *ecs.Store[component.Waypoint]
	Alignment      *ecs.FlaggedStore[component.Alignment]
	Anchor         *ecs.Store[component.Anchor]
	Pet            *ecs.FlaggedStore[component.Pet]
	Agent          *ecs.Store[component.Agent]
	Invite         *ecs.Store[component.Invite]
	PendingInvites *ecs.Store[component.PendingInvites]
	Melee          *ecs.Store[component.Melee]
	Auras          *ecs.Store[component.Auras]
	Sticky         *ecs.NullStore[component.Sticky]
	ForceUpdate    *ecs.NullStore[component.ForceUpdate]

	byUid     map[component.Uid]ecs.EntityID
	bySession map[uint64]ecs.EntityID
	deleted   []component.Uid // uids destroyed since the last TakeDeleted

	log *zap.Logger
}

func NewState(opts Options, abilities *charstate.AbilityTable, log *zap.Logger) *State {
	w := ecs.NewWorld()
	if opts.InviteTTL <= 0 {
		opts.InviteTTL = 31 * time.Second
	}
	s := &State{
		World:     w,
		Bus:       event.NewBus(),
		Groups:    NewGroupManager(opts.MaxGroupSize),
		AOI:       NewAOIGrid(),
		Abilities: abilities,
		Opts:      opts,

		Uids:           ecs.NewStore[component.Uid](w),
		Presence:       ecs.NewStore[component.Presence](w),
		Streams:        ecs.NewStore[component.InGameStream](w),
		Pos:            ecs.NewFlaggedStore[component.Pos](w),
		Vel:            ecs.NewFlaggedStore[component.Vel](w),
		Ori:            ecs.NewFlaggedStore[component.Ori](w),
		Physics:        ecs.NewStore[component.PhysicsState](w),
		CharState:      ecs.NewFlaggedStore[charstate.State](w),
		Energy:         ecs.NewFlaggedStore[component.Energy](w),
		Health:         ecs.NewFlaggedStore[component.Health](w),
		Combo:          ecs.NewStore[component.Combo](w),
		Controller:     ecs.NewStore[component.Controller](w),
		Skills:         ecs.NewStore[component.SkillSet](w),
		Inventory:      ecs.NewStore[component.Inventory](w),
		Waypoint:       ecs.NewStore[component.Waypoint](w),
		Alignment:      ecs.NewFlaggedStore[component.Alignment](w),
		Anchor:         ecs.NewStore[component.Anchor](w),
		Pet:            ecs.NewFlaggedStore[component.Pet](w),
		Agent:          ecs.NewStore[component.Agent](w),
		Invite:         ecs.NewStore[component.Invite](w),
		PendingInvites: ecs.NewStore[component.PendingInvites](w),
		Melee:          ecs.NewStore[component.Melee](w),
		Auras:          ecs.NewStore[component.Auras](w),
		Sticky:         ecs.NewNullStore[component.Sticky](w),
		ForceUpdate:    ecs.NewNullStore[component.ForceUpdate](w),

		byUid:     make(map[component.Uid]ecs.EntityID),
		bySession: make(map[uint64]ecs.EntityID),
		log:       log,
	}
	ecs.InsertResource(w, s.Groups)
	ecs.InsertResource(w, s.AOI)
	w.OnDestroy(s.onDestroy)
	return s
}

func (s *State) Log() *zap.Logger { return s.log }

// AssignUid gives e its network identity.
func (s *State) AssignUid(e ecs.EntityID, uid component.Uid) error {
	if _, err := s.Uids.Insert(e, uid); err != nil {
		return err
	}
	s.byUid[uid] = e
	return nil
}

// ByUid resolves a network identity.
func (s *State) ByUid(uid component.Uid) (ecs.EntityID, bool) {
	e, ok := s.byUid[uid]
	if !ok || !s.World.Alive(e) {
		return 0, false
	}
	return e, true
}

// UidOf returns the identity of e.
func (s *State) UidOf(e ecs.EntityID) (component.Uid, bool) {
	u, ok := s.Uids.Get(e)
	if !ok {
		return component.Uid{}, false
	}
	return *u, true
}

// AttachStream connects e to a client session.
func (s *State) AttachStream(e ecs.EntityID, sessionID uint64, out component.Sender) error {
	if _, err := s.Streams.Insert(e, component.InGameStream{SessionID: sessionID, Out: out}); err != nil {
		return err
	}
	s.bySession[sessionID] = e
	return nil
}

// BySession returns the entity controlled by a session.
func (s *State) BySession(sessionID uint64) (ecs.EntityID, bool) {
	e, ok := s.bySession[sessionID]
	if !ok || !s.World.Alive(e) {
		return 0, false
	}
	return e, true
}

// PlayerCount returns the number of connected entities.
func (s *State) PlayerCount() int { return len(s.bySession) }

// Send encodes and buffers a message for the client of e. It returns false
// when e has no stream.
func (s *State) Send(e ecs.EntityID, typ string, v any) bool {
	st, ok := s.Streams.Get(e)
	if !ok || st.Out == nil {
		return false
	}
	st.Out.Send(packet.MustEncode(typ, v))
	return true
}

// NotifyGroup is the group notifier: it turns a change into a GroupUpdate
// for the client of to, if any.
func (s *State) NotifyGroup(to ecs.EntityID, n ChangeNotification) {
	if !s.Streams.Has(to) {
		return
	}
	msg := packet.GroupUpdate{Kind: n.Kind.String(), Group: uint32(n.Group), Pet: n.Role == RolePet}
	if u, ok := s.UidOf(n.Entity); ok && !n.Entity.IsZero() {
		msg.Member = u
	}
	if u, ok := s.UidOf(n.Leader); ok && !n.Leader.IsZero() {
		msg.Leader = u
	}
	s.Send(to, packet.SGroupUpdate, msg)
}

// Nearby returns the positioned entities within radius of p.
func (s *State) Nearby(p mgl64.Vec3, radius float64) []ecs.EntityID {
	cand := s.AOI.Nearby(p, radius)
	out := cand[:0]
	for _, id := range cand {
		if q, ok := s.Pos.Get(id); ok && q.Sub(p).Len() <= radius {
			out = append(out, id)
		}
	}
	return out
}

// Delete queues e for destruction at the end of the tick.
func (s *State) Delete(e ecs.EntityID) {
	s.World.MarkForDestruction(e)
}

// TakeDeleted returns and clears the uids destroyed since the last call.
func (s *State) TakeDeleted() []component.Uid {
	out := s.deleted
	s.deleted = nil
	return out
}

// onDestroy keeps the indexes, the group manager and the invite pairs
// consistent when an entity goes away.
func (s *State) onDestroy(e ecs.EntityID) {
	if u, ok := s.Uids.Get(e); ok {
		if s.byUid[*u] == e {
			delete(s.byUid, *u)
		}
		s.deleted = append(s.deleted, *u)
	}
	if st, ok := s.Streams.Get(e); ok && s.bySession[st.SessionID] == e {
		delete(s.bySession, st.SessionID)
	}
	s.AOI.Remove(e)
	s.Groups.EntityDeleted(e, s.NotifyGroup)

	if inv, ok := s.Invite.Get(e); ok {
		s.dropPending(inv.Inviter, e)
	}
	if p, ok := s.PendingInvites.Get(e); ok {
		for _, entry := range p.Entries {
			s.Invite.Remove(entry.Invitee)
		}
	}
}

func (s *State) dropPending(inviter, invitee ecs.EntityID) {
	p, ok := s.PendingInvites.Get(inviter)
	if !ok {
		return
	}
	if i := p.Find(invitee); i >= 0 {
		p.SwapRemove(i)
	}
	if p.Len() == 0 {
		s.PendingInvites.Remove(inviter)
	}
}
