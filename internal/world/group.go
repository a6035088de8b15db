package world

import (
	"errors"

	"github.com/voxrpg/server/internal/core/ecs"
)

// DefaultMaxGroupSize counts members only; pets ride along for free.
const DefaultMaxGroupSize = 6

var (
	ErrGroupFull    = errors.New("group is full")
	ErrNotLeader    = errors.New("not the group leader")
	ErrNotInGroup   = errors.New("not in the group")
	ErrAlreadyGroup = errors.New("already in the group")
)

// GroupID identifies a group for its lifetime.
type GroupID uint32

// Role distinguishes players from pets inside a group.
type Role uint8

const (
	RoleMember Role = iota
	RolePet
)

// ChangeKind is the kind of a group change notification.
type ChangeKind uint8

const (
	ChangeAdded ChangeKind = iota + 1
	ChangeRemoved
	ChangeNewLeader
	ChangeNewGroup
	ChangeNoGroup
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeNewLeader:
		return "new_leader"
	case ChangeNewGroup:
		return "new_group"
	case ChangeNoGroup:
		return "no_group"
	}
	return "unknown"
}

// ChangeNotification tells one entity how its group changed. Entity is the
// member concerned by Added and Removed, Leader is set for NewLeader and
// NewGroup.
type ChangeNotification struct {
	Kind   ChangeKind
	Group  GroupID
	Entity ecs.EntityID
	Role   Role
	Leader ecs.EntityID
}

// Notifier receives every notification produced by a group mutation,
// addressed to the entity that should learn about it.
type Notifier func(to ecs.EntityID, n ChangeNotification)

// Member is one group entry. Owner is set for pets.
type Member struct {
	Entity ecs.EntityID
	Role   Role
	Owner  ecs.EntityID
}

// GroupInfo tracks one group.
type GroupInfo struct {
	ID      GroupID
	Leader  ecs.EntityID
	Members []Member
}

// Players returns the number of non-pet members.
func (g *GroupInfo) Players() int {
	n := 0
	for _, m := range g.Members {
		if m.Role == RoleMember {
			n++
		}
	}
	return n
}

func (g *GroupInfo) indexOf(e ecs.EntityID) int {
	for i, m := range g.Members {
		if m.Entity == e {
			return i
		}
	}
	return -1
}

// GroupManager manages all active groups. Mutations happen from exclusive
// systems only; concurrent systems may read.
type GroupManager struct {
	groups   map[GroupID]*GroupInfo
	memberOf map[ecs.EntityID]GroupID
	next     GroupID
	maxSize  int
}

func NewGroupManager(maxSize int) *GroupManager {
	if maxSize <= 0 {
		maxSize = DefaultMaxGroupSize
	}
	return &GroupManager{
		groups:   make(map[GroupID]*GroupInfo),
		memberOf: make(map[ecs.EntityID]GroupID),
		maxSize:  maxSize,
	}
}

func (m *GroupManager) MaxSize() int { return m.maxSize }

// GroupOf returns the group of e.
func (m *GroupManager) GroupOf(e ecs.EntityID) (*GroupInfo, bool) {
	id, ok := m.memberOf[e]
	if !ok {
		return nil, false
	}
	return m.groups[id], true
}

// IsLeader returns true if e leads its group.
func (m *GroupManager) IsLeader(e ecs.EntityID) bool {
	g, ok := m.GroupOf(e)
	return ok && g.Leader == e
}

// SameGroup reports whether a and b are in one group.
func (m *GroupManager) SameGroup(a, b ecs.EntityID) bool {
	ga, ok := m.memberOf[a]
	if !ok {
		return false
	}
	gb, ok := m.memberOf[b]
	return ok && ga == gb
}

// Count returns the number of groups.
func (m *GroupManager) Count() int { return len(m.groups) }

func (m *GroupManager) create(leader ecs.EntityID, notify Notifier) *GroupInfo {
	m.next++
	g := &GroupInfo{ID: m.next, Leader: leader, Members: []Member{{Entity: leader, Role: RoleMember}}}
	m.groups[g.ID] = g
	m.memberOf[leader] = g.ID
	notify(leader, ChangeNotification{Kind: ChangeNewGroup, Group: g.ID, Leader: leader})
	return g
}

func (m *GroupManager) add(g *GroupInfo, mem Member, notify Notifier) {
	for _, other := range g.Members {
		notify(other.Entity, ChangeNotification{Kind: ChangeAdded, Group: g.ID, Entity: mem.Entity, Role: mem.Role})
	}
	g.Members = append(g.Members, mem)
	m.memberOf[mem.Entity] = g.ID
	notify(mem.Entity, ChangeNotification{Kind: ChangeNewGroup, Group: g.ID, Leader: g.Leader})
	for _, other := range g.Members[:len(g.Members)-1] {
		notify(mem.Entity, ChangeNotification{Kind: ChangeAdded, Group: g.ID, Entity: other.Entity, Role: other.Role})
	}
}

// AddMember puts member into the group of leader, creating the group when
// leader has none. A member of another group leaves it first, taking its
// pets along.
func (m *GroupManager) AddMember(leader, member ecs.EntityID, notify Notifier) error {
	if leader == member {
		return ErrAlreadyGroup
	}
	g, ok := m.GroupOf(leader)
	if ok && g.indexOf(member) >= 0 {
		return ErrAlreadyGroup
	}
	if ok && g.Players() >= m.maxSize {
		return ErrGroupFull
	}

	pets := m.petsOf(member)
	if _, in := m.memberOf[member]; in {
		m.Leave(member, notify)
	}
	if !ok {
		g = m.create(leader, notify)
	}
	m.add(g, Member{Entity: member, Role: RoleMember}, notify)
	for _, p := range pets {
		m.add(g, Member{Entity: p, Role: RolePet, Owner: member}, notify)
	}
	return nil
}

// NewPet puts pet into the group of owner, creating a group led by owner
// when needed.
func (m *GroupManager) NewPet(pet, owner ecs.EntityID, notify Notifier) {
	if _, in := m.memberOf[pet]; in {
		m.remove(pet, notify)
	}
	g, ok := m.GroupOf(owner)
	if !ok {
		g = m.create(owner, notify)
	}
	m.add(g, Member{Entity: pet, Role: RolePet, Owner: owner}, notify)
}

func (m *GroupManager) petsOf(owner ecs.EntityID) []ecs.EntityID {
	g, ok := m.GroupOf(owner)
	if !ok {
		return nil
	}
	var out []ecs.EntityID
	for _, mem := range g.Members {
		if mem.Role == RolePet && mem.Owner == owner {
			out = append(out, mem.Entity)
		}
	}
	return out
}

// Leave removes member and its pets from their group. A group left with a
// single player and no pets is disbanded; a leaving leader hands over to the
// next player.
func (m *GroupManager) Leave(member ecs.EntityID, notify Notifier) {
	g, ok := m.GroupOf(member)
	if !ok {
		return
	}
	for _, p := range m.petsOf(member) {
		m.remove(p, notify)
	}
	m.remove(member, notify)

	if len(g.Members) == 0 {
		delete(m.groups, g.ID)
		return
	}
	if g.Players() == 0 {
		m.disband(g, notify)
		return
	}
	if g.Players() == 1 && len(g.Members) == 1 {
		m.disband(g, notify)
		return
	}
	if g.Leader == member {
		for _, mem := range g.Members {
			if mem.Role == RoleMember {
				m.setLeader(g, mem.Entity, notify)
				break
			}
		}
	}
}

func (m *GroupManager) remove(e ecs.EntityID, notify Notifier) {
	g, ok := m.GroupOf(e)
	if !ok {
		return
	}
	i := g.indexOf(e)
	mem := g.Members[i]
	g.Members = append(g.Members[:i], g.Members[i+1:]...)
	delete(m.memberOf, e)
	notify(e, ChangeNotification{Kind: ChangeNoGroup, Group: g.ID})
	for _, other := range g.Members {
		notify(other.Entity, ChangeNotification{Kind: ChangeRemoved, Group: g.ID, Entity: e, Role: mem.Role})
	}
}

func (m *GroupManager) disband(g *GroupInfo, notify Notifier) {
	for _, mem := range g.Members {
		delete(m.memberOf, mem.Entity)
		notify(mem.Entity, ChangeNotification{Kind: ChangeNoGroup, Group: g.ID})
	}
	delete(m.groups, g.ID)
}

func (m *GroupManager) setLeader(g *GroupInfo, leader ecs.EntityID, notify Notifier) {
	g.Leader = leader
	for _, mem := range g.Members {
		notify(mem.Entity, ChangeNotification{Kind: ChangeNewLeader, Group: g.ID, Leader: leader})
	}
}

// Kick removes target from the group of leader.
func (m *GroupManager) Kick(leader, target ecs.EntityID, notify Notifier) error {
	g, ok := m.GroupOf(leader)
	if !ok || g.Leader != leader {
		return ErrNotLeader
	}
	if target == leader || !m.SameGroup(leader, target) {
		return ErrNotInGroup
	}
	m.Leave(target, notify)
	return nil
}

// AssignLeader hands leadership of the group of leader to target.
func (m *GroupManager) AssignLeader(leader, target ecs.EntityID, notify Notifier) error {
	g, ok := m.GroupOf(leader)
	if !ok || g.Leader != leader {
		return ErrNotLeader
	}
	i := g.indexOf(target)
	if i < 0 || g.Members[i].Role != RoleMember {
		return ErrNotInGroup
	}
	m.setLeader(g, target, notify)
	return nil
}

// EntityDeleted drops a destroyed entity from its group.
func (m *GroupManager) EntityDeleted(e ecs.EntityID, notify Notifier) {
	g, ok := m.GroupOf(e)
	if !ok {
		return
	}
	if i := g.indexOf(e); g.Members[i].Role == RolePet {
		m.remove(e, notify)
		if g.Players() == 1 && len(g.Members) == 1 && m.groups[g.ID] != nil {
			// owner alone after losing the last pet
			m.disband(g, notify)
		}
		return
	}
	m.Leave(e, notify)
}
