package world

import (
	"errors"
	"testing"

	"github.com/voxrpg/server/internal/core/ecs"
)

type note struct {
	to ecs.EntityID
	n  ChangeNotification
}

type recorder struct{ notes []note }

func (r *recorder) notify(to ecs.EntityID, n ChangeNotification) {
	r.notes = append(r.notes, note{to, n})
}

func (r *recorder) kinds(to ecs.EntityID) []ChangeKind {
	var out []ChangeKind
	for _, n := range r.notes {
		if n.to == to {
			out = append(out, n.n.Kind)
		}
	}
	return out
}

func ids(n int) []ecs.EntityID {
	p := ecs.NewEntityPool()
	out := make([]ecs.EntityID, n)
	for i := range out {
		out[i] = p.Create()
	}
	return out
}

func equalKinds(a, b []ChangeKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGroup_AddMemberCreatesGroup(t *testing.T) {
	e := ids(2)
	a, b := e[0], e[1]
	m := NewGroupManager(4)
	var r recorder
	if err := m.AddMember(a, b, r.notify); err != nil {
		t.Fatal(err)
	}
	g, ok := m.GroupOf(a)
	if !ok || g.Leader != a || g.Players() != 2 || !m.SameGroup(a, b) {
		t.Fatalf("group = %+v", g)
	}
	if got := r.kinds(a); !equalKinds(got, []ChangeKind{ChangeNewGroup, ChangeAdded}) {
		t.Fatalf("leader notes = %v", got)
	}
	if got := r.kinds(b); !equalKinds(got, []ChangeKind{ChangeNewGroup, ChangeAdded}) {
		t.Fatalf("member notes = %v", got)
	}
	if err := m.AddMember(a, b, r.notify); !errors.Is(err, ErrAlreadyGroup) {
		t.Fatalf("re-add err = %v", err)
	}
}

func TestGroup_PetsDoNotCountTowardSize(t *testing.T) {
	e := ids(4)
	a, pet, b, c := e[0], e[1], e[2], e[3]
	m := NewGroupManager(2)
	var r recorder
	m.NewPet(pet, a, r.notify)
	if !m.IsLeader(a) || !m.SameGroup(a, pet) {
		t.Fatal("pet did not create the owner's group")
	}
	if err := m.AddMember(a, b, r.notify); err != nil {
		t.Fatalf("pet counted toward size: %v", err)
	}
	if err := m.AddMember(a, c, r.notify); !errors.Is(err, ErrGroupFull) {
		t.Fatalf("err = %v, want ErrGroupFull", err)
	}
}

func TestGroup_LeaderLeavesWithPets(t *testing.T) {
	e := ids(4)
	a, pet, b, c := e[0], e[1], e[2], e[3]
	m := NewGroupManager(6)
	var r recorder
	m.NewPet(pet, a, r.notify)
	m.AddMember(a, b, r.notify)
	m.AddMember(a, c, r.notify)
	r.notes = nil

	m.Leave(a, r.notify)
	if _, ok := m.GroupOf(a); ok {
		t.Fatal("leader still grouped")
	}
	if _, ok := m.GroupOf(pet); ok {
		t.Fatal("pet stayed after its owner left")
	}
	g, ok := m.GroupOf(b)
	if !ok || g.Leader != b || len(g.Members) != 2 {
		t.Fatalf("group = %+v", g)
	}
	kinds := r.kinds(c)
	if kinds[len(kinds)-1] != ChangeNewLeader {
		t.Fatalf("c notes = %v", kinds)
	}
}

func TestGroup_LastPairDisbands(t *testing.T) {
	e := ids(2)
	a, b := e[0], e[1]
	m := NewGroupManager(6)
	var r recorder
	m.AddMember(a, b, r.notify)
	r.notes = nil
	m.Leave(b, r.notify)
	if m.Count() != 0 {
		t.Fatalf("groups = %d", m.Count())
	}
	if got := r.kinds(a); !equalKinds(got, []ChangeKind{ChangeRemoved, ChangeNoGroup}) {
		t.Fatalf("a notes = %v", got)
	}
}

func TestGroup_OwnerAloneAfterPetDeleted(t *testing.T) {
	e := ids(2)
	a, pet := e[0], e[1]
	m := NewGroupManager(6)
	var r recorder
	m.NewPet(pet, a, r.notify)
	m.EntityDeleted(pet, r.notify)
	if m.Count() != 0 {
		t.Fatal("owner-only group kept")
	}
	if _, ok := m.GroupOf(a); ok {
		t.Fatal("owner still grouped")
	}
}

func TestGroup_MoveWithPetsBetweenGroups(t *testing.T) {
	e := ids(4)
	a, b, pet, c := e[0], e[1], e[2], e[3]
	m := NewGroupManager(6)
	var r recorder
	m.NewPet(pet, b, r.notify)
	m.AddMember(c, a, r.notify)
	if err := m.AddMember(a, b, r.notify); err != nil {
		t.Fatal(err)
	}
	if !m.SameGroup(a, pet) || !m.SameGroup(c, b) {
		t.Fatal("member did not bring its pet")
	}
	if m.Count() != 1 {
		t.Fatalf("groups = %d", m.Count())
	}
}

func TestGroup_KickAndAssignLeader(t *testing.T) {
	e := ids(4)
	a, b, c, pet := e[0], e[1], e[2], e[3]
	m := NewGroupManager(6)
	var r recorder
	m.AddMember(a, b, r.notify)
	m.AddMember(a, c, r.notify)
	m.NewPet(pet, a, r.notify)

	if err := m.Kick(b, c, r.notify); !errors.Is(err, ErrNotLeader) {
		t.Fatalf("member kick err = %v", err)
	}
	if err := m.AssignLeader(a, pet, r.notify); !errors.Is(err, ErrNotInGroup) {
		t.Fatalf("pet leader err = %v", err)
	}
	if err := m.Kick(a, c, r.notify); err != nil {
		t.Fatal(err)
	}
	if m.SameGroup(a, c) {
		t.Fatal("kicked member still grouped")
	}
	if err := m.AssignLeader(a, b, r.notify); err != nil {
		t.Fatal(err)
	}
	if !m.IsLeader(b) || m.IsLeader(a) {
		t.Fatal("leadership not transferred")
	}
}
