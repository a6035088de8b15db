package world

import (
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
)

// TamePet makes owner the owner of pet with a default pet record. It must run
// with exclusive world access. It returns false when nothing changed.
func (s *State) TamePet(pet, owner ecs.EntityID) bool {
	return s.tame(pet, owner, nil)
}

// RestorePet binds a persisted pet to its owner on login.
func (s *State) RestorePet(pet, owner ecs.EntityID, rec component.Pet) bool {
	return s.tame(pet, owner, &rec)
}

// tame either applies every ownership component or none of them.
func (s *State) tame(pet, owner ecs.EntityID, rec *component.Pet) bool {
	ownerUid, ok := s.UidOf(owner)
	if !ok {
		return false
	}
	if !s.World.Alive(pet) || pet == owner {
		return false
	}
	if al, ok := s.Alignment.Get(pet); ok && al.Kind == component.AlignOwned && al.Owner != ownerUid {
		s.log.Warn("pet already has another owner",
			zap.Stringer("pet", pet),
			zap.Stringer("owner", ownerUid),
			zap.Stringer("current_owner", al.Owner),
		)
		return false
	}

	record := component.Pet{}
	if rec != nil {
		record = *rec
	}
	s.Alignment.Insert(pet, component.Owned(ownerUid))
	s.Anchor.Insert(pet, component.Anchor{Entity: owner})
	s.Pet.Insert(pet, record)
	s.Agent.Insert(pet, component.Agent{})
	s.Groups.NewPet(pet, owner, s.NotifyGroup)
	return true
}

// PetsOf returns the pets anchored to owner.
func (s *State) PetsOf(owner ecs.EntityID) []ecs.EntityID {
	var out []ecs.EntityID
	s.Anchor.Each(func(id ecs.EntityID, a *component.Anchor) {
		if a.Entity == owner && s.Pet.Has(id) {
			out = append(out, id)
		}
	})
	return out
}

// CanTame reports whether owner may try to tame pet: a wild, tameable,
// non-player creature within tame range.
func (s *State) CanTame(pet, owner ecs.EntityID) bool {
	if s.Presence.Has(pet) {
		return false
	}
	ag, ok := s.Agent.Get(pet)
	if !ok || !ag.Tameable {
		return false
	}
	pp, ok1 := s.Pos.Get(pet)
	op, ok2 := s.Pos.Get(owner)
	if !ok1 || !ok2 {
		return false
	}
	return pp.Sub(op.Vec3).Len() <= s.Opts.TameRange
}
