package world

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
)

const (
	defaultEnergy = 1000
	defaultHealth = 100
	bagSize       = 18
)

// CharacterData is everything a character entity is built from.
type CharacterData struct {
	ID        int64
	Name      string
	Skills    component.SkillSet
	Inventory component.Inventory
	Waypoint  *component.Waypoint
	Pets      []component.Pet
}

// SpawnCharacter creates the entity of a logged-in character and restores its
// pets next to it. Exclusive access only.
func (s *State) SpawnCharacter(d CharacterData, sessionID uint64, out component.Sender, now time.Time) (ecs.EntityID, error) {
	pos := s.Opts.SpawnPoint
	if d.Waypoint != nil {
		pos = d.Waypoint.Pos
	}
	e, err := s.spawnBody(component.NewUid(), pos, defaultHealth)
	if err != nil {
		return 0, err
	}
	if d.Inventory.Slots == nil {
		d.Inventory = component.NewInventory(bagSize)
	}
	if d.Skills.Skills == nil {
		d.Skills = component.NewSkillSet()
	}
	s.Presence.Insert(e, component.Character(d.ID, d.Name))
	s.CharState.Insert(e, charstate.Idle{})
	s.Energy.Insert(e, component.NewEnergy(defaultEnergy))
	s.Combo.Insert(e, component.Combo{LastChange: now})
	s.Controller.Insert(e, component.Controller{})
	s.Skills.Insert(e, d.Skills)
	s.Inventory.Insert(e, d.Inventory)
	s.Auras.Insert(e, component.Auras{})
	if d.Waypoint != nil {
		s.Waypoint.Insert(e, *d.Waypoint)
	}
	if err := s.AttachStream(e, sessionID, out); err != nil {
		return 0, err
	}
	for _, rec := range d.Pets {
		s.SpawnPet(e, rec, pos.Add(mgl64.Vec3{1, 0, 0}))
	}
	return e, nil
}

// SpawnSpectator creates a bodiless observer for a session.
func (s *State) SpawnSpectator(name string, sessionID uint64, out component.Sender) (ecs.EntityID, error) {
	e := s.World.CreateEntity()
	if err := s.AssignUid(e, component.NewUid()); err != nil {
		return 0, err
	}
	s.Presence.Insert(e, component.Spectator(name))
	s.Pos.Insert(e, component.Pos{Vec3: s.Opts.SpawnPoint})
	s.Sticky.Insert(e)
	if err := s.AttachStream(e, sessionID, out); err != nil {
		return 0, err
	}
	return e, nil
}

// SpawnCreature creates a wild creature controlled by an agent.
func (s *State) SpawnCreature(pos mgl64.Vec3, tameable bool) (ecs.EntityID, error) {
	e, err := s.spawnBody(component.NewUid(), pos, defaultHealth/2)
	if err != nil {
		return 0, err
	}
	s.Alignment.Insert(e, component.Alignment{Kind: component.AlignWild})
	s.Agent.Insert(e, component.Agent{Tameable: tameable})
	return e, nil
}

// SpawnPet creates the entity of a persisted pet and binds it to owner.
func (s *State) SpawnPet(owner ecs.EntityID, rec component.Pet, pos mgl64.Vec3) (ecs.EntityID, bool) {
	e, err := s.spawnBody(component.NewUid(), pos, defaultHealth/2)
	if err != nil {
		s.log.Warn(fmt.Sprintf("spawn pet %q: %v", rec.Name, err))
		return 0, false
	}
	if !s.RestorePet(e, owner, rec) {
		s.World.MarkForDestruction(e)
		return 0, false
	}
	return e, true
}

func (s *State) spawnBody(uid component.Uid, pos mgl64.Vec3, hp uint32) (ecs.EntityID, error) {
	e := s.World.CreateEntity()
	if err := s.AssignUid(e, uid); err != nil {
		return 0, err
	}
	s.Pos.Insert(e, component.Pos{Vec3: pos})
	s.Vel.Insert(e, component.Vel{})
	s.Ori.Insert(e, component.DefaultOri())
	s.Physics.Insert(e, component.PhysicsState{})
	s.Health.Insert(e, component.NewHealth(hp))
	s.AOI.Update(e, pos)
	return e, nil
}
