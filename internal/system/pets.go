package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	"github.com/voxrpg/server/internal/core/event"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/world"
)

const (
	petFollowDistance = 4.0
	petFollowSpeed    = 8.0
)

// PetsSystem keeps pets with their owners. Pets of dead owners are
// destroyed, pets that fell too far behind are teleported back.
type PetsSystem struct {
	base
	world *world.State
	log   *zap.Logger
}

func NewPetsSystem(ws *world.State, log *zap.Logger) *PetsSystem {
	return &PetsSystem{
		base:  base{name: "pets", origin: coresys.OriginServer, phase: coresys.PhaseLogic},
		world: ws,
		log:   log,
	}
}

func (s *PetsSystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.Anchor, ws.Pet, ws.Health).
		Write(ws.Pos, ws.Vel, ws.Agent).
		WriteRes(aoiKey)
}

func (s *PetsSystem) Update(_ coresys.Tick) {
	ws := s.world
	ws.Pet.Each(func(pet ecs.EntityID, _ *component.Pet) {
		anchor, ok := ws.Anchor.Get(pet)
		if !ok {
			return
		}
		owner := anchor.Entity
		if h, ok := ws.Health.Get(owner); !ok || h.IsDead() {
			event.Emit(ws.Bus, component.Destroy{Entity: pet, Cause: "owner_gone"})
			return
		}
		op, ok1 := ws.Pos.Get(owner)
		pp, ok2 := ws.Pos.Get(pet)
		if !ok1 || !ok2 {
			return
		}
		if ag, ok := ws.Agent.Get(pet); ok {
			ag.Target = owner
			ag.Idle = 0
		}

		offset := op.Sub(pp.Vec3)
		dist := offset.Len()
		switch {
		case dist > ws.Opts.LostPetDistance:
			to := op.Add(mgl64.Vec3{1, 0, 0})
			p, _ := ws.Pos.GetMut(pet)
			p.Vec3 = to
			if v, ok := ws.Vel.GetMut(pet); ok {
				v.Vec3 = mgl64.Vec3{}
			}
			ws.AOI.Update(pet, to)
			s.log.Debug("pet teleported to owner",
				zap.Stringer("pet", pet),
				zap.Stringer("direction", component.DirectionFromVec(mgl64.Vec2{offset.X(), offset.Y()})),
				zap.Stringer("distance", component.DistanceFromLength(dist)),
			)
		case dist > petFollowDistance:
			v, ok := ws.Vel.Get(pet)
			if !ok {
				return
			}
			want := horizontal(offset).Mul(petFollowSpeed)
			want[2] = v.Z()
			if want != v.Vec3 {
				w, _ := ws.Vel.GetMut(pet)
				w.Vec3 = want
			}
		}
	})
}
